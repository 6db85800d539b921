package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseIdentifier(t *testing.T) {
	id, err := ParseIdentifier("Maven:org.springframework.boot:spring-boot-starter-parent:2.7.4")
	require.NoError(t, err)
	assert.Equal(t, "Maven", id.Type)
	assert.Equal(t, "org.springframework.boot", id.Namespace)
	assert.Equal(t, "spring-boot-starter-parent", id.Name)
	assert.Equal(t, "2.7.4", id.Version)
}

func TestParseIdentifierEmptySegments(t *testing.T) {
	id, err := ParseIdentifier("Go::golang.org/x/sync:")
	require.NoError(t, err)
	assert.Empty(t, id.Namespace)
	assert.Empty(t, id.Version)
	assert.Equal(t, "golang.org/x/sync", id.Name)
}

func TestParseIdentifierMalformed(t *testing.T) {
	for _, s := range []string{"", "a", "a:b", "a:b:c", "a:b:c:d:e"} {
		_, err := ParseIdentifier(s)
		var malformed *MalformedIdentifierError
		require.ErrorAs(t, err, &malformed, "input %q", s)
		assert.Equal(t, s, malformed.Value)
	}
}

func TestIdentifierRoundTrip(t *testing.T) {
	ids := []Identifier{
		{Type: "Maven", Namespace: "org.example", Name: "lib", Version: "1.0.0"},
		{Type: "NPM", Namespace: "@scope", Name: "pkg", Version: "2.3.4"},
		{Type: "Go", Name: "golang.org/x/sync", Version: "v0.16.0"},
		{},
	}
	for _, id := range ids {
		parsed, err := ParseIdentifier(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
}

func TestIdentifierCompare(t *testing.T) {
	a := Identifier{Type: "Go", Name: "a", Version: "1"}
	b := Identifier{Type: "Go", Name: "a", Version: "2"}
	c := Identifier{Type: "Go", Name: "b", Version: "1"}
	d := Identifier{Type: "Maven", Name: "a", Version: "1"}

	assert.Negative(t, a.Compare(b))
	assert.Negative(t, b.Compare(c))
	assert.Negative(t, c.Compare(d))
	assert.Zero(t, a.Compare(a))
	assert.Positive(t, d.Compare(a))
}

func TestSortIdentifiers(t *testing.T) {
	ids := []Identifier{
		{Type: "NPM", Name: "b"},
		{Type: "Go", Name: "z"},
		{Type: "Go", Name: "a", Version: "2"},
		{Type: "Go", Name: "a", Version: "1"},
	}
	SortIdentifiers(ids)
	assert.Equal(t, []Identifier{
		{Type: "Go", Name: "a", Version: "1"},
		{Type: "Go", Name: "a", Version: "2"},
		{Type: "Go", Name: "z"},
		{Type: "NPM", Name: "b"},
	}, ids)
}

func TestIdentifierYAMLEncoding(t *testing.T) {
	type doc struct {
		ID Identifier `yaml:"id"`
	}
	out, err := yaml.Marshal(doc{ID: Identifier{Type: "NPM", Namespace: "@scope", Name: "pkg", Version: "1.0.0"}})
	require.NoError(t, err)

	// The identifier must serialize as one joined scalar, not a mapping.
	var raw map[string]string
	require.NoError(t, yaml.Unmarshal(out, &raw))
	assert.Equal(t, "NPM:@scope:pkg:1.0.0", raw["id"])

	var decoded doc
	require.NoError(t, yaml.Unmarshal([]byte("id: \"NPM:@scope:pkg:1.0.0\"\n"), &decoded))
	assert.Equal(t, "@scope", decoded.ID.Namespace)

	err = yaml.Unmarshal([]byte("id: \"not-an-identifier\"\n"), &decoded)
	var malformed *MalformedIdentifierError
	assert.ErrorAs(t, err, &malformed)
}

func TestIdentifierJSONEncoding(t *testing.T) {
	id := Identifier{Type: "Go", Name: "golang.org/x/sync", Version: "v0.16.0"}
	out, err := json.Marshal(map[Identifier]int{id: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Go::golang.org/x/sync:v0.16.0": 1}`, string(out))

	var back Identifier
	require.NoError(t, json.Unmarshal([]byte(`"Go::golang.org/x/sync:v0.16.0"`), &back))
	assert.Equal(t, id, back)
}
