package model

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Identifier is the canonical key for a package or project across the whole
// model: a 4-tuple of (type, namespace, name, version). Namespace and version
// may be empty; an empty version means "unspecified".
type Identifier struct {
	Type      string
	Namespace string
	Name      string
	Version   string
}

// MalformedIdentifierError is returned when a serialized identifier does not
// consist of exactly four colon-separated segments.
type MalformedIdentifierError struct {
	Value string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("malformed identifier %q: expected 4 colon-separated segments", e.Value)
}

// ParseIdentifier parses the canonical "type:namespace:name:version" form.
func ParseIdentifier(s string) (Identifier, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return Identifier{}, &MalformedIdentifierError{Value: s}
	}
	return Identifier{
		Type:      parts[0],
		Namespace: parts[1],
		Name:      parts[2],
		Version:   parts[3],
	}, nil
}

// String returns the canonical colon-joined encoding.
func (id Identifier) String() string {
	return id.Type + ":" + id.Namespace + ":" + id.Name + ":" + id.Version
}

// IsEmpty reports whether all four fields are empty.
func (id Identifier) IsEmpty() bool {
	return id == Identifier{}
}

// Compare orders identifiers lexicographically on (type, namespace, name,
// version). It returns -1, 0 or 1 in the manner of strings.Compare.
func (id Identifier) Compare(other Identifier) int {
	if c := strings.Compare(id.Type, other.Type); c != 0 {
		return c
	}
	if c := strings.Compare(id.Namespace, other.Namespace); c != 0 {
		return c
	}
	if c := strings.Compare(id.Name, other.Name); c != 0 {
		return c
	}
	return strings.Compare(id.Version, other.Version)
}

// MarshalText implements encoding.TextMarshaler so identifiers serialize as
// the joined string in JSON, including as map keys.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentifier(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalYAML serializes the identifier as its canonical string.
func (id Identifier) MarshalYAML() (interface{}, error) {
	return id.String(), nil
}

// UnmarshalYAML parses the canonical string form.
func (id *Identifier) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseIdentifier(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// SortIdentifiers sorts ids in place into canonical order.
func SortIdentifiers(ids []Identifier) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
}
