package filecuration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscope/internal/model"
	"depscope/internal/plugin"
)

const sampleCurations = `- id: "NPM::lodash:4.17.21"
  curations:
    concluded_license: "MIT"
    comment: "License verified against the repository."
- id: "not-a-valid-identifier"
  curations:
    concluded_license: "GPL-2.0-only"
- id: "Go::github.com/acme/lib:v1.2.0"
  curations:
    homepage: "https://acme.dev/lib"
    is_metadata_only: true
`

func writeCurations(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "curations.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func pkgWithID(t *testing.T, raw string) model.Package {
	t.Helper()
	id, err := model.ParseIdentifier(raw)
	require.NoError(t, err)
	return model.Package{ID: id}
}

func TestGetCurationsFor(t *testing.T) {
	path := writeCurations(t, sampleCurations)
	p, err := Factory().Create(plugin.Config{"path": path})
	require.NoError(t, err)

	pkgs := []model.Package{
		pkgWithID(t, "NPM::lodash:4.17.21"),
		pkgWithID(t, "NPM::express:4.18.0"),
	}
	curations, err := p.GetCurationsFor(context.Background(), pkgs)
	require.NoError(t, err)

	// Only the batched package matches; the Go curation stays unused.
	require.Len(t, curations, 1)
	assert.Equal(t, "lodash", curations[0].ID.Name)
	require.NotNil(t, curations[0].Data.ConcludedLicense)
	assert.Equal(t, "MIT", *curations[0].Data.ConcludedLicense)
}

func TestMalformedRecordBecomesIssue(t *testing.T) {
	path := writeCurations(t, sampleCurations)
	p, err := Factory().Create(plugin.Config{"path": path})
	require.NoError(t, err)

	reporter, ok := p.(plugin.IssueReporter)
	require.True(t, ok)

	issues := reporter.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, model.SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "skipped curation record 1")

	// The surviving records still serve.
	curations, err := p.GetCurationsFor(context.Background(), []model.Package{
		pkgWithID(t, "Go::github.com/acme/lib:v1.2.0"),
	})
	require.NoError(t, err)
	require.Len(t, curations, 1)
	require.NotNil(t, curations[0].Data.IsMetadataOnly)
	assert.True(t, *curations[0].Data.IsMetadataOnly)
}

func TestMissingFileFailsCreation(t *testing.T) {
	_, err := Factory().Create(plugin.Config{"path": filepath.Join(t.TempDir(), "absent.yml")})
	require.Error(t, err)
}

func TestMissingPathOptionFailsCreation(t *testing.T) {
	_, err := Factory().Create(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrConfiguration)
}

func TestOversizedFileRejected(t *testing.T) {
	path := writeCurations(t, sampleCurations)
	_, err := Factory().Create(plugin.Config{"path": path, "max_bytes": "16"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit is 16")
}

func TestUnparsableFileFailsCreation(t *testing.T) {
	path := writeCurations(t, "curations: {nested: wrong shape}")
	_, err := Factory().Create(plugin.Config{"path": path})
	require.Error(t, err)
}
