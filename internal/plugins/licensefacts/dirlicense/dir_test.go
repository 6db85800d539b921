package dirlicense

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscope/internal/plugin"
)

func newProvider(t *testing.T) (plugin.LicenseFactProvider, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MIT.txt"), []byte("MIT License\n\nPermission is hereby granted..."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Apache-2.0.txt"), []byte("Apache License Version 2.0"), 0o644))

	p, err := Factory().Create(plugin.Config{"path": dir})
	require.NoError(t, err)
	return p, dir
}

func TestLicenseTexts(t *testing.T) {
	p, _ := newProvider(t)

	assert.True(t, p.HasLicenseText("MIT"))
	assert.True(t, p.HasLicenseText("Apache-2.0"))
	assert.False(t, p.HasLicenseText("GPL-3.0-only"))

	text, ok := p.GetLicenseText("MIT")
	require.True(t, ok)
	assert.Contains(t, text, "Permission is hereby granted")

	_, ok = p.GetLicenseText("GPL-3.0-only")
	assert.False(t, ok)
}

func TestRejectsEscapingIdentifiers(t *testing.T) {
	p, dir := newProvider(t)

	// Plant a file outside the directory that a traversal would reach.
	outside := filepath.Join(filepath.Dir(dir), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("leaked"), 0o644))

	for _, id := range []string{"", ".", "..", "../secret", "sub/MIT", `sub\MIT`} {
		assert.False(t, p.HasLicenseText(id), "id %q must be rejected", id)
		_, ok := p.GetLicenseText(id)
		assert.False(t, ok, "id %q must be rejected", id)
	}
}

func TestFactory_PathMustBeDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "MIT.txt")
	require.NoError(t, os.WriteFile(file, []byte("text"), 0o644))

	_, err := Factory().Create(plugin.Config{"path": file})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestFactory_MissingPath(t *testing.T) {
	_, err := Factory().Create(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrConfiguration)
}
