package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscope/internal/cache"
	"depscope/internal/model"
)

func TestCacheStatsAndClear(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "resolutions.db")
	viper.Set("cache.path", cachePath)

	// Seed one entry.
	store, err := cache.NewStore(cachePath)
	require.NoError(t, err)
	err = store.Put("gomod", "a/go.mod", "hash-1", model.FileResult{
		Project: model.Project{
			ID:                 model.Identifier{Type: "GoMod", Name: "example.com/a"},
			DefinitionFilePath: "a/go.mod",
		},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out, err := executeCommand(rootCmd, "cache", "stats")
	assert.NoError(t, err)
	assert.Contains(t, out, "Resolution cache")
	assert.Contains(t, out, cachePath)
	assert.Contains(t, out, "Entries")
	assert.Contains(t, out, "1")
	assert.Contains(t, out, "gomod")

	out, err = executeCommand(rootCmd, "cache", "clear")
	assert.NoError(t, err)
	assert.Contains(t, out, "cleared")

	store, err = cache.NewStore(cachePath)
	require.NoError(t, err)
	defer store.Close()
	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}

func TestCacheStats_UnwritableDir(t *testing.T) {
	viper.Set("cache.path", filepath.Join(t.TempDir(), "missing", "x", "resolutions.db"))

	// The directory is created on demand, so stats on a fresh path succeed.
	out, err := executeCommand(rootCmd, "cache", "stats")
	assert.NoError(t, err)
	assert.Contains(t, out, "Entries")
}
