package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"depscope/internal/model"
)

func writeProjectFixture(t *testing.T, goMod string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(goMod), 0o644))
	return dir
}

const validGoMod = `module example.com/app

go 1.22

require github.com/spf13/cobra v1.8.1
`

func TestAnalyzeCmd(t *testing.T) {
	projectDir := writeProjectFixture(t, validGoMod)
	outDir := t.TempDir()

	out, code, err := executeCommandWithExitCode(rootCmd,
		"analyze", projectDir, "-o", outDir, "--no-cache")
	assert.NoError(t, err)
	assert.Equal(t, 0, code)

	assert.Contains(t, out, "Analysis complete")
	assert.Contains(t, out, "Projects")
	assert.Contains(t, out, "Packages")
	assert.Contains(t, out, "analyzer-result.yml")

	data, err := os.ReadFile(filepath.Join(outDir, "analyzer-result.yml"))
	require.NoError(t, err)

	var result model.AnalyzerResult
	require.NoError(t, yaml.Unmarshal(data, &result))
	require.Len(t, result.Projects, 1)
	assert.Equal(t, "example.com/app", result.Projects[0].ID.Name)
	require.Len(t, result.Packages, 1)
	assert.Equal(t, "github.com/spf13/cobra", result.Packages[0].ID.Name)
	assert.Empty(t, result.Issues)
}

func TestAnalyzeCmd_MultipleFormats(t *testing.T) {
	projectDir := writeProjectFixture(t, validGoMod)
	outDir := t.TempDir()

	_, code, err := executeCommandWithExitCode(rootCmd,
		"analyze", projectDir, "-o", outDir, "--format", "yaml,json", "--no-cache")
	assert.NoError(t, err)
	assert.Equal(t, 0, code)

	_, err = os.Stat(filepath.Join(outDir, "analyzer-result.yml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "analyzer-result.json"))
	assert.NoError(t, err)
}

func TestAnalyzeCmd_FailOnThreshold(t *testing.T) {
	// A go.mod without a module directive resolves to a synthetic project
	// carrying one ERROR issue.
	projectDir := writeProjectFixture(t, "require github.com/spf13/cobra v1.8.1\n")
	outDir := t.TempDir()

	out, code, err := executeCommandWithExitCode(rootCmd,
		"analyze", projectDir, "-o", outDir, "--no-cache")
	assert.NoError(t, err)
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "error")

	// The result document is still written before the threshold check.
	_, statErr := os.Stat(filepath.Join(outDir, "analyzer-result.yml"))
	assert.NoError(t, statErr)
}

func TestAnalyzeCmd_FailOnDisarmedByHintThreshold(t *testing.T) {
	projectDir := writeProjectFixture(t, validGoMod)
	outDir := t.TempDir()

	// No issues at all, so even the lowest threshold passes.
	_, code, err := executeCommandWithExitCode(rootCmd,
		"analyze", projectDir, "-o", outDir, "--fail-on", "hint", "--no-cache")
	assert.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestAnalyzeCmd_UnknownReporter(t *testing.T) {
	projectDir := writeProjectFixture(t, validGoMod)
	outDir := t.TempDir()

	_, code, err := executeCommandWithExitCode(rootCmd,
		"analyze", projectDir, "-o", outDir, "--format", "xml", "--no-cache")
	assert.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestAnalyzeCmd_UnknownManagerIsConfigurationError(t *testing.T) {
	projectDir := writeProjectFixture(t, validGoMod)
	outDir := t.TempDir()

	_, code, err := executeCommandWithExitCode(rootCmd,
		"analyze", projectDir, "-o", outDir, "--package-managers", "maven", "--no-cache")
	assert.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestAnalyzeCmd_NotADirectory(t *testing.T) {

	_, err := executeCommand(rootCmd, "analyze", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestAnalyzeCmd_FileCurations(t *testing.T) {
	projectDir := writeProjectFixture(t, validGoMod)
	outDir := t.TempDir()

	curationsPath := filepath.Join(t.TempDir(), "curations.yml")
	curations := `- id: "Go::github.com/spf13/cobra:v1.8.1"
  curations:
    comment: "normalize license"
    concluded_license: "Apache-2.0"
`
	require.NoError(t, os.WriteFile(curationsPath, []byte(curations), 0o644))

	viper.Set("plugin_config.file.path", curationsPath)

	_, code, err := executeCommandWithExitCode(rootCmd,
		"analyze", projectDir, "-o", outDir, "--curations", "file", "--no-cache")
	assert.NoError(t, err)
	assert.Equal(t, 0, code)

	data, err := os.ReadFile(filepath.Join(outDir, "analyzer-result.yml"))
	require.NoError(t, err)

	var result model.AnalyzerResult
	require.NoError(t, yaml.Unmarshal(data, &result))
	require.Len(t, result.Packages, 1)
	assert.Equal(t, "Apache-2.0", result.Packages[0].ConcludedLicense)
}
