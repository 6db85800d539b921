// Package structured renders analyzer results as YAML or JSON documents.
package structured

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"depscope/internal/model"
	"depscope/internal/plugin"
)

var optPretty = plugin.Option{
	Name:        "pretty",
	Description: "Indent the JSON document for human readers.",
	Type:        plugin.BoolType,
	Default:     "true",
}

// YAMLDescriptor describes the yaml reporter.
func YAMLDescriptor() plugin.Descriptor {
	return plugin.Descriptor{
		ID:          "yaml",
		DisplayName: "YAML Reporter",
		Description: "Writes the analyzer result as analyzer-result.yml.",
	}
}

// JSONDescriptor describes the json reporter.
func JSONDescriptor() plugin.Descriptor {
	return plugin.Descriptor{
		ID:          "json",
		DisplayName: "JSON Reporter",
		Description: "Writes the analyzer result as analyzer-result.json.",
		Options:     []plugin.Option{optPretty},
	}
}

// YAMLFactory returns the registry factory for the yaml reporter.
func YAMLFactory() plugin.Factory[plugin.Reporter] {
	return plugin.NewFactory(YAMLDescriptor(), func(config plugin.Config) (plugin.Reporter, error) {
		return &yamlReporter{}, nil
	})
}

// JSONFactory returns the registry factory for the json reporter.
func JSONFactory() plugin.Factory[plugin.Reporter] {
	return plugin.NewFactory(JSONDescriptor(), func(config plugin.Config) (plugin.Reporter, error) {
		pretty, _, err := optPretty.BoolValue(config)
		if err != nil {
			return nil, err
		}
		return &jsonReporter{pretty: pretty}, nil
	})
}

type yamlReporter struct{}

func (r *yamlReporter) Name() string { return "yaml" }

func (r *yamlReporter) Generate(ctx context.Context, result *model.AnalyzerResult, outputDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := yaml.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return writeDocument(outputDir, "analyzer-result.yml", data)
}

type jsonReporter struct {
	pretty bool
}

func (r *jsonReporter) Name() string { return "json" }

func (r *jsonReporter) Generate(ctx context.Context, result *model.AnalyzerResult, outputDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var data []byte
	var err error
	if r.pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return writeDocument(outputDir, "analyzer-result.json", append(data, '\n'))
}

func writeDocument(outputDir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
