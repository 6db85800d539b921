// Package filecuration serves package curations from a local YAML file.
package filecuration

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"depscope/internal/model"
	"depscope/internal/plugin"
)

const providerName = "file"

var (
	optPath = plugin.Option{
		Name:        "path",
		Description: "Path of the YAML curations file.",
		Type:        plugin.StringType,
		Required:    true,
	}
	optMaxBytes = plugin.Option{
		Name:        "max_bytes",
		Description: "Largest curations file the provider will read.",
		Type:        plugin.LongType,
		Default:     "10485760",
	}
)

// Descriptor describes the plugin and its options.
func Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		ID:          providerName,
		DisplayName: "Curations File",
		Description: "Serves curations from a YAML list of {id, curations} records.",
		Options:     []plugin.Option{optPath, optMaxBytes},
	}
}

// Factory returns the registry factory for the file provider. The file is
// read once at construction: an unreadable file is a configuration error,
// while individually malformed records degrade to issues.
func Factory() plugin.Factory[plugin.CurationProvider] {
	return plugin.NewFactory(Descriptor(), func(config plugin.Config) (plugin.CurationProvider, error) {
		path, err := optPath.StringValue(config)
		if err != nil {
			return nil, err
		}
		maxBytes, _, err := optMaxBytes.Int64Value(config)
		if err != nil {
			return nil, err
		}
		return load(path, maxBytes)
	})
}

// Provider holds the curations parsed at construction time.
type Provider struct {
	path      string
	curations []model.PackageCuration
	issues    []model.Issue
}

func (p *Provider) Name() string { return providerName }

// GetCurationsFor returns the loaded curations whose identifier matches a
// package in the batch, in file order.
func (p *Provider) GetCurationsFor(ctx context.Context, pkgs []model.Package) ([]model.PackageCuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wanted := make(map[model.Identifier]bool, len(pkgs))
	for _, pkg := range pkgs {
		wanted[pkg.ID] = true
	}

	var matches []model.PackageCuration
	for _, curation := range p.curations {
		if wanted[curation.ID] {
			matches = append(matches, curation)
		}
	}
	return matches, nil
}

// Issues returns the records that failed to parse.
func (p *Provider) Issues() []model.Issue { return p.issues }

type fileRecord struct {
	ID        string                    `yaml:"id"`
	Curations model.PackageCurationData `yaml:"curations"`
}

func load(path string, maxBytes int64) (*Provider, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("curations file: %w", err)
	}
	if info.Size() > maxBytes {
		return nil, fmt.Errorf("curations file %s is %d bytes, limit is %d", path, info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("curations file: %w", err)
	}

	var records []fileRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("curations file %s: %w", path, err)
	}

	provider := &Provider{path: path}
	for i, record := range records {
		id, err := model.ParseIdentifier(record.ID)
		if err != nil {
			provider.issues = append(provider.issues, model.NewIssue(providerName, model.SeverityWarning,
				"skipped curation record %d in %s: %v", i, path, err).WithPath(path))
			continue
		}
		provider.curations = append(provider.curations, model.PackageCuration{ID: id, Data: record.Curations})
	}
	return provider, nil
}
