// Package dirlicense serves license texts from a directory of .txt files,
// one file per license identifier.
package dirlicense

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"depscope/internal/plugin"
)

const providerName = "dir"

var optPath = plugin.Option{
	Name:        "path",
	Description: "Directory holding one <license id>.txt file per license.",
	Type:        plugin.StringType,
	Required:    true,
}

// Descriptor describes the plugin and its options.
func Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		ID:          providerName,
		DisplayName: "License Text Directory",
		Description: "Serves license texts from a local directory keyed by license identifier.",
		Options:     []plugin.Option{optPath},
	}
}

// Factory returns the registry factory for the dir provider.
func Factory() plugin.Factory[plugin.LicenseFactProvider] {
	return plugin.NewFactory(Descriptor(), func(config plugin.Config) (plugin.LicenseFactProvider, error) {
		path, err := optPath.StringValue(config)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("license directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("license directory %s is not a directory", path)
		}
		return &Provider{dir: path}, nil
	})
}

// Provider reads license texts on demand, never caching them.
type Provider struct {
	dir string
}

func (p *Provider) Name() string { return providerName }

// HasLicenseText reports whether a text file exists for the identifier.
func (p *Provider) HasLicenseText(id string) bool {
	file, ok := p.fileFor(id)
	if !ok {
		return false
	}
	info, err := os.Stat(file)
	return err == nil && info.Mode().IsRegular()
}

// GetLicenseText returns the text for the identifier if present.
func (p *Provider) GetLicenseText(id string) (string, bool) {
	file, ok := p.fileFor(id)
	if !ok {
		return "", false
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// fileFor maps an identifier to its file, rejecting identifiers that would
// escape the directory.
func (p *Provider) fileFor(id string) (string, bool) {
	if id == "" || id == "." || id == ".." {
		return "", false
	}
	if strings.ContainsAny(id, `/\`) {
		return "", false
	}
	return filepath.Join(p.dir, id+".txt"), true
}
