// Package cargo resolves Rust crate dependency metadata from Cargo.toml
// manifests.
package cargo

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"depscope/internal/model"
	"depscope/internal/plugin"
	"depscope/internal/plugins/packagemanagers"
)

const (
	managerName = "cargo"

	// Identifier types used for projects and packages.
	projectType = "Cargo"
	packageType = "Crate"
)

// Manifest sections that may be resolved as scopes.
var knownScopes = []string{"dependencies", "dev-dependencies", "build-dependencies"}

var optScopes = plugin.Option{
	Name:        "scopes",
	Description: "Manifest dependency sections to resolve.",
	Type:        plugin.StringListType,
	Default:     strings.Join(knownScopes, ","),
}

// Descriptor describes the plugin and its options.
func Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		ID:          managerName,
		DisplayName: "Cargo",
		Description: "Resolves dependencies declared in Cargo.toml manifests, including path and git requirements.",
		Options:     []plugin.Option{optScopes},
	}
}

// Factory returns the registry factory for the cargo manager. Unknown scope
// names are a configuration error, caught before any file is resolved.
func Factory() plugin.Factory[plugin.PackageManager] {
	return plugin.NewFactory(Descriptor(), func(config plugin.Config) (plugin.PackageManager, error) {
		scopes, err := optScopes.StringListValue(config)
		if err != nil {
			return nil, err
		}
		for _, scope := range scopes {
			if !isKnownScope(scope) {
				return nil, fmt.Errorf("unknown scope %q: valid scopes are %s", scope, strings.Join(knownScopes, ", "))
			}
		}
		return &Manager{scopes: scopes}, nil
	})
}

func isKnownScope(scope string) bool {
	for _, known := range knownScopes {
		if scope == known {
			return true
		}
	}
	return false
}

// Manager is the Cargo.toml package manager plugin.
type Manager struct {
	scopes []string
}

func (m *Manager) Name() string { return managerName }

// DefinitionFilePatterns matches Cargo.toml manifests.
func (m *Manager) DefinitionFilePatterns() []string { return []string{"Cargo.toml"} }

// ResolveDependencies resolves all files, per-file failures become issues.
func (m *Manager) ResolveDependencies(ctx context.Context, definitionFiles []string) (map[string]model.FileResult, error) {
	return packagemanagers.ResolveAll(ctx, m, definitionFiles)
}

// ResolveFile parses one Cargo.toml into a project with one scope per
// configured manifest section. Registry requirements keep their raw form in
// a label next to the normalized version; path and workspace requirements
// resolve as project references.
func (m *Manager) ResolveFile(ctx context.Context, definitionFile string) (model.FileResult, error) {
	if err := ctx.Err(); err != nil {
		return model.FileResult{}, err
	}

	data, err := os.ReadFile(definitionFile)
	if err != nil {
		return model.FileResult{}, err
	}

	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return model.FileResult{}, fmt.Errorf("failed to parse %s: %w", definitionFile, err)
	}
	if manifest.Package.Name == "" {
		return model.FileResult{}, fmt.Errorf("%s has no [package] name", definitionFile)
	}

	var scopes []model.Scope
	var packages []model.Package
	for _, scope := range m.scopes {
		refs, pkgs := buildScope(manifest.section(scope))
		if len(refs) == 0 {
			continue
		}
		scopes = append(scopes, model.Scope{Name: scope, Dependencies: refs})
		packages = append(packages, pkgs...)
	}

	project := model.Project{
		ID: model.Identifier{
			Type:    projectType,
			Name:    manifest.Package.Name,
			Version: manifest.Package.Version,
		},
		DefinitionFilePath: definitionFile,
		Scopes:             scopes,
	}
	if manifest.Package.License != "" {
		project.DeclaredLicenses = []string{manifest.Package.License}
	}
	if manifest.Package.Repository != "" {
		project.VCS = model.VcsInfo{Type: "git", URL: manifest.Package.Repository}
	}

	return model.FileResult{Project: project, Packages: packages}, nil
}

// buildScope turns one manifest section into sorted references plus the
// packages backing them.
func buildScope(requirements map[string]interface{}) ([]model.PackageReference, []model.Package) {
	if len(requirements) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(requirements))
	for name := range requirements {
		names = append(names, name)
	}
	sort.Strings(names)

	refs := make([]model.PackageReference, 0, len(names))
	packages := make([]model.Package, 0, len(names))
	for _, name := range names {
		dep := parseDepValue(requirements[name])

		linkage := model.LinkageStatic
		version := normalizeRequirement(dep.requirement)
		if dep.path != "" || dep.workspace {
			// A crate in the same workspace, not a registry package.
			linkage = model.LinkageProject
			version = ""
		} else if dep.git != "" {
			version = dep.rev
		}

		id := model.Identifier{Type: packageType, Name: name, Version: version}
		refs = append(refs, model.PackageReference{ID: id, Linkage: linkage})

		pkg := model.Package{ID: id, PURL: cargoPURL(name, version)}
		if dep.git != "" {
			pkg.VCS = model.VcsInfo{Type: "git", URL: dep.git, Revision: dep.rev}
		}
		if dep.path != "" {
			pkg.Labels = map[string]string{"path": dep.path}
		} else if dep.requirement != "" {
			pkg.Labels = map[string]string{"requirement": dep.requirement}
		}
		packages = append(packages, pkg)
	}
	return refs, packages
}

func cargoPURL(name, version string) string {
	if version == "" {
		return "pkg:cargo/" + name
	}
	return "pkg:cargo/" + name + "@" + version
}

type cargoPackage struct {
	Name       string `toml:"name"`
	Version    string `toml:"version"`
	License    string `toml:"license"`
	Repository string `toml:"repository"`
}

type cargoManifest struct {
	Package           cargoPackage           `toml:"package"`
	Dependencies      map[string]interface{} `toml:"dependencies"`
	DevDependencies   map[string]interface{} `toml:"dev-dependencies"`
	BuildDependencies map[string]interface{} `toml:"build-dependencies"`
}

func (m *cargoManifest) section(scope string) map[string]interface{} {
	switch scope {
	case "dependencies":
		return m.Dependencies
	case "dev-dependencies":
		return m.DevDependencies
	case "build-dependencies":
		return m.BuildDependencies
	default:
		return nil
	}
}

type cargoDep struct {
	requirement string
	path        string
	git         string
	rev         string
	workspace   bool
}

// parseDepValue handles both requirement forms: the plain version string and
// the inline table with version, path, git or workspace keys.
func parseDepValue(v interface{}) cargoDep {
	switch val := v.(type) {
	case string:
		return cargoDep{requirement: val}
	case map[string]interface{}:
		dep := cargoDep{}
		if s, ok := val["version"].(string); ok {
			dep.requirement = s
		}
		if s, ok := val["path"].(string); ok {
			dep.path = s
		}
		if s, ok := val["git"].(string); ok {
			dep.git = s
		}
		if s, ok := val["rev"].(string); ok {
			dep.rev = s
		}
		if b, ok := val["workspace"].(bool); ok {
			dep.workspace = b
		}
		return dep
	default:
		return cargoDep{}
	}
}

// normalizeRequirement reduces a cargo version requirement to the version it
// names: the first comparator is kept, its operator stripped. The wildcard
// requirement carries no version at all.
func normalizeRequirement(req string) string {
	first := strings.TrimSpace(strings.SplitN(req, ",", 2)[0])
	for _, prefix := range []string{"^", "~", ">=", ">", "<=", "<", "="} {
		if strings.HasPrefix(first, prefix) {
			first = strings.TrimSpace(strings.TrimPrefix(first, prefix))
			break
		}
	}
	if first == "*" {
		return ""
	}
	return first
}
