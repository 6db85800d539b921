// Package npm resolves JavaScript dependency metadata from package.json
// files, using a sibling package-lock.json for exact versions when present.
package npm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"depscope/internal/model"
	"depscope/internal/plugin"
	"depscope/internal/plugins/packagemanagers"
)

const (
	managerName = "npm"

	// Identifier type shared by projects and packages; the npm registry is
	// one namespace for both.
	npmType = "NPM"

	// Scope names mirror the manifest keys.
	scopeDependencies    = "dependencies"
	scopeDevDependencies = "devDependencies"

	lockFileName = "package-lock.json"
)

var optIncludeDev = plugin.Option{
	Name:        "include_dev",
	Description: "Resolve devDependencies into their own scope.",
	Type:        plugin.BoolType,
	Default:     "true",
}

// Descriptor describes the plugin and its options.
func Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		ID:          managerName,
		DisplayName: "NPM",
		Description: "Resolves dependencies declared in package.json files, pinned by package-lock.json when available.",
		Options:     []plugin.Option{optIncludeDev},
	}
}

// Factory returns the registry factory for the npm manager.
func Factory() plugin.Factory[plugin.PackageManager] {
	return plugin.NewFactory(Descriptor(), func(config plugin.Config) (plugin.PackageManager, error) {
		includeDev, _, err := optIncludeDev.BoolValue(config)
		if err != nil {
			return nil, err
		}
		return &Manager{includeDev: includeDev}, nil
	})
}

// Manager is the package.json package manager plugin.
type Manager struct {
	includeDev bool
}

func (m *Manager) Name() string { return managerName }

// DefinitionFilePatterns matches package.json manifests. Lock files are not
// definition files themselves; they are picked up next to a manifest.
func (m *Manager) DefinitionFilePatterns() []string { return []string{"package.json"} }

// ResolveDependencies resolves all files, per-file failures become issues.
func (m *Manager) ResolveDependencies(ctx context.Context, definitionFiles []string) (map[string]model.FileResult, error) {
	return packagemanagers.ResolveAll(ctx, m, definitionFiles)
}

// ResolveFile parses one package.json into a project with dependencies and
// devDependencies scopes. When a package-lock.json sits next to the manifest
// its resolved versions and tarball artifacts take precedence over the
// declared version ranges; a broken lock file degrades to a warning rather
// than failing the manifest.
func (m *Manager) ResolveFile(ctx context.Context, definitionFile string) (model.FileResult, error) {
	if err := ctx.Err(); err != nil {
		return model.FileResult{}, err
	}

	manifest, err := parsePackageJSON(definitionFile)
	if err != nil {
		return model.FileResult{}, err
	}

	var issues []model.Issue
	lock, lockErr := loadLock(filepath.Dir(definitionFile))
	if lockErr != nil {
		issues = append(issues, model.NewIssue(managerName, model.SeverityWarning,
			"failed to parse lock file next to %s: %v", definitionFile, lockErr).
			WithPath(definitionFile))
	}

	var scopes []model.Scope
	var packages []model.Package

	refs, pkgs := m.buildScope(manifest.Dependencies, lock)
	if len(refs) > 0 {
		scopes = append(scopes, model.Scope{Name: scopeDependencies, Dependencies: refs})
		packages = append(packages, pkgs...)
	}
	if m.includeDev {
		refs, pkgs = m.buildScope(manifest.DevDependencies, lock)
		if len(refs) > 0 {
			scopes = append(scopes, model.Scope{Name: scopeDevDependencies, Dependencies: refs})
			packages = append(packages, pkgs...)
		}
	}

	name := manifest.Name
	if name == "" {
		// Private root manifests often omit the name; fall back to the
		// directory so the project still gets a stable identifier.
		abs, absErr := filepath.Abs(definitionFile)
		if absErr != nil {
			return model.FileResult{}, fmt.Errorf("%s has no name and no resolvable directory: %w", definitionFile, absErr)
		}
		name = filepath.Base(filepath.Dir(abs))
	}
	namespace, base := splitScoped(name)

	project := model.Project{
		ID: model.Identifier{
			Type:      npmType,
			Namespace: namespace,
			Name:      base,
			Version:   manifest.Version,
		},
		DefinitionFilePath: definitionFile,
		VCS:                model.VcsInfo(manifest.Repository),
		Scopes:             scopes,
	}
	if manifest.License != "" {
		project.DeclaredLicenses = []string{string(manifest.License)}
	}

	return model.FileResult{Project: project, Packages: packages, Issues: issues}, nil
}

// buildScope turns one requirement map into sorted references plus the
// packages backing them.
func (m *Manager) buildScope(requirements map[string]string, lock *packageLock) ([]model.PackageReference, []model.Package) {
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
		requirement := requirements[name]
		namespace, base := splitScoped(name)

		version := cleanNpmVersion(requirement)
		var artifact model.RemoteArtifact
		if entry, ok := lock.lookup(name); ok {
			version = entry.Version
			artifact = model.RemoteArtifact{URL: entry.Resolved, Hash: entry.Integrity}
		}

		id := model.Identifier{Type: npmType, Namespace: namespace, Name: base, Version: version}
		refs = append(refs, model.PackageReference{ID: id, Linkage: model.LinkageDynamic})
		packages = append(packages, model.Package{
			ID:             id,
			PURL:           npmPURL(namespace, base, version),
			SourceArtifact: artifact,
		})
	}
	return refs, packages
}

func npmPURL(namespace, name, version string) string {
	p := "pkg:npm/"
	if namespace != "" {
		p += url.PathEscape(namespace) + "/"
	}
	p += name
	if version != "" {
		p += "@" + version
	}
	return p
}

// splitScoped splits "@scope/name" into its namespace and name parts.
func splitScoped(name string) (namespace, base string) {
	if !strings.HasPrefix(name, "@") {
		return "", name
	}
	idx := strings.Index(name, "/")
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}

func cleanNpmVersion(v string) string {
	v = strings.TrimPrefix(v, "^")
	v = strings.TrimPrefix(v, "~")
	v = strings.TrimPrefix(v, ">=")
	v = strings.TrimPrefix(v, ">")
	v = strings.TrimPrefix(v, "=")
	return strings.TrimSpace(v)
}

type packageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	License         licenseField      `json:"license"`
	Repository      repositoryField   `json:"repository"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// licenseField accepts the modern SPDX string form as well as the legacy
// {"type": ..., "url": ...} object form.
type licenseField string

func (l *licenseField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = licenseField(s)
		return nil
	}
	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*l = licenseField(obj.Type)
	return nil
}

// repositoryField accepts both the shorthand string form and the
// {"type": ..., "url": ...} object form.
type repositoryField model.VcsInfo

func (r *repositoryField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = repositoryField{URL: s}
		return nil
	}
	var obj struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = repositoryField{Type: obj.Type, URL: obj.URL}
	return nil
}

func parsePackageJSON(path string) (*packageJSON, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var data packageJSON
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &data, nil
}

type lockEntry struct {
	Version   string `json:"version"`
	Resolved  string `json:"resolved"`
	Integrity string `json:"integrity"`
}

type packageLock struct {
	LockfileVersion int                  `json:"lockfileVersion"`
	Packages        map[string]lockEntry `json:"packages"`
	Dependencies    map[string]lockEntry `json:"dependencies"`
}

// loadLock reads the package-lock.json in dir. A missing lock file is not an
// error; a malformed one is, so the caller can surface it as a warning.
func loadLock(dir string) (*packageLock, error) {
	f, err := os.Open(filepath.Join(dir, lockFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lock packageLock
	if err := json.NewDecoder(f).Decode(&lock); err != nil {
		return nil, err
	}
	return &lock, nil
}

// lookup finds the resolved entry for a top-level dependency. Lockfile
// versions 2 and 3 key the packages map by node_modules path; version 1 keys
// the dependencies map by plain name.
func (l *packageLock) lookup(name string) (lockEntry, bool) {
	if l == nil {
		return lockEntry{}, false
	}
	if entry, ok := l.Packages["node_modules/"+name]; ok {
		return entry, true
	}
	entry, ok := l.Dependencies[name]
	return entry, ok
}
