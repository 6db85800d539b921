// Package gomod resolves Go module dependency metadata from go.mod files.
package gomod

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"depscope/internal/model"
	"depscope/internal/plugin"
	"depscope/internal/plugins/packagemanagers"
)

const (
	managerName = "gomod"

	// Identifier types used for projects and packages.
	projectType = "GoMod"
	packageType = "Go"

	// Scope names.
	scopeMain     = "main"
	scopeIndirect = "indirect"
)

var optIncludeIndirect = plugin.Option{
	Name:        "include_indirect",
	Description: "Resolve modules marked '// indirect' into the indirect scope.",
	Type:        plugin.BoolType,
	Default:     "true",
}

// Descriptor describes the plugin and its options.
func Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		ID:          managerName,
		DisplayName: "Go Modules",
		Description: "Resolves dependencies declared in go.mod files, honoring exclude and replace directives.",
		Options:     []plugin.Option{optIncludeIndirect},
	}
}

// Factory returns the registry factory for the gomod manager.
func Factory() plugin.Factory[plugin.PackageManager] {
	return plugin.NewFactory(Descriptor(), func(config plugin.Config) (plugin.PackageManager, error) {
		includeIndirect, _, err := optIncludeIndirect.BoolValue(config)
		if err != nil {
			return nil, err
		}
		return &Manager{includeIndirect: includeIndirect}, nil
	})
}

// Manager is the go.mod package manager plugin.
type Manager struct {
	includeIndirect bool
}

func (m *Manager) Name() string { return managerName }

// DefinitionFilePatterns matches go.mod files.
func (m *Manager) DefinitionFilePatterns() []string { return []string{"go.mod"} }

// ResolveDependencies resolves all files, per-file failures become issues.
func (m *Manager) ResolveDependencies(ctx context.Context, definitionFiles []string) (map[string]model.FileResult, error) {
	return packagemanagers.ResolveAll(ctx, m, definitionFiles)
}

// ResolveFile parses one go.mod and builds the project with its main and
// indirect scopes. Excluded module versions are dropped, replace directives
// are applied before packages are built, and duplicate module paths collapse
// to the highest version.
func (m *Manager) ResolveFile(ctx context.Context, definitionFile string) (model.FileResult, error) {
	if err := ctx.Err(); err != nil {
		return model.FileResult{}, err
	}

	parsed, err := parseGoMod(definitionFile)
	if err != nil {
		return model.FileResult{}, err
	}
	if parsed.modulePath == "" {
		return model.FileResult{}, fmt.Errorf("%s has no module directive", definitionFile)
	}

	deps := parsed.effectiveRequires()

	var mainRefs, indirectRefs []model.PackageReference
	var packages []model.Package
	for _, dep := range deps {
		if dep.indirect && !m.includeIndirect {
			continue
		}
		id := model.Identifier{Type: packageType, Name: dep.path, Version: dep.version}
		ref := model.PackageReference{ID: id, Linkage: dep.linkage}
		if dep.indirect {
			indirectRefs = append(indirectRefs, ref)
		} else {
			mainRefs = append(mainRefs, ref)
		}
		packages = append(packages, model.Package{
			ID:   id,
			PURL: golangPURL(dep.path, dep.version),
		})
	}

	var scopes []model.Scope
	if len(mainRefs) > 0 {
		scopes = append(scopes, model.Scope{Name: scopeMain, Dependencies: mainRefs})
	}
	if len(indirectRefs) > 0 {
		scopes = append(scopes, model.Scope{Name: scopeIndirect, Dependencies: indirectRefs})
	}

	return model.FileResult{
		Project: model.Project{
			ID:                 model.Identifier{Type: projectType, Name: parsed.modulePath},
			DefinitionFilePath: definitionFile,
			Scopes:             scopes,
		},
		Packages: packages,
	}, nil
}

func golangPURL(path, version string) string {
	if version == "" {
		return "pkg:golang/" + path
	}
	return "pkg:golang/" + path + "@" + version
}

type goModDep struct {
	path     string
	version  string
	indirect bool
	linkage  model.Linkage
}

type goModFile struct {
	modulePath string
	requires   []goModDep
	excludes   map[string]bool     // "path@version"
	replaces   map[string]goModDep // keyed by "path@version", then "path"
}

// parseGoMod reads a go.mod line by line, tracking require, exclude and
// replace blocks.
func parseGoMod(path string) (*goModFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := &goModFile{
		excludes: make(map[string]bool),
		replaces: make(map[string]goModDep),
	}

	scanner := bufio.NewScanner(f)
	block := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if block != "" {
			if line == ")" {
				block = ""
				continue
			}
			parseDirectiveLine(out, block, line)
			continue
		}

		switch {
		case strings.HasPrefix(line, "module "):
			out.modulePath = strings.TrimSpace(strings.TrimPrefix(line, "module "))
		case line == "require (":
			block = "require"
		case line == "exclude (":
			block = "exclude"
		case line == "replace (":
			block = "replace"
		case strings.HasPrefix(line, "require "):
			parseDirectiveLine(out, "require", strings.TrimPrefix(line, "require "))
		case strings.HasPrefix(line, "exclude "):
			parseDirectiveLine(out, "exclude", strings.TrimPrefix(line, "exclude "))
		case strings.HasPrefix(line, "replace "):
			parseDirectiveLine(out, "replace", strings.TrimPrefix(line, "replace "))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseDirectiveLine(out *goModFile, directive, line string) {
	switch directive {
	case "require":
		parts := strings.Fields(line)
		if len(parts) < 2 {
			return
		}
		out.requires = append(out.requires, goModDep{
			path:     parts[0],
			version:  parts[1],
			indirect: strings.Contains(line, "// indirect"),
			linkage:  model.LinkageStatic,
		})
	case "exclude":
		parts := strings.Fields(line)
		if len(parts) < 2 {
			return
		}
		out.excludes[parts[0]+"@"+parts[1]] = true
	case "replace":
		parseReplace(out, line)
	}
}

// parseReplace handles "old [v] => new [v]". A replacement without a version
// is a filesystem path and resolves as a workspace project reference.
func parseReplace(out *goModFile, line string) {
	sides := strings.SplitN(line, "=>", 2)
	if len(sides) != 2 {
		return
	}
	oldParts := strings.Fields(sides[0])
	newParts := strings.Fields(sides[1])
	if len(oldParts) == 0 || len(newParts) == 0 {
		return
	}

	key := oldParts[0]
	if len(oldParts) > 1 {
		key += "@" + oldParts[1]
	}

	rep := goModDep{path: newParts[0], linkage: model.LinkageStatic}
	if len(newParts) > 1 {
		rep.version = newParts[1]
	} else {
		// Filesystem replacement: a sibling module in the same workspace.
		rep.linkage = model.LinkageProject
	}
	out.replaces[key] = rep
}

// effectiveRequires applies excludes and replaces, then collapses duplicate
// module paths to the highest version, approximating minimal version
// selection.
func (f *goModFile) effectiveRequires() []goModDep {
	byPath := make(map[string]goModDep)
	var order []string

	for _, dep := range f.requires {
		if f.excludes[dep.path+"@"+dep.version] {
			continue
		}

		if rep, ok := f.replaces[dep.path+"@"+dep.version]; ok {
			dep = applyReplace(dep, rep)
		} else if rep, ok := f.replaces[dep.path]; ok {
			dep = applyReplace(dep, rep)
		}

		current, seen := byPath[dep.path]
		if !seen {
			byPath[dep.path] = dep
			order = append(order, dep.path)
			continue
		}
		if higherVersion(dep.version, current.version) {
			// Keep the direct flag if either occurrence was direct.
			dep.indirect = dep.indirect && current.indirect
			byPath[dep.path] = dep
		} else if !dep.indirect {
			current.indirect = false
			byPath[dep.path] = current
		}
	}

	sort.Strings(order)
	deps := make([]goModDep, 0, len(order))
	for _, path := range order {
		deps = append(deps, byPath[path])
	}
	return deps
}

func applyReplace(dep, rep goModDep) goModDep {
	out := dep
	out.path = rep.path
	out.linkage = rep.linkage
	if rep.linkage == model.LinkageProject {
		out.version = ""
	} else if rep.version != "" {
		out.version = rep.version
	}
	return out
}

// higherVersion reports whether a is a higher semantic version than b.
// Unparseable versions lose against parseable ones.
func higherVersion(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil {
		return false
	}
	if errB != nil {
		return true
	}
	return va.GreaterThan(vb)
}
