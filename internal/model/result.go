package model

import (
	"runtime"
	"sort"
	"time"
)

// Environment captures where a run happened.
type Environment struct {
	OS      string `yaml:"os" json:"os"`
	Arch    string `yaml:"arch" json:"arch"`
	Version string `yaml:"depscope_version" json:"depscope_version"`
}

// CurrentEnvironment describes the running process.
func CurrentEnvironment(version string) Environment {
	return Environment{OS: runtime.GOOS, Arch: runtime.GOARCH, Version: version}
}

// AnalyzerResult is the unified outcome of one analyzer run: every resolved
// project, the deduplicated package set, all recorded issues and one
// dependency graph per package manager.
type AnalyzerResult struct {
	RunID       string                     `yaml:"run_id,omitempty" json:"run_id,omitempty"`
	StartTime   time.Time                  `yaml:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime     time.Time                  `yaml:"end_time,omitempty" json:"end_time,omitempty"`
	Environment Environment                `yaml:"environment,omitempty" json:"environment,omitempty"`
	Projects    []Project                  `yaml:"projects" json:"projects"`
	Packages    []Package                  `yaml:"packages" json:"packages"`
	Issues      []Issue                    `yaml:"issues" json:"issues"`
	Graphs      map[string]DependencyGraph `yaml:"dependency_graphs" json:"dependency_graphs"`
}

// ProjectIDs returns the set of project identifiers in the result.
func (r *AnalyzerResult) ProjectIDs() map[Identifier]bool {
	ids := make(map[Identifier]bool, len(r.Projects))
	for _, p := range r.Projects {
		ids[p.ID] = true
	}
	return ids
}

// PackageByID finds a package by identifier.
func (r *AnalyzerResult) PackageByID(id Identifier) (Package, bool) {
	for _, p := range r.Packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

// Validate checks the result invariant: every identifier referenced by a
// graph must have a corresponding package or be a project id. Violations are
// reported as ERROR issues rather than failing the run.
func (r *AnalyzerResult) Validate() []Issue {
	known := r.ProjectIDs()
	for _, p := range r.Packages {
		known[p.ID] = true
	}

	var issues []Issue
	graphNames := make([]string, 0, len(r.Graphs))
	for name := range r.Graphs {
		graphNames = append(graphNames, name)
	}
	sort.Strings(graphNames)

	for _, name := range graphNames {
		graph := r.Graphs[name]
		for _, id := range graph.ReferencedIdentifiers() {
			if !known[id] {
				issues = append(issues, NewIssue("analyzer", SeverityError,
					"dependency graph %q references %s which is neither a package nor a project", name, id))
			}
		}
	}
	return issues
}

// Sort orders projects, packages and issues deterministically so equal runs
// produce byte-equal documents.
func (r *AnalyzerResult) Sort() {
	sort.Slice(r.Projects, func(i, j int) bool {
		return r.Projects[i].ID.Compare(r.Projects[j].ID) < 0
	})
	sort.Slice(r.Packages, func(i, j int) bool {
		return r.Packages[i].ID.Compare(r.Packages[j].ID) < 0
	})
	sort.SliceStable(r.Issues, func(i, j int) bool {
		if r.Issues[i].Source != r.Issues[j].Source {
			return r.Issues[i].Source < r.Issues[j].Source
		}
		return r.Issues[i].Message < r.Issues[j].Message
	})
}
