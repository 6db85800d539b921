package model

// Linkage describes how a dependency attaches to its parent.
type Linkage string

const (
	// LinkageDynamic marks a dependency resolved at load/run time.
	LinkageDynamic Linkage = "dynamic"
	// LinkageStatic marks a dependency linked into the consuming artifact.
	LinkageStatic Linkage = "static"
	// LinkageProject marks a cross-reference to another project in the same
	// workspace. These references are the usual source of graph cycles.
	LinkageProject Linkage = "project"
)

// PackageReference is one node of the dependency tree a package manager
// reports for a scope. Children are the references the node itself requires.
type PackageReference struct {
	ID           Identifier         `yaml:"id" json:"id"`
	Linkage      Linkage            `yaml:"linkage,omitempty" json:"linkage,omitempty"`
	Dependencies []PackageReference `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// Scope is a named grouping of dependencies within a project, for example
// compile-time versus test-time.
type Scope struct {
	Name         string             `yaml:"name" json:"name"`
	Dependencies []PackageReference `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// Project describes one resolved definition file.
type Project struct {
	ID                 Identifier `yaml:"id" json:"id"`
	DefinitionFilePath string     `yaml:"definition_file_path" json:"definition_file_path"`
	DeclaredLicenses   []string   `yaml:"declared_licenses,omitempty" json:"declared_licenses,omitempty"`
	VCS                VcsInfo    `yaml:"vcs,omitempty" json:"vcs,omitempty"`
	VCSProcessed       VcsInfo    `yaml:"vcs_processed,omitempty" json:"vcs_processed,omitempty"`
	Scopes             []Scope    `yaml:"scopes,omitempty" json:"scopes,omitempty"`
}

// FileResult is everything a package manager produced for one definition
// file: the project, the packages backing its dependency references, and any
// issues encountered on the way.
type FileResult struct {
	Project  Project   `yaml:"project" json:"project"`
	Packages []Package `yaml:"packages,omitempty" json:"packages,omitempty"`
	Issues   []Issue   `yaml:"issues,omitempty" json:"issues,omitempty"`
}

// FailedFileResult builds the synthetic result recorded when resolving a
// single definition file fails: a placeholder project carrying one ERROR
// issue, so the failure stays local to that file.
func FailedFileResult(manager, definitionFile string, err error) FileResult {
	return FileResult{
		Project: Project{
			ID:                 Identifier{Type: manager, Name: definitionFile},
			DefinitionFilePath: definitionFile,
		},
		Issues: []Issue{
			NewIssue(manager, SeverityError, "failed to resolve %s: %v", definitionFile, err).
				WithPath(definitionFile),
		},
	}
}
