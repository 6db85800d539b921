package model

// VcsInfo describes the version control location of a package or project.
type VcsInfo struct {
	Type     string `yaml:"type,omitempty" json:"type,omitempty"`
	URL      string `yaml:"url,omitempty" json:"url,omitempty"`
	Revision string `yaml:"revision,omitempty" json:"revision,omitempty"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty"`
}

// IsEmpty reports whether no VCS field is set.
func (v VcsInfo) IsEmpty() bool {
	return v == VcsInfo{}
}

// RemoteArtifact points at a downloadable artifact with an optional checksum.
type RemoteArtifact struct {
	URL  string `yaml:"url,omitempty" json:"url,omitempty"`
	Hash string `yaml:"hash,omitempty" json:"hash,omitempty"`
}

// IsEmpty reports whether no artifact field is set.
func (a RemoteArtifact) IsEmpty() bool {
	return a == RemoteArtifact{}
}

// Package holds the metadata a package manager resolved for one dependency.
// It is owned by the graph assembler; curation providers reference packages
// read-only through their Identifier.
type Package struct {
	ID               Identifier        `yaml:"id" json:"id"`
	PURL             string            `yaml:"purl,omitempty" json:"purl,omitempty"`
	Authors          []string          `yaml:"authors,omitempty" json:"authors,omitempty"`
	DeclaredLicenses []string          `yaml:"declared_licenses,omitempty" json:"declared_licenses,omitempty"`
	ConcludedLicense string            `yaml:"concluded_license,omitempty" json:"concluded_license,omitempty"`
	Description      string            `yaml:"description,omitempty" json:"description,omitempty"`
	Homepage         string            `yaml:"homepage,omitempty" json:"homepage,omitempty"`
	BinaryArtifact   RemoteArtifact    `yaml:"binary_artifact,omitempty" json:"binary_artifact,omitempty"`
	SourceArtifact   RemoteArtifact    `yaml:"source_artifact,omitempty" json:"source_artifact,omitempty"`
	VCS              VcsInfo           `yaml:"vcs,omitempty" json:"vcs,omitempty"`
	VCSProcessed     VcsInfo           `yaml:"vcs_processed,omitempty" json:"vcs_processed,omitempty"`
	IsMetadataOnly   bool              `yaml:"is_metadata_only,omitempty" json:"is_metadata_only,omitempty"`
	Labels           map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
}
