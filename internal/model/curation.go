package model

// VcsInfoCurationData overrides individual VCS fields. A nil field means
// "no opinion" and never erases an earlier value during merging.
type VcsInfoCurationData struct {
	Type     *string `yaml:"type,omitempty" json:"type,omitempty"`
	URL      *string `yaml:"url,omitempty" json:"url,omitempty"`
	Revision *string `yaml:"revision,omitempty" json:"revision,omitempty"`
	Path     *string `yaml:"path,omitempty" json:"path,omitempty"`
}

// Merge returns v with other's non-nil fields applied on top.
func (v VcsInfoCurationData) Merge(other VcsInfoCurationData) VcsInfoCurationData {
	out := v
	if other.Type != nil {
		out.Type = other.Type
	}
	if other.URL != nil {
		out.URL = other.URL
	}
	if other.Revision != nil {
		out.Revision = other.Revision
	}
	if other.Path != nil {
		out.Path = other.Path
	}
	return out
}

// Apply patches the non-nil fields into info, leaving the others untouched.
func (v VcsInfoCurationData) Apply(info VcsInfo) VcsInfo {
	out := info
	if v.Type != nil {
		out.Type = *v.Type
	}
	if v.URL != nil {
		out.URL = *v.URL
	}
	if v.Revision != nil {
		out.Revision = *v.Revision
	}
	if v.Path != nil {
		out.Path = *v.Path
	}
	return out
}

// IsEmpty reports whether the curation carries no opinion at all.
func (v VcsInfoCurationData) IsEmpty() bool {
	return v.Type == nil && v.URL == nil && v.Revision == nil && v.Path == nil
}

// PackageCurationData is a set of field-level overrides for one package.
// Every field is independently optional: nil (or a nil map/slice) means
// "no opinion", anything else replaces the resolved value when applied.
type PackageCurationData struct {
	Comment                *string              `yaml:"comment,omitempty" json:"comment,omitempty"`
	PURL                   *string              `yaml:"purl,omitempty" json:"purl,omitempty"`
	Authors                []string             `yaml:"authors,omitempty" json:"authors,omitempty"`
	ConcludedLicense       *string              `yaml:"concluded_license,omitempty" json:"concluded_license,omitempty"`
	Description            *string              `yaml:"description,omitempty" json:"description,omitempty"`
	Homepage               *string              `yaml:"homepage,omitempty" json:"homepage,omitempty"`
	BinaryArtifact         *RemoteArtifact      `yaml:"binary_artifact,omitempty" json:"binary_artifact,omitempty"`
	SourceArtifact         *RemoteArtifact      `yaml:"source_artifact,omitempty" json:"source_artifact,omitempty"`
	VCS                    *VcsInfoCurationData `yaml:"vcs,omitempty" json:"vcs,omitempty"`
	IsMetadataOnly         *bool                `yaml:"is_metadata_only,omitempty" json:"is_metadata_only,omitempty"`
	DeclaredLicenseMapping map[string]string    `yaml:"declared_license_mapping,omitempty" json:"declared_license_mapping,omitempty"`
	Labels                 map[string]string    `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// Merge returns d with other's non-nil fields applied on top. Map-valued
// fields merge per key with other's entries winning. The VCS curation merges
// per sub-field so that independent providers can each correct one aspect.
func (d PackageCurationData) Merge(other PackageCurationData) PackageCurationData {
	out := d
	if other.Comment != nil {
		out.Comment = other.Comment
	}
	if other.PURL != nil {
		out.PURL = other.PURL
	}
	if other.Authors != nil {
		out.Authors = other.Authors
	}
	if other.ConcludedLicense != nil {
		out.ConcludedLicense = other.ConcludedLicense
	}
	if other.Description != nil {
		out.Description = other.Description
	}
	if other.Homepage != nil {
		out.Homepage = other.Homepage
	}
	if other.BinaryArtifact != nil {
		out.BinaryArtifact = other.BinaryArtifact
	}
	if other.SourceArtifact != nil {
		out.SourceArtifact = other.SourceArtifact
	}
	if other.VCS != nil {
		if out.VCS == nil {
			merged := *other.VCS
			out.VCS = &merged
		} else {
			merged := out.VCS.Merge(*other.VCS)
			out.VCS = &merged
		}
	}
	if other.IsMetadataOnly != nil {
		out.IsMetadataOnly = other.IsMetadataOnly
	}
	if other.DeclaredLicenseMapping != nil {
		out.DeclaredLicenseMapping = mergeStringMaps(out.DeclaredLicenseMapping, other.DeclaredLicenseMapping)
	}
	if other.Labels != nil {
		out.Labels = mergeStringMaps(out.Labels, other.Labels)
	}
	return out
}

// Apply returns pkg with d's overrides in place. Unset fields keep the
// manager-resolved value. VCS sub-fields patch both the declared and the
// processed VCS info. The declared license mapping rewrites matching entries
// of DeclaredLicenses in place, collapsing duplicates that result.
func (d PackageCurationData) Apply(pkg Package) Package {
	out := pkg
	if d.PURL != nil {
		out.PURL = *d.PURL
	}
	if d.Authors != nil {
		out.Authors = append([]string(nil), d.Authors...)
	}
	if d.ConcludedLicense != nil {
		out.ConcludedLicense = *d.ConcludedLicense
	}
	if d.Description != nil {
		out.Description = *d.Description
	}
	if d.Homepage != nil {
		out.Homepage = *d.Homepage
	}
	if d.BinaryArtifact != nil {
		out.BinaryArtifact = *d.BinaryArtifact
	}
	if d.SourceArtifact != nil {
		out.SourceArtifact = *d.SourceArtifact
	}
	if d.VCS != nil {
		out.VCS = d.VCS.Apply(pkg.VCS)
		out.VCSProcessed = d.VCS.Apply(pkg.VCSProcessed)
	}
	if d.IsMetadataOnly != nil {
		out.IsMetadataOnly = *d.IsMetadataOnly
	}
	if len(d.DeclaredLicenseMapping) > 0 {
		out.DeclaredLicenses = applyLicenseMapping(pkg.DeclaredLicenses, d.DeclaredLicenseMapping)
	}
	if d.Labels != nil {
		out.Labels = mergeStringMaps(pkg.Labels, d.Labels)
	}
	return out
}

// IsEmpty reports whether the curation carries no opinion at all.
func (d PackageCurationData) IsEmpty() bool {
	return d.Comment == nil && d.PURL == nil && d.Authors == nil &&
		d.ConcludedLicense == nil && d.Description == nil && d.Homepage == nil &&
		d.BinaryArtifact == nil && d.SourceArtifact == nil && d.VCS == nil &&
		d.IsMetadataOnly == nil && d.DeclaredLicenseMapping == nil && d.Labels == nil
}

// PackageCuration is one provider's correction for one package, applied once
// per run.
type PackageCuration struct {
	ID   Identifier          `yaml:"id" json:"id"`
	Data PackageCurationData `yaml:"curations" json:"curations"`
}

func mergeStringMaps(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

func applyLicenseMapping(declared []string, mapping map[string]string) []string {
	var out []string
	seen := make(map[string]bool, len(declared))
	for _, license := range declared {
		if mapped, ok := mapping[license]; ok {
			license = mapped
		}
		if seen[license] {
			continue
		}
		seen[license] = true
		out = append(out, license)
	}
	return out
}
