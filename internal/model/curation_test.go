package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestCurationMergeLaterProviderWins(t *testing.T) {
	// P1 sets the license, P2 has no license opinion but flags the package as
	// metadata-only. The fold must keep P1's license and add P2's flag.
	p1 := PackageCurationData{ConcludedLicense: strptr("MIT")}
	p2 := PackageCurationData{IsMetadataOnly: boolptr(true)}

	merged := PackageCurationData{}.Merge(p1).Merge(p2)
	require.NotNil(t, merged.ConcludedLicense)
	assert.Equal(t, "MIT", *merged.ConcludedLicense)
	require.NotNil(t, merged.IsMetadataOnly)
	assert.True(t, *merged.IsMetadataOnly)
}

func TestCurationMergeNonNilOverwrites(t *testing.T) {
	p1 := PackageCurationData{ConcludedLicense: strptr("MIT"), Homepage: strptr("https://a.example")}
	p2 := PackageCurationData{ConcludedLicense: strptr("Apache-2.0")}

	merged := PackageCurationData{}.Merge(p1).Merge(p2)
	assert.Equal(t, "Apache-2.0", *merged.ConcludedLicense)
	assert.Equal(t, "https://a.example", *merged.Homepage)
}

func TestCurationMergeVcsPerSubField(t *testing.T) {
	p1 := PackageCurationData{VCS: &VcsInfoCurationData{URL: strptr("https://git.example/repo.git")}}
	p2 := PackageCurationData{VCS: &VcsInfoCurationData{Path: strptr("sub/dir")}}

	merged := PackageCurationData{}.Merge(p1).Merge(p2)
	require.NotNil(t, merged.VCS)
	assert.Equal(t, "https://git.example/repo.git", *merged.VCS.URL)
	assert.Equal(t, "sub/dir", *merged.VCS.Path)
	assert.Nil(t, merged.VCS.Revision)
}

func TestCurationApplyMetadataOnly(t *testing.T) {
	id, err := ParseIdentifier("Maven:org.springframework.boot:spring-boot-starter-parent:2.7.4")
	require.NoError(t, err)

	pkg := Package{
		ID:  id,
		VCS: VcsInfo{Type: "Git", URL: "https://github.com/spring-projects/spring-boot.git"},
	}
	data := PackageCurationData{IsMetadataOnly: boolptr(true)}

	curated := data.Apply(pkg)
	assert.True(t, curated.IsMetadataOnly)
	// No VCS opinion: the resolved VCS info stays untouched.
	assert.Equal(t, pkg.VCS, curated.VCS)
}

func TestCurationApplyVcsPath(t *testing.T) {
	id, err := ParseIdentifier("Maven:org.springframework.boot:spring-boot-antlib:3.5.4")
	require.NoError(t, err)

	pkg := Package{
		ID:           id,
		VCS:          VcsInfo{Type: "Git", URL: "https://github.com/spring-projects/spring-boot.git"},
		VCSProcessed: VcsInfo{Type: "Git", URL: "https://github.com/spring-projects/spring-boot.git", Revision: "v3.5.4"},
	}
	data := PackageCurationData{
		VCS: &VcsInfoCurationData{Path: strptr("spring-boot-project/spring-boot-tools/spring-boot-antlib")},
	}

	curated := data.Apply(pkg)
	assert.Equal(t, "spring-boot-project/spring-boot-tools/spring-boot-antlib", curated.VCS.Path)
	assert.Equal(t, "spring-boot-project/spring-boot-tools/spring-boot-antlib", curated.VCSProcessed.Path)
	// Type, URL and revision were not curated.
	assert.Equal(t, pkg.VCS.Type, curated.VCS.Type)
	assert.Equal(t, pkg.VCS.URL, curated.VCS.URL)
	assert.Equal(t, pkg.VCSProcessed.Revision, curated.VCSProcessed.Revision)
}

func TestCurationApplyUnsetFieldsKeepResolvedValues(t *testing.T) {
	pkg := Package{
		ID:               Identifier{Type: "NPM", Name: "left-pad", Version: "1.3.0"},
		Description:      "original description",
		Homepage:         "https://npmjs.com/left-pad",
		DeclaredLicenses: []string{"WTFPL"},
	}
	data := PackageCurationData{Description: strptr("curated description")}

	curated := data.Apply(pkg)
	assert.Equal(t, "curated description", curated.Description)
	assert.Equal(t, pkg.Homepage, curated.Homepage)
	assert.Equal(t, pkg.DeclaredLicenses, curated.DeclaredLicenses)
}

func TestCurationApplyDeclaredLicenseMapping(t *testing.T) {
	pkg := Package{
		ID:               Identifier{Type: "Go", Name: "example.com/lib", Version: "v1.0.0"},
		DeclaredLicenses: []string{"BSD", "Apache 2", "MIT"},
	}
	data := PackageCurationData{
		DeclaredLicenseMapping: map[string]string{
			"BSD":      "BSD-3-Clause",
			"Apache 2": "Apache-2.0",
		},
	}

	curated := data.Apply(pkg)
	assert.Equal(t, []string{"BSD-3-Clause", "Apache-2.0", "MIT"}, curated.DeclaredLicenses)
}

func TestCurationApplyDeclaredLicenseMappingCollapsesDuplicates(t *testing.T) {
	pkg := Package{
		ID:               Identifier{Type: "Go", Name: "example.com/lib", Version: "v1.0.0"},
		DeclaredLicenses: []string{"The MIT License", "MIT"},
	}
	data := PackageCurationData{
		DeclaredLicenseMapping: map[string]string{"The MIT License": "MIT"},
	}

	curated := data.Apply(pkg)
	assert.Equal(t, []string{"MIT"}, curated.DeclaredLicenses)
}

func TestCurationMergeMapsUnionLaterWins(t *testing.T) {
	p1 := PackageCurationData{DeclaredLicenseMapping: map[string]string{"BSD": "BSD-2-Clause", "Apache": "Apache-2.0"}}
	p2 := PackageCurationData{DeclaredLicenseMapping: map[string]string{"BSD": "BSD-3-Clause"}}

	merged := PackageCurationData{}.Merge(p1).Merge(p2)
	assert.Equal(t, map[string]string{"BSD": "BSD-3-Clause", "Apache": "Apache-2.0"}, merged.DeclaredLicenseMapping)
}

func TestCurationMergeDoesNotMutateReceiver(t *testing.T) {
	base := PackageCurationData{VCS: &VcsInfoCurationData{URL: strptr("https://one.example")}}
	_ = base.Merge(PackageCurationData{VCS: &VcsInfoCurationData{URL: strptr("https://two.example")}})
	assert.Equal(t, "https://one.example", *base.VCS.URL)
}

func TestCurationIsEmpty(t *testing.T) {
	assert.True(t, PackageCurationData{}.IsEmpty())
	assert.False(t, PackageCurationData{Comment: strptr("why")}.IsEmpty())
	assert.True(t, VcsInfoCurationData{}.IsEmpty())
	assert.False(t, VcsInfoCurationData{Path: strptr("x")}.IsEmpty())
}
