package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscope/internal/model"
)

func ref(name string, deps ...model.PackageReference) model.PackageReference {
	return model.PackageReference{
		ID:           model.Identifier{Type: "Fake", Name: name, Version: "1.0.0"},
		Linkage:      model.LinkageDynamic,
		Dependencies: deps,
	}
}

func pkgFor(r model.PackageReference) model.Package {
	return model.Package{ID: r.ID}
}

func TestAssemble_SharedNodeAppearsOnce(t *testing.T) {
	// Both scopes (and both projects) pull in the same "common" dependency.
	common := ref("common")
	projectA := model.Project{
		ID: model.Identifier{Type: "Fake", Name: "a", Version: "1.0.0"},
		Scopes: []model.Scope{
			{Name: "main", Dependencies: []model.PackageReference{ref("liba", common)}},
			{Name: "test", Dependencies: []model.PackageReference{common}},
		},
	}
	projectB := model.Project{
		ID:     model.Identifier{Type: "Fake", Name: "b", Version: "1.0.0"},
		Scopes: []model.Scope{{Name: "main", Dependencies: []model.PackageReference{common}}},
	}

	result := Assemble([]ManagerRun{{
		Manager: "fake",
		Results: []model.FileResult{
			{Project: projectA, Packages: []model.Package{pkgFor(ref("liba")), pkgFor(common)}},
			{Project: projectB, Packages: []model.Package{pkgFor(common)}},
		},
	}})

	graph := result.Graphs["fake"]
	// liba + common, deduplicated across scopes and projects.
	assert.Len(t, graph.Nodes, 2)
	assert.Len(t, graph.Edges, 1)
	assert.Len(t, graph.Scopes, 3)

	// The package union also deduplicates.
	assert.Len(t, result.Packages, 2)
	assert.Empty(t, result.Issues)
}

func TestAssemble_ScopeKeysQualifiedByProject(t *testing.T) {
	project := model.Project{
		ID:     model.Identifier{Type: "Fake", Name: "a", Version: "1.0.0"},
		Scopes: []model.Scope{{Name: "main", Dependencies: []model.PackageReference{ref("x")}}},
	}

	result := Assemble([]ManagerRun{{
		Manager: "fake",
		Results: []model.FileResult{{Project: project, Packages: []model.Package{pkgFor(ref("x"))}}},
	}})

	graph := result.Graphs["fake"]
	key := model.ScopeKey(project.ID, "main")
	deps := graph.ScopeDependencies(key)
	require.Len(t, deps, 1)
	assert.Equal(t, "x", deps[0].Name)
}

func TestAssemble_CrossReferencesFormDetectableCycle(t *testing.T) {
	// Workspace cross-references: a depends on b, b depends back on a.
	a := model.PackageReference{ID: model.Identifier{Type: "Fake", Name: "a", Version: "1.0.0"}, Linkage: model.LinkageProject}
	b := model.PackageReference{ID: model.Identifier{Type: "Fake", Name: "b", Version: "1.0.0"}, Linkage: model.LinkageProject}
	aWithB := a
	aWithB.Dependencies = []model.PackageReference{b}
	bWithA := b
	bWithA.Dependencies = []model.PackageReference{a}

	project := model.Project{
		ID: model.Identifier{Type: "Fake", Name: "workspace", Version: "1.0.0"},
		Scopes: []model.Scope{
			{Name: "main", Dependencies: []model.PackageReference{aWithB, bWithA}},
		},
	}

	result := Assemble([]ManagerRun{{
		Manager: "fake",
		Results: []model.FileResult{{Project: project, Packages: []model.Package{pkgFor(a), pkgFor(b)}}},
	}})

	graph := result.Graphs["fake"]
	assert.Len(t, graph.Nodes, 2)
	assert.Len(t, graph.Edges, 2)

	// Traversal terminates despite the cycle, and the back edge is reported.
	deps := graph.ScopeDependencies(model.ScopeKey(project.ID, "main"))
	assert.Len(t, deps, 2)
	assert.NotEmpty(t, graph.Cycles())
}

func TestAssemble_LaterManagerWinsWithHint(t *testing.T) {
	shared := model.Identifier{Type: "Generic", Name: "shared", Version: "2.0.0"}

	first := ManagerRun{Manager: "alpha", Results: []model.FileResult{{
		Project: model.Project{ID: model.Identifier{Type: "Alpha", Name: "p1", Version: "1.0.0"}},
		Packages: []model.Package{{
			ID:          shared,
			Description: "from alpha",
			Homepage:    "https://alpha.example",
		}},
	}}}
	second := ManagerRun{Manager: "beta", Results: []model.FileResult{{
		Project: model.Project{ID: model.Identifier{Type: "Beta", Name: "p2", Version: "1.0.0"}},
		Packages: []model.Package{{
			ID:          shared,
			Description: "from beta",
		}},
	}}}

	result := Assemble([]ManagerRun{first, second})

	require.Len(t, result.Packages, 1)
	merged := result.Packages[0]
	// Non-empty later field wins; empty later field never erases.
	assert.Equal(t, "from beta", merged.Description)
	assert.Equal(t, "https://alpha.example", merged.Homepage)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, model.SeverityHint, result.Issues[0].Severity)
	assert.Equal(t, "beta", result.Issues[0].Source)
	assert.Equal(t, shared.String(), result.Issues[0].AffectedPath)
	assert.Contains(t, result.Issues[0].Message, "description")
}

func TestAssemble_EqualFieldsDoNotConflict(t *testing.T) {
	shared := model.Identifier{Type: "Generic", Name: "shared", Version: "2.0.0"}
	pkg := model.Package{ID: shared, Description: "same everywhere"}

	result := Assemble([]ManagerRun{
		{Manager: "alpha", Results: []model.FileResult{{Packages: []model.Package{pkg}}}},
		{Manager: "beta", Results: []model.FileResult{{Packages: []model.Package{pkg}}}},
	})

	assert.Len(t, result.Packages, 1)
	assert.Empty(t, result.Issues)
}

func TestAssemble_FailedFileKeepsSyntheticProject(t *testing.T) {
	failed := model.FailedFileResult("fake", "/src/broken/dep.fake", assert.AnError)

	result := Assemble([]ManagerRun{{Manager: "fake", Results: []model.FileResult{failed}}})

	require.Len(t, result.Projects, 1)
	assert.Equal(t, "/src/broken/dep.fake", result.Projects[0].DefinitionFilePath)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, model.SeverityError, result.Issues[0].Severity)

	// The synthetic project contributes no graph nodes.
	assert.Empty(t, result.Graphs["fake"].Nodes)
}

func TestMergePackage_MetadataOnlyNeverErased(t *testing.T) {
	base := model.Package{ID: model.Identifier{Type: "T", Name: "n", Version: "1"}, IsMetadataOnly: true}
	overlay := model.Package{ID: base.ID}

	merged, conflicts := mergePackage(base, overlay)
	assert.True(t, merged.IsMetadataOnly)
	assert.Empty(t, conflicts)
}

func TestMergePackage_LabelConflictReported(t *testing.T) {
	base := model.Package{Labels: map[string]string{"requirement": "^1.0"}}
	overlay := model.Package{Labels: map[string]string{"requirement": "~1.2", "extra": "x"}}

	merged, conflicts := mergePackage(base, overlay)
	assert.Equal(t, "~1.2", merged.Labels["requirement"])
	assert.Equal(t, "x", merged.Labels["extra"])
	require.Len(t, conflicts, 1)
	assert.Equal(t, "labels.requirement", conflicts[0].name)
}
