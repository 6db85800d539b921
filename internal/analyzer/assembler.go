package analyzer

import (
	"fmt"
	"strings"

	"depscope/internal/model"
)

// ManagerRun is one package manager's completed output: the per-file results
// in deterministic (sorted) file order.
type ManagerRun struct {
	Manager string
	Results []model.FileResult
}

// Assemble unifies completed manager runs into a single result: one
// dependency graph per manager, the project list, packages unioned by
// identifier and every issue collected on the way. A package resolved by
// several managers keeps the later manager's non-empty fields; each
// field-level conflict is recorded as a HINT issue on the identifier.
func Assemble(runs []ManagerRun) *model.AnalyzerResult {
	result := &model.AnalyzerResult{Graphs: make(map[string]model.DependencyGraph)}
	index := make(map[model.Identifier]int)

	for _, run := range runs {
		builder := newGraphBuilder()

		for _, fileResult := range run.Results {
			result.Projects = append(result.Projects, fileResult.Project)
			result.Issues = append(result.Issues, fileResult.Issues...)

			for _, scope := range fileResult.Project.Scopes {
				builder.addScope(fileResult.Project.ID, scope)
			}

			for _, pkg := range fileResult.Packages {
				existing, ok := index[pkg.ID]
				if !ok {
					index[pkg.ID] = len(result.Packages)
					result.Packages = append(result.Packages, pkg)
					continue
				}
				merged, conflicts := mergePackage(result.Packages[existing], pkg)
				result.Packages[existing] = merged
				for _, c := range conflicts {
					result.Issues = append(result.Issues, model.NewIssue(run.Manager, model.SeverityHint,
						"conflicting %s for %s: %q replaced %q", c.name, pkg.ID, c.to, c.from).
						WithPath(pkg.ID.String()))
				}
			}
		}

		result.Graphs[run.Manager] = builder.graph
	}

	return result
}

// graphBuilder flattens scope-root reference trees into the shared node-arena
// form. A reference seen from several scopes or projects maps to one node;
// every distinct parent→child occurrence adds exactly one edge.
type graphBuilder struct {
	graph     model.DependencyGraph
	nodeIndex map[model.DependencyNode]int
	edgeSeen  map[model.DependencyEdge]bool
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{
		graph:     model.DependencyGraph{Scopes: make(map[string][]int)},
		nodeIndex: make(map[model.DependencyNode]int),
		edgeSeen:  make(map[model.DependencyEdge]bool),
	}
}

func (b *graphBuilder) addScope(project model.Identifier, scope model.Scope) {
	key := model.ScopeKey(project, scope.Name)
	roots := make([]int, 0, len(scope.Dependencies))
	for _, root := range scope.Dependencies {
		roots = append(roots, b.addTree(root))
	}
	b.graph.Scopes[key] = roots
}

func (b *graphBuilder) addTree(ref model.PackageReference) int {
	idx := b.node(ref)
	for _, child := range ref.Dependencies {
		childIdx := b.addTree(child)
		edge := model.DependencyEdge{From: idx, To: childIdx}
		if !b.edgeSeen[edge] {
			b.edgeSeen[edge] = true
			b.graph.Edges = append(b.graph.Edges, edge)
		}
	}
	return idx
}

func (b *graphBuilder) node(ref model.PackageReference) int {
	key := model.DependencyNode{ID: ref.ID, Linkage: ref.Linkage}
	if idx, ok := b.nodeIndex[key]; ok {
		return idx
	}
	idx := len(b.graph.Nodes)
	b.graph.Nodes = append(b.graph.Nodes, key)
	b.nodeIndex[key] = idx
	return idx
}

type fieldConflict struct {
	name string
	from string
	to   string
}

// mergePackage overlays the later-resolved package onto the earlier one.
// Empty overlay fields never erase anything; a non-empty overlay field that
// differs from a non-empty base value wins and is reported as a conflict.
func mergePackage(base, overlay model.Package) (model.Package, []fieldConflict) {
	out := base
	var conflicts []fieldConflict

	override := func(name string, dst *string, src string) {
		if src == "" {
			return
		}
		if *dst != "" && *dst != src {
			conflicts = append(conflicts, fieldConflict{name, *dst, src})
		}
		*dst = src
	}

	override("purl", &out.PURL, overlay.PURL)
	override("concluded_license", &out.ConcludedLicense, overlay.ConcludedLicense)
	override("description", &out.Description, overlay.Description)
	override("homepage", &out.Homepage, overlay.Homepage)

	if len(overlay.Authors) > 0 {
		if len(out.Authors) > 0 && !stringSlicesEqual(out.Authors, overlay.Authors) {
			conflicts = append(conflicts, fieldConflict{"authors",
				strings.Join(out.Authors, ", "), strings.Join(overlay.Authors, ", ")})
		}
		out.Authors = overlay.Authors
	}
	if len(overlay.DeclaredLicenses) > 0 {
		if len(out.DeclaredLicenses) > 0 && !stringSlicesEqual(out.DeclaredLicenses, overlay.DeclaredLicenses) {
			conflicts = append(conflicts, fieldConflict{"declared_licenses",
				strings.Join(out.DeclaredLicenses, ", "), strings.Join(overlay.DeclaredLicenses, ", ")})
		}
		out.DeclaredLicenses = overlay.DeclaredLicenses
	}

	if overlay.BinaryArtifact != (model.RemoteArtifact{}) {
		if out.BinaryArtifact != (model.RemoteArtifact{}) && out.BinaryArtifact != overlay.BinaryArtifact {
			conflicts = append(conflicts, fieldConflict{"binary_artifact",
				out.BinaryArtifact.URL, overlay.BinaryArtifact.URL})
		}
		out.BinaryArtifact = overlay.BinaryArtifact
	}
	if overlay.SourceArtifact != (model.RemoteArtifact{}) {
		if out.SourceArtifact != (model.RemoteArtifact{}) && out.SourceArtifact != overlay.SourceArtifact {
			conflicts = append(conflicts, fieldConflict{"source_artifact",
				out.SourceArtifact.URL, overlay.SourceArtifact.URL})
		}
		out.SourceArtifact = overlay.SourceArtifact
	}

	if overlay.VCS != (model.VcsInfo{}) {
		if out.VCS != (model.VcsInfo{}) && out.VCS != overlay.VCS {
			conflicts = append(conflicts, fieldConflict{"vcs",
				fmt.Sprintf("%+v", out.VCS), fmt.Sprintf("%+v", overlay.VCS)})
		}
		out.VCS = overlay.VCS
	}
	if overlay.VCSProcessed != (model.VcsInfo{}) {
		if out.VCSProcessed != (model.VcsInfo{}) && out.VCSProcessed != overlay.VCSProcessed {
			conflicts = append(conflicts, fieldConflict{"vcs_processed",
				fmt.Sprintf("%+v", out.VCSProcessed), fmt.Sprintf("%+v", overlay.VCSProcessed)})
		}
		out.VCSProcessed = overlay.VCSProcessed
	}

	if overlay.IsMetadataOnly {
		out.IsMetadataOnly = true
	}

	if len(overlay.Labels) > 0 {
		merged := make(map[string]string, len(out.Labels)+len(overlay.Labels))
		for k, v := range out.Labels {
			merged[k] = v
		}
		for k, v := range overlay.Labels {
			if prev, ok := merged[k]; ok && prev != v {
				conflicts = append(conflicts, fieldConflict{"labels." + k, prev, v})
			}
			merged[k] = v
		}
		out.Labels = merged
	}

	return out, conflicts
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
