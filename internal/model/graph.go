package model

import "sort"

// DependencyNode is one entry of a graph's node arena.
type DependencyNode struct {
	ID      Identifier `yaml:"id" json:"id"`
	Linkage Linkage    `yaml:"linkage,omitempty" json:"linkage,omitempty"`
}

// DependencyEdge connects two nodes by arena index.
type DependencyEdge struct {
	From int `yaml:"from" json:"from"`
	To   int `yaml:"to" json:"to"`
}

// DependencyGraph stores one package manager's dependency relations as a flat
// node arena plus index-pair edges. Nodes reachable from several scopes or
// projects appear once; each scope records the indexes of its roots. The
// graph may contain cycles (workspace cross-references), so every traversal
// keeps a visited set instead of recursing blindly.
type DependencyGraph struct {
	Nodes  []DependencyNode `yaml:"nodes" json:"nodes"`
	Edges  []DependencyEdge `yaml:"edges,omitempty" json:"edges,omitempty"`
	Scopes map[string][]int `yaml:"scopes,omitempty" json:"scopes,omitempty"`
}

// ScopeKey names a scope within a graph, qualified by its owning project so
// same-named scopes of different projects stay distinct.
func ScopeKey(project Identifier, scope string) string {
	return project.String() + ":" + scope
}

// ScopeNames returns the graph's scope keys in sorted order.
func (g *DependencyGraph) ScopeNames() []string {
	names := make([]string, 0, len(g.Scopes))
	for name := range g.Scopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// adjacency builds the outgoing-edge index lists per node.
func (g *DependencyGraph) adjacency() [][]int {
	adj := make([][]int, len(g.Nodes))
	for _, e := range g.Edges {
		if e.From >= 0 && e.From < len(g.Nodes) && e.To >= 0 && e.To < len(g.Nodes) {
			adj[e.From] = append(adj[e.From], e.To)
		}
	}
	return adj
}

// ScopeDependencies returns every identifier reachable from the given scope's
// roots, in deterministic depth-first preorder. Cycles terminate at the first
// revisit.
func (g *DependencyGraph) ScopeDependencies(scopeKey string) []Identifier {
	roots, ok := g.Scopes[scopeKey]
	if !ok {
		return nil
	}
	adj := g.adjacency()
	visited := make(map[int]bool, len(g.Nodes))
	var out []Identifier
	var walk func(idx int)
	walk = func(idx int) {
		if idx < 0 || idx >= len(g.Nodes) || visited[idx] {
			return
		}
		visited[idx] = true
		out = append(out, g.Nodes[idx].ID)
		for _, next := range adj[idx] {
			walk(next)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return out
}

// ReferencedIdentifiers returns the deduplicated, sorted set of identifiers
// appearing anywhere in the graph.
func (g *DependencyGraph) ReferencedIdentifiers() []Identifier {
	seen := make(map[Identifier]bool, len(g.Nodes))
	var out []Identifier
	for _, n := range g.Nodes {
		if !seen[n.ID] {
			seen[n.ID] = true
			out = append(out, n.ID)
		}
	}
	SortIdentifiers(out)
	return out
}

// Cycles returns the back edges discovered by a depth-first sweep over all
// scope roots: edges whose target is an ancestor on the current path.
// Consumers use them to break cycles instead of recursing forever.
func (g *DependencyGraph) Cycles() []DependencyEdge {
	adj := g.adjacency()
	visited := make(map[int]bool, len(g.Nodes))
	onPath := make(map[int]bool, len(g.Nodes))
	var back []DependencyEdge

	var walk func(idx int)
	walk = func(idx int) {
		visited[idx] = true
		onPath[idx] = true
		for _, next := range adj[idx] {
			if onPath[next] {
				back = append(back, DependencyEdge{From: idx, To: next})
				continue
			}
			if !visited[next] {
				walk(next)
			}
		}
		onPath[idx] = false
	}

	for _, key := range g.ScopeNames() {
		for _, root := range g.Scopes[key] {
			if root >= 0 && root < len(g.Nodes) && !visited[root] {
				walk(root)
			}
		}
	}
	// Nodes unreachable from any scope still count.
	for idx := range g.Nodes {
		if !visited[idx] {
			walk(idx)
		}
	}
	return back
}
