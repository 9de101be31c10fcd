package resolver

import (
	"fmt"

	"tokensmith/internal/tokens"
)

// DependencyGraph is a directed graph of token dependencies keyed by
// dotted token path
type DependencyGraph struct {
	// adjacency list: token path -> list of paths it depends on
	dependencies map[string][]string
	// all token paths in the graph
	nodes map[string]bool
}

// BuildDependencyGraphFromIndex builds a dependency graph over every
// token in the index. Each dependency is canonicalized to the bare path
// of the token it actually hits (set-qualified references and
// alternative-format rewrites included), so cycle detection sees one
// node per token regardless of how it is spelled in references.
func BuildDependencyGraphFromIndex(ix *Index) *DependencyGraph {
	graph := &DependencyGraph{
		dependencies: make(map[string][]string),
		nodes:        make(map[string]bool),
	}

	for path := range ix.byPath {
		graph.nodes[path] = true
	}

	for path, tok := range ix.byPath {
		var deps []string
		for _, ref := range ReferencesIn(tok.Value) {
			if hit, matched, ok := ix.lookupWithRewrites(ref); ok {
				deps = append(deps, ix.barePathOf(hit, matched))
			} else {
				deps = append(deps, ref)
			}
		}
		if len(deps) > 0 {
			graph.dependencies[path] = deps
		}
	}

	return graph
}

// barePathOf maps a lookup hit back to the bare path node used in the
// dependency graph
func (ix *Index) barePathOf(tok *tokens.Token, matched string) string {
	if _, ok := ix.byPath[matched]; ok {
		return matched
	}
	return tok.Name()
}

// FindCycle returns the cycle path if one exists, or nil if no cycle
func (g *DependencyGraph) FindCycle() []string {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := []string{}

	for node := range g.nodes {
		if cycle := g.findCycleDFS(node, visited, recStack, path); cycle != nil {
			return cycle
		}
	}

	return nil
}

func (g *DependencyGraph) findCycleDFS(node string, visited, recStack map[string]bool, path []string) []string {
	if recStack[node] {
		// found a cycle - return the path from this node
		cycleStart := -1
		for i, n := range path {
			if n == node {
				cycleStart = i
				break
			}
		}
		if cycleStart == -1 {
			panic(fmt.Sprintf("cycle detection invariant violated: node %q in recStack but not in path %v", node, path))
		}
		return append(path[cycleStart:], node)
	}
	if visited[node] {
		return nil
	}

	visited[node] = true
	recStack[node] = true
	path = append(path, node)

	for _, dep := range g.dependencies[node] {
		if cycle := g.findCycleDFS(dep, visited, recStack, path); cycle != nil {
			return cycle
		}
	}

	recStack[node] = false
	return nil
}
