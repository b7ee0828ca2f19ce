package model

import (
	"encoding/json"
	"sort"
)

// GraphNode is a module in the dependency graph. Entries lists the
// entrypoints that reference the module directly.
type GraphNode struct {
	ID       string   `json:"id"`
	Entries  []string `json:"entries,omitempty"`
	Children []string `json:"children"`
}

// AddChild appends an edge to the module with the given identifier.
func (n *GraphNode) AddChild(id string) {
	n.Children = append(n.Children, id)
}

// ModuleGraph is the entry-reachable module graph of a compilation. It is
// keyed by module identifier and may contain cycles.
type ModuleGraph struct {
	nodes map[string]*GraphNode
	order []string
	roots []string
}

// GraphStats summarizes a ModuleGraph.
type GraphStats struct {
	Nodes    int `json:"nodes" yaml:"nodes"`
	Edges    int `json:"edges" yaml:"edges"`
	Roots    int `json:"roots" yaml:"roots"`
	Cycles   int `json:"cycles" yaml:"cycles"`
	MaxDepth int `json:"maxDepth" yaml:"maxDepth"`
}

// NewModuleGraph creates an empty graph.
func NewModuleGraph() *ModuleGraph {
	return &ModuleGraph{
		nodes: make(map[string]*GraphNode),
		order: make([]string, 0),
		roots: make([]string, 0),
	}
}

// Node returns the node for id, or nil.
func (g *ModuleGraph) Node(id string) *GraphNode {
	return g.nodes[id]
}

// MakeNode returns the node for id, creating it when missing.
func (g *ModuleGraph) MakeNode(id string, entries []string) *GraphNode {
	if n, ok := g.nodes[id]; ok {
		return n
	}

	n := &GraphNode{ID: id, Entries: entries, Children: make([]string, 0)}
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n
}

// AddRoot marks id as a traversal seed. Duplicate roots are ignored.
func (g *ModuleGraph) AddRoot(id string) {
	for _, r := range g.roots {
		if r == id {
			return
		}
	}
	g.roots = append(g.roots, id)
}

// Roots returns the seed module identifiers in insertion order.
func (g *ModuleGraph) Roots() []string {
	return g.roots
}

// Nodes returns every node in creation order.
func (g *ModuleGraph) Nodes() []*GraphNode {
	nodes := make([]*GraphNode, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Len returns the number of nodes.
func (g *ModuleGraph) Len() int {
	return len(g.order)
}

// Reachable returns every node reachable from id, including id itself, in
// breadth-first order.
func (g *ModuleGraph) Reachable(id string) []string {
	if g.nodes[id] == nil {
		return nil
	}

	seen := map[string]bool{id: true}
	queue := []string{id}
	result := make([]string, 0)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		node := g.nodes[current]
		if node == nil {
			continue
		}
		for _, child := range node.Children {
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}

	return result
}

// Cycles finds circular dependencies using DFS. Every back edge yields one
// cycle, listed from the first repeated node.
func (g *ModuleGraph) Cycles() [][]string {
	cycles := make([][]string, 0)
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	var dfs func(id string, path []string)
	dfs = func(id string, path []string) {
		visited[id] = true
		recStack[id] = true
		path = append(path, id)

		if node := g.nodes[id]; node != nil {
			for _, child := range node.Children {
				if !visited[child] {
					dfs(child, path)
				} else if recStack[child] {
					for i, p := range path {
						if p == child {
							cycle := make([]string, len(path)-i)
							copy(cycle, path[i:])
							cycles = append(cycles, cycle)
							break
						}
					}
				}
			}
		}

		recStack[id] = false
	}

	for _, id := range g.order {
		if !visited[id] {
			dfs(id, []string{})
		}
	}

	return cycles
}

// Depths returns the shortest distance of every reachable node from the
// nearest root.
func (g *ModuleGraph) Depths() map[string]int {
	depths := make(map[string]int)
	queue := make([]string, 0, len(g.roots))
	for _, r := range g.roots {
		if _, ok := depths[r]; !ok {
			depths[r] = 0
			queue = append(queue, r)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		node := g.nodes[current]
		if node == nil {
			continue
		}
		for _, child := range node.Children {
			if _, ok := depths[child]; !ok {
				depths[child] = depths[current] + 1
				queue = append(queue, child)
			}
		}
	}

	return depths
}

// Stats computes summary metrics for the graph.
func (g *ModuleGraph) Stats() GraphStats {
	stats := GraphStats{
		Nodes:  len(g.order),
		Roots:  len(g.roots),
		Cycles: len(g.Cycles()),
	}
	for _, n := range g.nodes {
		stats.Edges += len(n.Children)
	}
	for _, d := range g.Depths() {
		if d > stats.MaxDepth {
			stats.MaxDepth = d
		}
	}
	return stats
}

type graphJSON struct {
	Roots []string     `json:"roots"`
	Nodes []*GraphNode `json:"nodes"`
}

// MarshalJSON encodes the graph as its roots and nodes in creation order.
func (g *ModuleGraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(graphJSON{Roots: g.roots, Nodes: g.Nodes()})
}

// SortedIDs returns node identifiers in lexical order.
func (g *ModuleGraph) SortedIDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	sort.Strings(ids)
	return ids
}
