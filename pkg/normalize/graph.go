package normalize

import (
	"github.com/simonhull/firebird-suite/magpie/pkg/model"
)

// buildGraph builds the module graph reachable from the compilation's
// entrypoints. A module is expanded once (handled); within one expansion a
// local set keeps a child from being linked twice.
func buildGraph(c *model.Compilation) *model.ModuleGraph {
	g := model.NewModuleGraph()
	handled := make(map[string]bool)

	var visit func(m *model.Module) *model.GraphNode
	visit = func(m *model.Module) *model.GraphNode {
		if handled[m.Identifier] {
			return g.Node(m.Identifier)
		}
		handled[m.Identifier] = true

		node := g.MakeNode(m.Identifier, moduleEntries(m))
		local := make(map[string]bool, len(m.Modules)+len(m.Deps))

		for _, id := range m.Modules {
			inner := c.ResolveModule(id)
			if inner == nil || local[inner.Identifier] {
				continue
			}
			local[inner.Identifier] = true
			node.AddChild(visit(inner).ID)
		}

		for _, dep := range m.Deps {
			target := c.ResolveModule(dep.Module)
			if target == nil || local[target.Identifier] {
				continue
			}
			local[target.Identifier] = true
			node.AddChild(visit(target).ID)
		}

		return node
	}

	for _, entry := range c.Entrypoints {
		if entry.Dep == nil {
			continue
		}
		if m := c.ResolveModule(entry.Dep.Module); m != nil {
			g.AddRoot(m.Identifier)
			visit(m)
		}
	}

	return g
}

// moduleEntries lists the entrypoints that reference a module directly.
func moduleEntries(m *model.Module) []string {
	var entries []string
	for _, r := range m.Reasons {
		if r.ResolvedEntry == "" {
			continue
		}
		dup := false
		for _, e := range entries {
			if e == r.ResolvedEntry {
				dup = true
				break
			}
		}
		if !dup {
			entries = append(entries, r.ResolvedEntry)
		}
	}
	return entries
}
