package model

import "fmt"

// DanglingRef is a cross reference that does not resolve inside its
// compilation.
type DanglingRef struct {
	Kind   string
	Owner  string
	Field  string
	Target string
}

func (d DanglingRef) String() string {
	return fmt.Sprintf("%s %q: %s -> %q", d.Kind, d.Owner, d.Field, d.Target)
}

// Validate lists every reference that points outside the compilation's
// own entities. A sealed, normalized compilation returns none.
func (c *Compilation) Validate() []DanglingRef {
	v := &validator{c: c, refs: make([]DanglingRef, 0)}

	for _, m := range c.Modules {
		owner := m.Identifier
		v.chunks("module", owner, "chunks", m.Chunks)
		v.modules("module", owner, "modules", m.Modules)
		v.reasons("module", owner, "reasons", m.Reasons)
		for _, d := range m.Deps {
			v.module("module", owner, "deps", d.Module)
		}
		for _, i := range m.IssuerPath {
			if i.ResolvedModule != "" {
				v.module("module", owner, "issuerPath", i.ResolvedModule)
			}
		}
	}

	for _, ch := range c.Chunks {
		owner := ch.ID
		v.modules("chunk", owner, "modules", ch.Modules)
		v.assets("chunk", owner, "files", ch.Files)
		v.chunks("chunk", owner, "siblings", ch.Siblings)
		v.chunks("chunk", owner, "parents", ch.Parents)
		v.chunks("chunk", owner, "children", ch.Children)
		v.chunks("chunk", owner, "declaredParents", ch.DeclaredParents)
		v.chunks("chunk", owner, "declaredChildren", ch.DeclaredChildren)
		v.reasons("chunk", owner, "origins", ch.Origins)
	}

	for _, a := range c.Assets {
		v.chunks("asset", a.Name, "chunks", a.Chunks)
	}

	for _, e := range c.Entrypoints {
		v.chunks("entrypoint", e.Name, "chunks", e.Chunks)
		v.assets("entrypoint", e.Name, "assets", e.Assets)
		if e.Dep != nil {
			v.module("entrypoint", e.Name, "dep", e.Dep.Module)
		}
	}

	for _, p := range c.Packages {
		for _, inst := range p.Instances {
			v.modules("package", p.Name, "instance.modules", inst.Modules)
			v.modules("package", p.Name, "instance.reasons", inst.Reasons)
		}
	}

	if c.Graph != nil {
		for _, n := range c.Graph.Nodes() {
			v.module("graph", n.ID, "node", n.ID)
			v.modules("graph", n.ID, "children", n.Children)
		}
	}

	return v.refs
}

type validator struct {
	c    *Compilation
	refs []DanglingRef
}

func (v *validator) add(kind, owner, field, target string) {
	v.refs = append(v.refs, DanglingRef{Kind: kind, Owner: owner, Field: field, Target: target})
}

func (v *validator) module(kind, owner, field, id string) {
	if v.c.ResolveModule(id) == nil {
		v.add(kind, owner, field, id)
	}
}

func (v *validator) modules(kind, owner, field string, ids []string) {
	for _, id := range ids {
		v.module(kind, owner, field, id)
	}
}

func (v *validator) chunks(kind, owner, field string, ids []string) {
	for _, id := range ids {
		if v.c.ResolveChunk(id) == nil {
			v.add(kind, owner, field, id)
		}
	}
}

func (v *validator) assets(kind, owner, field string, names []string) {
	for _, name := range names {
		if v.c.ResolveAsset(name) == nil {
			v.add(kind, owner, field, name)
		}
	}
}

func (v *validator) reasons(kind, owner, field string, reasons []Reason) {
	for _, r := range reasons {
		if r.ResolvedModule != "" {
			v.module(kind, owner, field, r.ResolvedModule)
		}
		if r.ResolvedEntry != "" && v.c.ResolveEntrypoint(r.ResolvedEntry) == nil {
			v.add(kind, owner, field, r.ResolvedEntry)
		}
	}
}
