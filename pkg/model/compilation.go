package model

// Compilation is one normalized build result. Lookup tables are built by
// Seal; until then the Resolve methods find nothing.
type Compilation struct {
	Hash     string   `json:"hash" yaml:"hash"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Time     int64    `json:"time,omitempty" yaml:"time,omitempty"`
	BuiltAt  int64    `json:"builtAt,omitempty" yaml:"builtAt,omitempty"`
	IsChild  bool     `json:"isChild" yaml:"isChild"`
	Parent   string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Children []string `json:"children" yaml:"children"`

	Modules     []*Module     `json:"modules" yaml:"modules"`
	Chunks      []*Chunk      `json:"chunks" yaml:"chunks"`
	Assets      []*Asset      `json:"assets" yaml:"assets"`
	Entrypoints []*Entrypoint `json:"entrypoints" yaml:"entrypoints"`
	Packages    []*Package    `json:"nodeModules" yaml:"nodeModules"`

	Graph *ModuleGraph `json:"graph,omitempty" yaml:"-"`

	moduleKey   func(string) string
	modules     map[string]*Module
	chunks      map[string]*Chunk
	assets      map[string]*Asset
	entrypoints map[string]*Entrypoint
	packages    map[string]*Package
}

// Seal builds the lookup tables behind the Resolve methods. moduleKey
// normalizes module identifiers and may be nil.
func (c *Compilation) Seal(moduleKey func(string) string) {
	if moduleKey == nil {
		moduleKey = func(id string) string { return id }
	}
	c.moduleKey = moduleKey

	c.modules = make(map[string]*Module, len(c.Modules))
	for _, m := range c.Modules {
		c.modules[moduleKey(m.Identifier)] = m
	}
	c.chunks = make(map[string]*Chunk, len(c.Chunks))
	for _, ch := range c.Chunks {
		c.chunks[ch.ID] = ch
	}
	c.assets = make(map[string]*Asset, len(c.Assets))
	for _, a := range c.Assets {
		c.assets[a.Name] = a
	}
	c.entrypoints = make(map[string]*Entrypoint, len(c.Entrypoints))
	for _, e := range c.Entrypoints {
		c.entrypoints[e.Name] = e
	}
	c.packages = make(map[string]*Package, len(c.Packages))
	for _, p := range c.Packages {
		c.packages[p.Name] = p
	}
}

// ResolveModule returns the module whose identifier normalizes like id.
func (c *Compilation) ResolveModule(id string) *Module {
	if c.modules == nil {
		return nil
	}
	return c.modules[c.moduleKey(id)]
}

// ResolveChunk returns the chunk with the given id.
func (c *Compilation) ResolveChunk(id string) *Chunk {
	return c.chunks[id]
}

// ResolveAsset returns the asset with the given name.
func (c *Compilation) ResolveAsset(name string) *Asset {
	return c.assets[name]
}

// ResolveEntrypoint returns the entrypoint with the given name.
func (c *Compilation) ResolveEntrypoint(name string) *Entrypoint {
	return c.entrypoints[name]
}

// ResolvePackage returns the package with the given name.
func (c *Compilation) ResolvePackage(name string) *Package {
	return c.packages[name]
}
