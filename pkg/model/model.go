// Package model holds the normalized, cross-linked representation of a
// build report.
//
// Entities live in per-compilation arenas. Cross references are stored as
// ids (module identifiers, chunk ids, asset and entrypoint names, package
// names) and resolved through the owning Compilation, never as pointers
// between entities, so reference cycles in the source cannot leak into
// object lifetimes.
package model

// File is one normalized input document. Compilations are ordered depth
// first, root first, parents before children.
type File struct {
	Path         string         `json:"path" yaml:"path"`
	Compilations []*Compilation `json:"compilations" yaml:"compilations"`
}

// Root returns the root compilation, or nil for an empty file.
func (f *File) Root() *Compilation {
	if len(f.Compilations) == 0 {
		return nil
	}
	return f.Compilations[0]
}

// ResolveCompilation returns the compilation with the given hash.
func (f *File) ResolveCompilation(hash string) *Compilation {
	for _, c := range f.Compilations {
		if c.Hash == hash {
			return c
		}
	}
	return nil
}

// ReasonTarget tells what an incoming edge resolved to.
type ReasonTarget int

const (
	TargetNone ReasonTarget = iota
	TargetModule
	TargetEntrypoint
)

// Reason is a resolved incoming edge.
type Reason struct {
	ModuleIdentifier string `json:"moduleIdentifier,omitempty" yaml:"moduleIdentifier,omitempty"`
	ModuleName       string `json:"moduleName,omitempty" yaml:"moduleName,omitempty"`
	Type             string `json:"type,omitempty" yaml:"type,omitempty"`
	Loc              string `json:"loc,omitempty" yaml:"loc,omitempty"`
	UserRequest      string `json:"userRequest,omitempty" yaml:"userRequest,omitempty"`

	// ResolvedModule is the identifier of the referencing module.
	ResolvedModule string `json:"resolvedModule,omitempty" yaml:"resolvedModule,omitempty"`
	// ResolvedEntry is the name of the referencing entrypoint.
	ResolvedEntry string `json:"resolvedEntry,omitempty" yaml:"resolvedEntry,omitempty"`
	// ResolvedEntryName is the entrypoint name the location resolved to.
	ResolvedEntryName string `json:"resolvedEntryName,omitempty" yaml:"resolvedEntryName,omitempty"`
}

// Key identifies a reason for de-duplication.
func (r Reason) Key() string {
	return r.ModuleIdentifier + "-" + r.Type + "-" + r.Loc
}

// Target reports what the reason resolved to.
func (r Reason) Target() ReasonTarget {
	switch {
	case r.ResolvedModule != "":
		return TargetModule
	case r.ResolvedEntry != "":
		return TargetEntrypoint
	default:
		return TargetNone
	}
}

// Dep is an outgoing edge: the owning module imports Module.
type Dep struct {
	Module string `json:"module" yaml:"module"`
	Reason Reason `json:"reason" yaml:"reason"`
}

// Issuer is one resolved step of a module's issuer chain.
type Issuer struct {
	Identifier     string `json:"identifier" yaml:"identifier"`
	Name           string `json:"name,omitempty" yaml:"name,omitempty"`
	ResolvedModule string `json:"resolvedModule,omitempty" yaml:"resolvedModule,omitempty"`
}

// Module is a normalized unit of compiled code.
type Module struct {
	Identifier       string   `json:"identifier" yaml:"identifier"`
	Name             string   `json:"name,omitempty" yaml:"name,omitempty"`
	ModuleType       string   `json:"moduleType,omitempty" yaml:"moduleType,omitempty"`
	Size             float64  `json:"size,omitempty" yaml:"size,omitempty"`
	ResolvedResource string   `json:"resolvedResource,omitempty" yaml:"resolvedResource,omitempty"`
	Chunks           []string `json:"chunks" yaml:"chunks"`
	Reasons          []Reason `json:"reasons" yaml:"reasons"`
	Deps             []Dep    `json:"deps" yaml:"deps"`
	Modules          []string `json:"modules" yaml:"modules"`
	IssuerPath       []Issuer `json:"issuerPath" yaml:"issuerPath"`
}

// InChunk reports whether the module belongs to the chunk with the given id.
func (m *Module) InChunk(id string) bool {
	for _, c := range m.Chunks {
		if c == id {
			return true
		}
	}
	return false
}

// Chunk is a normalized output grouping of modules. Parents and Children
// are inferred from origins; DeclaredParents and DeclaredChildren are the
// relations reported by the producer.
type Chunk struct {
	ID               string   `json:"id" yaml:"id"`
	Names            []string `json:"names" yaml:"names"`
	Initial          bool     `json:"initial" yaml:"initial"`
	Entry            bool     `json:"entry" yaml:"entry"`
	Size             float64  `json:"size,omitempty" yaml:"size,omitempty"`
	IsRuntime        bool     `json:"isRuntime" yaml:"isRuntime"`
	Modules          []string `json:"modules" yaml:"modules"`
	Files            []string `json:"files" yaml:"files"`
	Siblings         []string `json:"siblings" yaml:"siblings"`
	Parents          []string `json:"parents" yaml:"parents"`
	Children         []string `json:"children" yaml:"children"`
	DeclaredParents  []string `json:"declaredParents" yaml:"declaredParents"`
	DeclaredChildren []string `json:"declaredChildren" yaml:"declaredChildren"`
	Origins          []Reason `json:"origins" yaml:"origins"`
}

// Asset is a normalized emitted file.
type Asset struct {
	Name   string   `json:"name" yaml:"name"`
	Size   float64  `json:"size,omitempty" yaml:"size,omitempty"`
	Chunks []string `json:"chunks" yaml:"chunks"`
	Files  []string `json:"files" yaml:"files"`
}

// Entrypoint is a named root of the build graph. Dep is the first module
// reached through an entry-typed reason that targets this entrypoint.
type Entrypoint struct {
	Name   string   `json:"name" yaml:"name"`
	Chunks []string `json:"chunks" yaml:"chunks"`
	Assets []string `json:"assets" yaml:"assets"`
	Dep    *Dep     `json:"dep,omitempty" yaml:"dep,omitempty"`
}

// Package is a named dependency with one instance per install location.
type Package struct {
	Name      string      `json:"name" yaml:"name"`
	Instances []*Instance `json:"instances" yaml:"instances"`
}

// Instance returns the instance installed at path.
func (p *Package) Instance(path string) *Instance {
	for _, inst := range p.Instances {
		if inst.Path == path {
			return inst
		}
	}
	return nil
}

// Instance is one on-disk location of a package. Reasons lists modules from
// outside the instance that import into it.
type Instance struct {
	Path    string   `json:"path" yaml:"path"`
	IsRoot  bool     `json:"isRoot" yaml:"isRoot"`
	Version string   `json:"version,omitempty" yaml:"version,omitempty"`
	Modules []string `json:"modules" yaml:"modules"`
	Reasons []string `json:"reasons" yaml:"reasons"`
}
