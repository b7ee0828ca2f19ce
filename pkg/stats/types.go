package stats

// Document is one decoded build report.
type Document struct {
	// Path is the file the document was read from, if any.
	Path        string
	Compilation *Compilation
	Extensions  []Extension
}

// Extension is an auxiliary payload attached to a report by a producer
// plugin (for example package version information).
type Extension struct {
	Name    string
	Version string
	// Payload is the raw JSON of the extension payload.
	Payload string
}

// Extension returns the extension with the given name.
func (d *Document) Extension(name string) (Extension, bool) {
	for _, ext := range d.Extensions {
		if ext.Name == name {
			return ext, true
		}
	}
	return Extension{}, false
}

// Compilation is one raw build result. Children are nested builds spawned
// by plugins (child compilers).
type Compilation struct {
	Name string
	// HasName is set when the report carries a non-null name, even "".
	HasName bool
	// NullName is set for an explicit "name": null.
	NullName    bool
	Hash        string
	Time        int64
	BuiltAt     int64
	Modules     []*Module
	Chunks      []*Chunk
	Assets      []*Asset
	Entrypoints []*Entrypoint
	Children    []*Compilation
}

// HashName is the name used to derive a child compilation hash:
// "undefined" when it is missing and "null" when it is null.
func (c *Compilation) HashName() string {
	switch {
	case c.Name != "" || c.HasName:
		return c.Name
	case c.NullName:
		return "null"
	default:
		return "undefined"
	}
}

// Module is a raw module record.
type Module struct {
	Identifier string
	Name       string
	ModuleType string
	Size       float64
	Chunks     []ChunkRef
	Reasons    []Reason
	Modules    []*Module
	IssuerPath []Issuer
}

// Issuer is one step of the chain of modules that caused a module to be
// included.
type Issuer struct {
	Identifier string
	Name       string
}

// Reason is an incoming edge: who references a module, or why a chunk
// exists when used as a chunk origin.
type Reason struct {
	ModuleIdentifier string
	ModuleName       string
	Type             string
	Loc              string
	UserRequest      string
}

// Key identifies a reason for de-duplication.
func (r Reason) Key() string {
	return r.ModuleIdentifier + "-" + r.Type + "-" + r.Loc
}

// ChunkRef references a chunk either by bare id or by an embedded record.
// A zero ChunkRef is a hole left by the producer.
type ChunkRef struct {
	ID    string
	Chunk *Chunk
}

// IsZero reports whether the reference is a hole.
func (r ChunkRef) IsZero() bool {
	return r.ID == "" && r.Chunk == nil
}

// AssetRef references an asset either by bare name or by an embedded record.
type AssetRef struct {
	Name  string
	Asset *Asset
}

// IsZero reports whether the reference is a hole.
func (r AssetRef) IsZero() bool {
	return r.Name == "" && r.Asset == nil
}

// Chunk is a raw chunk record. Sizes is nil when the producer did not emit
// a size breakdown.
type Chunk struct {
	ID       string
	Hash     string
	Names    []string
	Initial  bool
	Entry    bool
	Rendered bool
	Size     float64
	Sizes    map[string]float64
	Files    []AssetRef
	Children []ChunkRef
	Siblings []ChunkRef
	Parents  []ChunkRef
	Origins  []Reason
	Modules  []*Module
}

// Asset is a raw emitted file.
type Asset struct {
	Name   string
	Size   float64
	Chunks []ChunkRef
	Files  []string
}

// Entrypoint is a named root of the build graph.
type Entrypoint struct {
	Name   string
	Chunks []ChunkRef
	Assets []AssetRef
}
