package normalize

import (
	"github.com/simonhull/firebird-suite/magpie/pkg/index"
	"github.com/simonhull/firebird-suite/magpie/pkg/model"
	"github.com/simonhull/firebird-suite/magpie/pkg/resource"
	"github.com/simonhull/firebird-suite/magpie/pkg/stats"
)

// pendingDep is an outgoing edge waiting for its source module to exist in
// the final index.
type pendingDep struct {
	source string
	dep    model.Dep
}

// compilationContext holds the private state of one compilation's
// normalization: the raw indexes keyed by literal source ids, the final
// indexes keyed by normalized identity, and bookkeeping between passes.
type compilationContext struct {
	name       string
	hash       string
	cache      *resource.Cache
	provenance Provenance

	rawModules     *index.Index[*stats.Module]
	rawChunks      *index.Index[*stats.Chunk]
	rawAssets      *index.Index[*stats.Asset]
	rawEntrypoints *index.Index[*stats.Entrypoint]
	occurrences    []*stats.Module
	visitedChunks  map[*stats.Chunk]bool
	visitedAssets  map[*stats.Asset]bool

	modules     *index.Index[*model.Module]
	chunks      *index.Index[*model.Chunk]
	assets      *index.Index[*model.Asset]
	entrypoints *index.Index[*model.Entrypoint]
	packages    *index.Index[*model.Package]

	pendingDeps  []pendingDep
	chunkMembers map[string][]string
	unresolved   int
}

func newCompilationContext(name, hash string, cache *resource.Cache, provenance Provenance) *compilationContext {
	moduleIDs := index.WithIDModifier(cache.NormalizeID)

	return &compilationContext{
		name:       name,
		hash:       hash,
		cache:      cache,
		provenance: provenance,

		rawModules:     index.New(func(m *stats.Module) string { return m.Identifier }, moduleIDs),
		rawChunks:      index.New(func(c *stats.Chunk) string { return c.ID }),
		rawAssets:      index.New(func(a *stats.Asset) string { return a.Name }),
		rawEntrypoints: index.New(func(e *stats.Entrypoint) string { return e.Name }),
		occurrences:    make([]*stats.Module, 0),
		visitedChunks:  make(map[*stats.Chunk]bool),
		visitedAssets:  make(map[*stats.Asset]bool),

		modules:     index.New(func(m *model.Module) string { return m.Identifier }, moduleIDs),
		chunks:      index.New(func(c *model.Chunk) string { return c.ID }),
		assets:      index.New(func(a *model.Asset) string { return a.Name }),
		entrypoints: index.New(func(e *model.Entrypoint) string { return e.Name }),
		packages:    index.New(func(p *model.Package) string { return p.Name }),

		pendingDeps:  make([]pendingDep, 0),
		chunkMembers: make(map[string][]string),
	}
}

// canonicalModule returns the identity a module reference resolves to: the
// identifier of the first module record sharing its normalized id.
func (cx *compilationContext) canonicalModule(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	raw, ok := cx.rawModules.Get(id)
	if !ok {
		cx.unresolved++
		return "", false
	}
	return raw.Identifier, true
}

// chunkRefs resolves chunk references against the raw chunk index,
// dropping holes, unknown ids and duplicates.
func (cx *compilationContext) chunkRefs(refs []stats.ChunkRef) []string {
	ids := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if ref.IsZero() {
			continue
		}
		if !cx.rawChunks.HasKey(ref.ID) {
			cx.unresolved++
			continue
		}
		if !seen[ref.ID] {
			seen[ref.ID] = true
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

// assetRefs resolves asset references against the raw asset index.
func (cx *compilationContext) assetRefs(refs []stats.AssetRef) []string {
	names := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if ref.IsZero() {
			continue
		}
		if !cx.rawAssets.HasKey(ref.Name) {
			cx.unresolved++
			continue
		}
		if !seen[ref.Name] {
			seen[ref.Name] = true
			names = append(names, ref.Name)
		}
	}
	return names
}

// rawChunk returns the raw record a chunk reference points at.
func (cx *compilationContext) rawChunk(ref stats.ChunkRef) *stats.Chunk {
	if ref.IsZero() {
		return nil
	}
	raw, ok := cx.rawChunks.Get(ref.ID)
	if !ok {
		return nil
	}
	return raw
}

// compilation assembles the final indexes into a sealed model.Compilation.
func (cx *compilationContext) compilation(item *walkItem) *model.Compilation {
	c := &model.Compilation{
		Hash:        item.hash,
		Name:        item.raw.Name,
		Time:        item.raw.Time,
		BuiltAt:     item.raw.BuiltAt,
		IsChild:     item.isChild,
		Parent:      item.parent,
		Children:    item.children,
		Modules:     cx.modules.All(),
		Chunks:      cx.chunks.All(),
		Assets:      cx.assets.All(),
		Entrypoints: cx.entrypoints.All(),
		Packages:    cx.packages.All(),
	}
	c.Seal(cx.cache.NormalizeID)
	return c
}
