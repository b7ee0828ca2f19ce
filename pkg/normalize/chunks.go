package normalize

import (
	"github.com/simonhull/firebird-suite/magpie/pkg/model"
	"github.com/simonhull/firebird-suite/magpie/pkg/stats"
)

const runtimeSizeKey = "runtime"

// prepareEntrypoints indexes entrypoints before modules so that entry
// reasons can resolve against them.
func (cx *compilationContext) prepareEntrypoints() {
	for _, raw := range cx.rawEntrypoints.All() {
		cx.entrypoints.Add(&model.Entrypoint{
			Name:   raw.Name,
			Chunks: cx.chunkRefs(raw.Chunks),
			Assets: cx.assetRefs(raw.Assets),
		})
	}
}

// prepareChunks resolves every raw chunk. Chunks referenced by other
// chunks are prepared on first reference.
func (cx *compilationContext) prepareChunks() {
	for _, raw := range cx.rawChunks.All() {
		cx.prepareChunk(raw)
	}
}

// prepareChunk is memoized by chunk id: a chunk enters the final index
// before its references are followed, so reference cycles terminate.
func (cx *compilationContext) prepareChunk(raw *stats.Chunk) {
	if raw == nil || cx.chunks.HasKey(raw.ID) {
		return
	}

	ch := &model.Chunk{
		ID:        raw.ID,
		Names:     append(make([]string, 0, len(raw.Names)), raw.Names...),
		Initial:   raw.Initial,
		Entry:     raw.Entry,
		Size:      raw.Size,
		IsRuntime: isRuntimeChunk(raw.Sizes),
		Modules:   append(make([]string, 0), cx.chunkMembers[raw.ID]...),
		Files:     cx.assetRefs(raw.Files),
		Parents:   make([]string, 0),
		Children:  make([]string, 0),
	}
	cx.chunks.Add(ch)

	for _, ref := range raw.Children {
		cx.prepareChunk(cx.rawChunk(ref))
	}
	ch.DeclaredChildren = cx.chunkRefs(raw.Children)

	for _, ref := range raw.Siblings {
		cx.prepareChunk(cx.rawChunk(ref))
	}
	ch.Siblings = cx.chunkRefs(raw.Siblings)

	for _, ref := range raw.Parents {
		cx.prepareChunk(cx.rawChunk(ref))
	}
	ch.DeclaredParents = cx.chunkRefs(raw.Parents)

	ch.Origins = make([]model.Reason, 0, len(raw.Origins))
	for _, o := range uniqueReasons(raw.Origins) {
		ch.Origins = append(ch.Origins, cx.resolveOrigin(o))
	}
}

// resolveOrigin resolves a chunk origin. An origin without a module names
// the entrypoint that requested the chunk.
func (cx *compilationContext) resolveOrigin(o stats.Reason) model.Reason {
	origin := model.Reason{
		ModuleIdentifier: o.ModuleIdentifier,
		ModuleName:       o.ModuleName,
		Type:             o.Type,
		Loc:              o.Loc,
		UserRequest:      o.UserRequest,
	}

	if o.ModuleIdentifier == "" {
		if o.Loc != "" && cx.entrypoints.HasKey(o.Loc) {
			origin.ResolvedEntry = o.Loc
			origin.ResolvedEntryName = o.Loc
		}
		return origin
	}

	origin.ResolvedModule, _ = cx.canonicalModule(o.ModuleIdentifier)
	return origin
}

func isRuntimeChunk(sizes map[string]float64) bool {
	if len(sizes) != 1 {
		return false
	}
	_, ok := sizes[runtimeSizeKey]
	return ok
}

// orderedSet is a string set that remembers insertion order.
type orderedSet struct {
	items []string
	seen  map[string]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{items: make([]string, 0), seen: make(map[string]bool)}
}

func (s *orderedSet) add(v string) {
	if !s.seen[v] {
		s.seen[v] = true
		s.items = append(s.items, v)
	}
}

// linkChunks infers chunk ancestry from origins. For every origin of a
// chunk, the chunks holding the origin's target module become its parents,
// unless the target module already lives in the chunk itself.
func (cx *compilationContext) linkChunks() {
	parents := make(map[string]*orderedSet)
	children := make(map[string]*orderedSet)
	get := func(m map[string]*orderedSet, id string) *orderedSet {
		s, ok := m[id]
		if !ok {
			s = newOrderedSet()
			m[id] = s
		}
		return s
	}

	for _, child := range cx.chunks.All() {
		for _, origin := range child.Origins {
			target := cx.originTarget(origin)
			if target == nil || target.InChunk(child.ID) {
				continue
			}

			for _, parentID := range target.Chunks {
				if parentID == child.ID {
					continue
				}
				get(children, parentID).add(child.ID)
				get(parents, child.ID).add(parentID)
			}
		}
	}

	for _, ch := range cx.chunks.All() {
		if s, ok := parents[ch.ID]; ok {
			ch.Parents = s.items
		}
		if s, ok := children[ch.ID]; ok {
			ch.Children = s.items
		}
	}
}

// originTarget returns the module an origin points at: its own module, or
// the module an entrypoint origin depends on.
func (cx *compilationContext) originTarget(origin model.Reason) *model.Module {
	if origin.ResolvedModule != "" {
		m, _ := cx.modules.Get(origin.ResolvedModule)
		return m
	}
	if origin.ResolvedEntry != "" {
		entry, ok := cx.entrypoints.Get(origin.ResolvedEntry)
		if ok && entry.Dep != nil {
			m, _ := cx.modules.Get(entry.Dep.Module)
			return m
		}
	}
	return nil
}

// prepareAssets indexes every raw asset with its chunks resolved.
func (cx *compilationContext) prepareAssets() {
	for _, raw := range cx.rawAssets.All() {
		cx.assets.Add(&model.Asset{
			Name:   raw.Name,
			Size:   raw.Size,
			Chunks: cx.chunkRefs(raw.Chunks),
			Files:  append(make([]string, 0, len(raw.Files)), raw.Files...),
		})
	}
}
