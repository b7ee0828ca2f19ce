package normalize

import (
	"github.com/simonhull/firebird-suite/magpie/pkg/stats"
)

// collect fills the raw indexes from every place a producer may put a
// record: top-level arrays, modules listed under chunks, nested
// (concatenated) modules, and chunk or asset records embedded in
// references.
func (cx *compilationContext) collect(c *stats.Compilation) error {
	// top-level records take precedence over copies embedded in references
	for _, ch := range c.Chunks {
		if err := cx.addChunk(ch); err != nil {
			return err
		}
	}
	for _, a := range c.Assets {
		if err := cx.addAsset(a); err != nil {
			return err
		}
	}

	for _, e := range c.Entrypoints {
		cx.rawEntrypoints.Add(e)
		for _, ref := range e.Chunks {
			if err := cx.collectChunkRef(ref); err != nil {
				return err
			}
		}
		for _, ref := range e.Assets {
			if err := cx.collectAssetRef(ref); err != nil {
				return err
			}
		}
	}

	for _, m := range c.Modules {
		if err := cx.collectModule(m); err != nil {
			return err
		}
	}

	for _, ch := range c.Chunks {
		if err := cx.collectChunk(ch); err != nil {
			return err
		}
	}

	for _, a := range c.Assets {
		if err := cx.collectAsset(a); err != nil {
			return err
		}
	}

	return nil
}

// collectModule records a module occurrence and its nested modules. The
// walk uses an explicit stack so deeply concatenated modules cannot exhaust
// the call stack.
func (cx *compilationContext) collectModule(root *stats.Module) error {
	stack := []*stats.Module{root}

	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m == nil {
			continue
		}

		if m.Identifier == "" {
			return &MalformedRecordError{
				Compilation: cx.name,
				Kind:        "module",
				Index:       len(cx.occurrences),
				Field:       "identifier",
			}
		}

		cx.occurrences = append(cx.occurrences, m)
		cx.rawModules.Add(m)

		for _, ref := range m.Chunks {
			if err := cx.collectChunkRef(ref); err != nil {
				return err
			}
		}

		for i := len(m.Modules) - 1; i >= 0; i-- {
			stack = append(stack, m.Modules[i])
		}
	}

	return nil
}

func (cx *compilationContext) collectChunkRef(ref stats.ChunkRef) error {
	if ref.Chunk == nil {
		return nil
	}
	return cx.collectChunk(ref.Chunk)
}

func (cx *compilationContext) addChunk(ch *stats.Chunk) error {
	if ch == nil {
		return nil
	}
	if ch.ID == "" {
		return &MalformedRecordError{
			Compilation: cx.name,
			Kind:        "chunk",
			Index:       cx.rawChunks.Len(),
			Field:       "id",
		}
	}
	cx.rawChunks.Add(ch)
	return nil
}

func (cx *compilationContext) collectChunk(ch *stats.Chunk) error {
	if ch == nil || cx.visitedChunks[ch] {
		return nil
	}
	cx.visitedChunks[ch] = true

	if err := cx.addChunk(ch); err != nil {
		return err
	}

	for _, refs := range [][]stats.ChunkRef{ch.Children, ch.Siblings, ch.Parents} {
		for _, ref := range refs {
			if err := cx.collectChunkRef(ref); err != nil {
				return err
			}
		}
	}

	for _, ref := range ch.Files {
		if err := cx.collectAssetRef(ref); err != nil {
			return err
		}
	}

	for _, m := range ch.Modules {
		if err := cx.collectModule(m); err != nil {
			return err
		}
	}

	return nil
}

func (cx *compilationContext) collectAssetRef(ref stats.AssetRef) error {
	if ref.Asset == nil {
		return nil
	}
	return cx.collectAsset(ref.Asset)
}

func (cx *compilationContext) addAsset(a *stats.Asset) error {
	if a == nil {
		return nil
	}
	if a.Name == "" {
		return &MalformedRecordError{
			Compilation: cx.name,
			Kind:        "asset",
			Index:       cx.rawAssets.Len(),
			Field:       "name",
		}
	}
	cx.rawAssets.Add(a)
	return nil
}

func (cx *compilationContext) collectAsset(a *stats.Asset) error {
	if a == nil || cx.visitedAssets[a] {
		return nil
	}
	cx.visitedAssets[a] = true

	if err := cx.addAsset(a); err != nil {
		return err
	}

	for _, ref := range a.Chunks {
		if err := cx.collectChunkRef(ref); err != nil {
			return err
		}
	}
	return nil
}
