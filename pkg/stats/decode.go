// Package stats decodes bundler build reports (webpack-style stats JSON)
// into raw, loosely typed records.
//
// Reports are produced by many bundler versions and plugins, so decoding is
// deliberately lenient: missing arrays decode as empty, ids may be strings
// or numbers, chunks may be referenced by id or embedded record, assets by
// name or embedded record, and null holes are preserved as zero references
// for the normalizer to drop.
package stats

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// ErrInvalidDocument is returned when the input is not a JSON object.
var ErrInvalidDocument = errors.New("invalid stats document")

const extensionsPath = "__statoscope.extensions"

// Load reads and decodes the report at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stats file: %w", err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Decode decodes a report from its JSON encoding.
func Decode(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level value is %s, want object", ErrInvalidDocument, root.Type)
	}

	return &Document{
		Compilation: decodeCompilation(root),
		Extensions:  decodeExtensions(root.Get(extensionsPath)),
	}, nil
}

func decodeExtensions(v gjson.Result) []Extension {
	exts := make([]Extension, 0)
	for _, item := range v.Array() {
		if !item.IsObject() {
			continue
		}
		exts = append(exts, Extension{
			Name:    item.Get("descriptor.name").String(),
			Version: item.Get("descriptor.version").String(),
			Payload: item.Get("payload").Raw,
		})
	}
	return exts
}

func decodeCompilation(v gjson.Result) *Compilation {
	name := v.Get("name")
	c := &Compilation{
		Name:        name.String(),
		HasName:     name.Exists() && name.Type != gjson.Null,
		NullName:    name.Exists() && name.Type == gjson.Null,
		Hash:        v.Get("hash").String(),
		Time:        v.Get("time").Int(),
		BuiltAt:     v.Get("builtAt").Int(),
		Modules:     decodeModules(v.Get("modules")),
		Chunks:      make([]*Chunk, 0),
		Assets:      make([]*Asset, 0),
		Entrypoints: make([]*Entrypoint, 0),
		Children:    make([]*Compilation, 0),
	}

	for _, item := range v.Get("chunks").Array() {
		if item.IsObject() {
			c.Chunks = append(c.Chunks, decodeChunk(item))
		}
	}

	for _, item := range v.Get("assets").Array() {
		if item.IsObject() {
			c.Assets = append(c.Assets, decodeAsset(item))
		}
	}

	v.Get("entrypoints").ForEach(func(key, value gjson.Result) bool {
		c.Entrypoints = append(c.Entrypoints, &Entrypoint{
			Name:   key.String(),
			Chunks: decodeChunkRefs(value.Get("chunks")),
			Assets: decodeAssetRefs(value.Get("assets")),
		})
		return true
	})

	for _, item := range v.Get("children").Array() {
		if item.IsObject() {
			c.Children = append(c.Children, decodeCompilation(item))
		}
	}

	return c
}

func decodeModules(v gjson.Result) []*Module {
	modules := make([]*Module, 0)
	for _, item := range v.Array() {
		if item.IsObject() {
			modules = append(modules, decodeModule(item))
		}
	}
	return modules
}

func decodeModule(v gjson.Result) *Module {
	m := &Module{
		Identifier: v.Get("identifier").String(),
		Name:       v.Get("name").String(),
		ModuleType: v.Get("moduleType").String(),
		Size:       v.Get("size").Float(),
		Chunks:     decodeChunkRefs(v.Get("chunks")),
		Reasons:    decodeReasons(v.Get("reasons")),
		Modules:    decodeModules(v.Get("modules")),
		IssuerPath: make([]Issuer, 0),
	}

	for _, item := range v.Get("issuerPath").Array() {
		if !item.IsObject() {
			continue
		}
		m.IssuerPath = append(m.IssuerPath, Issuer{
			Identifier: item.Get("identifier").String(),
			Name:       item.Get("name").String(),
		})
	}

	return m
}

func decodeReasons(v gjson.Result) []Reason {
	reasons := make([]Reason, 0)
	for _, item := range v.Array() {
		if !item.IsObject() {
			continue
		}
		reasons = append(reasons, Reason{
			ModuleIdentifier: item.Get("moduleIdentifier").String(),
			ModuleName:       item.Get("moduleName").String(),
			Type:             item.Get("type").String(),
			Loc:              item.Get("loc").String(),
			UserRequest:      item.Get("userRequest").String(),
		})
	}
	return reasons
}

func decodeChunk(v gjson.Result) *Chunk {
	ch := &Chunk{
		ID:       v.Get("id").String(),
		Hash:     v.Get("hash").String(),
		Names:    decodeStrings(v.Get("names")),
		Initial:  v.Get("initial").Bool(),
		Entry:    v.Get("entry").Bool(),
		Rendered: v.Get("rendered").Bool(),
		Size:     v.Get("size").Float(),
		Files:    decodeAssetRefs(v.Get("files")),
		Children: decodeChunkRefs(v.Get("children")),
		Siblings: decodeChunkRefs(v.Get("siblings")),
		Parents:  decodeChunkRefs(v.Get("parents")),
		Origins:  decodeReasons(v.Get("origins")),
		Modules:  decodeModules(v.Get("modules")),
	}

	if sizes := v.Get("sizes"); sizes.IsObject() {
		ch.Sizes = make(map[string]float64)
		sizes.ForEach(func(key, value gjson.Result) bool {
			ch.Sizes[key.String()] = value.Float()
			return true
		})
	}

	return ch
}

func decodeAsset(v gjson.Result) *Asset {
	return &Asset{
		Name:   v.Get("name").String(),
		Size:   v.Get("size").Float(),
		Chunks: decodeChunkRefs(v.Get("chunks")),
		Files:  decodeStrings(v.Get("files")),
	}
}

func decodeChunkRefs(v gjson.Result) []ChunkRef {
	refs := make([]ChunkRef, 0)
	for _, item := range v.Array() {
		switch {
		case item.IsObject():
			ch := decodeChunk(item)
			refs = append(refs, ChunkRef{ID: ch.ID, Chunk: ch})
		case item.Type == gjson.String || item.Type == gjson.Number:
			refs = append(refs, ChunkRef{ID: item.String()})
		default:
			refs = append(refs, ChunkRef{})
		}
	}
	return refs
}

func decodeAssetRefs(v gjson.Result) []AssetRef {
	refs := make([]AssetRef, 0)
	for _, item := range v.Array() {
		switch {
		case item.IsObject():
			a := decodeAsset(item)
			refs = append(refs, AssetRef{Name: a.Name, Asset: a})
		case item.Type == gjson.String:
			refs = append(refs, AssetRef{Name: item.String()})
		default:
			refs = append(refs, AssetRef{})
		}
	}
	return refs
}

func decodeStrings(v gjson.Result) []string {
	out := make([]string, 0)
	for _, item := range v.Array() {
		if item.Type == gjson.String || item.Type == gjson.Number {
			out = append(out, item.String())
		}
	}
	return out
}
