package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunks_Fixture(t *testing.T) {
	c := normalizeFixture(t)

	main := c.ResolveChunk("0")
	require.NotNil(t, main)
	assert.Equal(t, []string{"main"}, main.Names)
	assert.True(t, main.Initial)
	assert.True(t, main.Entry)
	assert.False(t, main.IsRuntime)
	assert.Equal(t, []string{"/app/src/index.js", "/app/src/util.js", "/app/node_modules/lodash/lodash.js"}, main.Modules)
	assert.Equal(t, []string{"main.js"}, main.Files)
	assert.Equal(t, []string{"3"}, main.Siblings)
	assert.Equal(t, []string{"1"}, main.DeclaredChildren)
	assert.Empty(t, main.Parents)
	assert.Equal(t, []string{"1"}, main.Children)

	require.Len(t, main.Origins, 1)
	assert.Equal(t, "main", main.Origins[0].ResolvedEntry)

	lazy := c.ResolveChunk("1")
	require.NotNil(t, lazy)
	assert.Equal(t, []string{"0"}, lazy.Parents)
	assert.Equal(t, []string{"0"}, lazy.DeclaredParents)
	assert.Empty(t, lazy.Children)
	require.Len(t, lazy.Origins, 1)
	assert.Equal(t, "/app/src/index.js", lazy.Origins[0].ResolvedModule)

	admin := c.ResolveChunk("2")
	require.NotNil(t, admin)
	assert.Equal(t, []string{"admin.js"}, admin.Files)
	assert.Equal(t, []string{"/app/src/util.js", "/app/src/admin.js"}, admin.Modules)
	assert.Empty(t, admin.Parents)

	runtime := c.ResolveChunk("3")
	require.NotNil(t, runtime)
	assert.True(t, runtime.IsRuntime)
	assert.Equal(t, []string{"0"}, runtime.Siblings)
	assert.Empty(t, runtime.Modules)
}

func TestChunks_RuntimeDetection(t *testing.T) {
	c := normalizeString(t, `{
	  "chunks": [
	    { "id": "a", "sizes": { "runtime": 10 } },
	    { "id": "b", "sizes": { "runtime": 10, "javascript": 5 } },
	    { "id": "c", "sizes": {} },
	    { "id": "d" }
	  ]
	}`).Root()

	assert.True(t, c.ResolveChunk("a").IsRuntime)
	assert.False(t, c.ResolveChunk("b").IsRuntime)
	assert.False(t, c.ResolveChunk("c").IsRuntime)
	assert.False(t, c.ResolveChunk("d").IsRuntime)
}

func TestChunks_OriginInSameChunkStopsThatOriginOnly(t *testing.T) {
	c := normalizeString(t, `{
	  "chunks": [
	    { "id": 0 },
	    { "id": 2, "origins": [
	      { "moduleIdentifier": "/app/c.js", "loc": "1:0" },
	      { "moduleIdentifier": "/app/d.js", "loc": "2:0" }
	    ] }
	  ],
	  "modules": [
	    { "identifier": "/app/c.js", "chunks": [0, 2] },
	    { "identifier": "/app/d.js", "chunks": [0] }
	  ]
	}`).Root()

	assert.Equal(t, []string{"0"}, c.ResolveChunk("2").Parents)
	assert.Equal(t, []string{"2"}, c.ResolveChunk("0").Children)
}

func TestChunks_TargetAlreadyInChunkAddsNoParent(t *testing.T) {
	c := normalizeString(t, `{
	  "chunks": [
	    { "id": 0 },
	    { "id": 1, "origins": [ { "moduleIdentifier": "/app/c.js", "loc": "1:0" } ] }
	  ],
	  "modules": [ { "identifier": "/app/c.js", "chunks": [0, 1] } ]
	}`).Root()

	assert.Empty(t, c.ResolveChunk("1").Parents)
	assert.Empty(t, c.ResolveChunk("0").Children)
}

func TestChunks_ParentsFromEveryTargetChunk(t *testing.T) {
	c := normalizeString(t, `{
	  "chunks": [
	    { "id": "a" },
	    { "id": "b" },
	    { "id": "lazy", "origins": [ { "moduleIdentifier": "/app/shared.js", "loc": "4:0" } ] }
	  ],
	  "modules": [ { "identifier": "/app/shared.js", "chunks": ["a", "b"] } ]
	}`).Root()

	assert.Equal(t, []string{"a", "b"}, c.ResolveChunk("lazy").Parents)
	assert.Equal(t, []string{"lazy"}, c.ResolveChunk("a").Children)
	assert.Equal(t, []string{"lazy"}, c.ResolveChunk("b").Children)
}

func TestChunks_EntrypointOrigin(t *testing.T) {
	c := normalizeString(t, `{
	  "entrypoints": { "main": { "chunks": ["main", "vendor"] } },
	  "chunks": [
	    { "id": "main" },
	    { "id": "vendor", "origins": [ { "loc": "main" }, { "loc": "nowhere" } ] }
	  ],
	  "modules": [ { "identifier": "/app/a.js", "chunks": ["main"], "reasons": [ { "type": "entry", "loc": "main" } ] } ]
	}`).Root()

	vendor := c.ResolveChunk("vendor")
	require.Len(t, vendor.Origins, 2)
	assert.Equal(t, "main", vendor.Origins[0].ResolvedEntry)
	assert.Empty(t, vendor.Origins[1].ResolvedEntry)

	assert.Equal(t, []string{"main"}, vendor.Parents)
	assert.Equal(t, []string{"vendor"}, c.ResolveChunk("main").Children)
	assert.Empty(t, c.Validate())
}

func TestChunks_ReferenceCyclesTerminate(t *testing.T) {
	c := normalizeString(t, `{
	  "chunks": [
	    { "id": 0, "siblings": [1], "parents": [1], "children": [1] },
	    { "id": 1, "siblings": [0], "parents": [0], "children": [0] },
	    { "id": 2, "siblings": [2] }
	  ]
	}`).Root()

	zero, one := c.ResolveChunk("0"), c.ResolveChunk("1")
	require.NotNil(t, zero)
	require.NotNil(t, one)

	assert.Equal(t, []string{"1"}, zero.Siblings)
	assert.Equal(t, []string{"0"}, one.Siblings)
	assert.Equal(t, []string{"1"}, zero.DeclaredParents)
	assert.Equal(t, []string{"0"}, one.DeclaredChildren)
	assert.Equal(t, []string{"2"}, c.ResolveChunk("2").Siblings)
	assert.Empty(t, c.Validate())
}

func TestChunks_EmbeddedRecords(t *testing.T) {
	c := normalizeString(t, `{
	  "entrypoints": { "main": { "chunks": [ { "id": "main", "files": ["main.js"] } ], "assets": [ { "name": "main.js", "size": 9 } ] } },
	  "modules": [
	    { "identifier": "/app/a.js", "chunks": [ "main", { "id": "async", "files": [ { "name": "async.js" } ] } ] }
	  ]
	}`).Root()

	main := c.ResolveChunk("main")
	require.NotNil(t, main)
	assert.Equal(t, []string{"main.js"}, main.Files)
	assert.Equal(t, []string{"/app/a.js"}, main.Modules)

	async := c.ResolveChunk("async")
	require.NotNil(t, async)
	assert.Equal(t, []string{"async.js"}, async.Files)

	require.NotNil(t, c.ResolveAsset("async.js"))
	assert.Equal(t, []string{"main", "async"}, c.ResolveModule("/app/a.js").Chunks)
	assert.Equal(t, []string{"main.js"}, c.ResolveEntrypoint("main").Assets)
}

func TestChunks_TopLevelRecordWinsOverEmbeddedCopy(t *testing.T) {
	c := normalizeString(t, `{
	  "assets": [ { "name": "main.js", "size": 100, "chunks": [0] } ],
	  "chunks": [ { "id": 0, "names": ["main"], "files": [ { "name": "main.js", "size": 1 } ] } ]
	}`).Root()

	assert.Equal(t, float64(100), c.ResolveAsset("main.js").Size)
	assert.Equal(t, []string{"main"}, c.ResolveChunk("0").Names)
}
