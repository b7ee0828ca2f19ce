package normalize

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
	"github.com/simonhull/firebird-suite/magpie/pkg/model"
	"github.com/simonhull/firebird-suite/magpie/pkg/resource"
	"github.com/simonhull/firebird-suite/magpie/pkg/stats"
)

const fixture = "testdata/app.json"

func newNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	cache, err := resource.NewCache(0)
	require.NoError(t, err)
	return New(cache).WithLogger(logger.NewSilentLogger())
}

func normalizeString(t *testing.T, data string) *model.File {
	t.Helper()
	doc, err := stats.Decode([]byte(data))
	require.NoError(t, err)
	file, err := newNormalizer(t).Normalize(doc)
	require.NoError(t, err)
	return file
}

func normalizeFixture(t *testing.T) *model.Compilation {
	t.Helper()
	file, err := newNormalizer(t).NormalizeFile(context.Background(), fixture)
	require.NoError(t, err)
	require.Len(t, file.Compilations, 1)
	return file.Root()
}

func md5String(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestNormalize_Fixture(t *testing.T) {
	c := normalizeFixture(t)

	assert.Equal(t, "abc", c.Hash)
	assert.Equal(t, "app", c.Name)
	assert.Equal(t, int64(840), c.Time)
	assert.False(t, c.IsChild)

	assert.Len(t, c.Modules, 5)
	assert.Len(t, c.Chunks, 4)
	assert.Len(t, c.Assets, 5)
	assert.Len(t, c.Entrypoints, 2)
	require.Len(t, c.Packages, 1)
	assert.Equal(t, "lodash", c.Packages[0].Name)
}

func TestNormalize_NoDanglingReferences(t *testing.T) {
	c := normalizeFixture(t)
	assert.Empty(t, c.Validate())
}

func TestNormalize_Entrypoints(t *testing.T) {
	c := normalizeFixture(t)

	main := c.ResolveEntrypoint("main")
	require.NotNil(t, main)
	assert.Equal(t, []string{"0"}, main.Chunks)
	assert.Equal(t, []string{"main.js"}, main.Assets)
	require.NotNil(t, main.Dep)
	assert.Equal(t, "/app/src/index.js", main.Dep.Module)

	admin := c.ResolveEntrypoint("admin")
	require.NotNil(t, admin)
	require.NotNil(t, admin.Dep)
	assert.Equal(t, "/app/src/admin.js", admin.Dep.Module)
	assert.Equal(t, "admin[0]", admin.Dep.Reason.Loc)
}

func TestNormalize_Assets(t *testing.T) {
	c := normalizeFixture(t)

	main := c.ResolveAsset("main.js")
	require.NotNil(t, main)
	assert.Equal(t, []string{"0"}, main.Chunks)

	sourceMap := c.ResolveAsset("main.js.map")
	require.NotNil(t, sourceMap)
	assert.Empty(t, sourceMap.Chunks)
	assert.NotNil(t, sourceMap.Files)
}

func TestNormalize_IssuerPathResolved(t *testing.T) {
	c := normalizeFixture(t)

	util := c.ResolveModule("/app/src/util.js")
	require.NotNil(t, util)
	require.Len(t, util.IssuerPath, 1)
	assert.Equal(t, "/app/src/index.js", util.IssuerPath[0].ResolvedModule)
}

func TestNormalize_UnresolvedReasonKept(t *testing.T) {
	c := normalizeFixture(t)

	lazy := c.ResolveModule("/app/src/lazy.js")
	require.NotNil(t, lazy)
	require.Len(t, lazy.Reasons, 2)
	assert.Equal(t, model.TargetModule, lazy.Reasons[0].Target())
	assert.Equal(t, model.TargetNone, lazy.Reasons[1].Target())
}

func TestNormalize_CompilationHashes(t *testing.T) {
	file := normalizeString(t, `{
	  "hash": "P",
	  "children": [
	    { "name": "child", "children": [ { "name": "grandchild" } ] },
	    { "name": "other", "hash": "explicit" }
	  ]
	}`)

	require.Len(t, file.Compilations, 4)

	root := file.Compilations[0]
	child := file.Compilations[1]
	grandchild := file.Compilations[2]
	other := file.Compilations[3]

	assert.Equal(t, "P", root.Hash)
	assert.Equal(t, md5String("Pchild"), child.Hash)
	assert.Equal(t, md5String(child.Hash+"grandchild"), grandchild.Hash)
	assert.Equal(t, "explicit", other.Hash)

	assert.Equal(t, []string{child.Hash, "explicit"}, root.Children)
	assert.Equal(t, []string{grandchild.Hash}, child.Children)

	assert.True(t, child.IsChild)
	assert.Equal(t, "P", child.Parent)
	assert.Equal(t, child.Hash, grandchild.Parent)

	assert.Same(t, grandchild, file.ResolveCompilation(grandchild.Hash))
}

func TestNormalize_UnnamedChildHashes(t *testing.T) {
	file := normalizeString(t, `{
	  "hash": "P",
	  "children": [ { "modules": [] }, { "name": null } ]
	}`)

	require.Len(t, file.Compilations, 3)
	assert.Equal(t, md5String("Pundefined"), file.Compilations[1].Hash)
	assert.Equal(t, md5String("Pnull"), file.Compilations[2].Hash)
}

func TestNormalize_RootHashFallback(t *testing.T) {
	named := normalizeString(t, `{"name": "web"}`)
	assert.Equal(t, md5String("web"), named.Root().Hash)

	anonymous := normalizeString(t, `{}`)
	assert.Equal(t, md5String("unknown"), anonymous.Root().Hash)
}

func TestNormalize_HashesAreStable(t *testing.T) {
	data := `{"name": "web", "children": [{"name": "worker"}]}`

	first := normalizeString(t, data)
	second := normalizeString(t, data)

	assert.Equal(t, first.Compilations[1].Hash, second.Compilations[1].Hash)
}

func TestNormalize_ChildCompilationsAreIsolated(t *testing.T) {
	file := normalizeString(t, `{
	  "hash": "root",
	  "modules": [ { "identifier": "/app/a.js", "name": "./a.js" } ],
	  "children": [
	    { "name": "worker", "modules": [ { "identifier": "/app/w.js", "name": "./w.js", "reasons": [
	      { "moduleIdentifier": "/app/a.js", "type": "harmony import", "loc": "1:0" }
	    ] } ] }
	  ]
	}`)

	worker := file.Compilations[1]
	w := worker.ResolveModule("/app/w.js")
	require.NotNil(t, w)
	assert.Nil(t, worker.ResolveModule("/app/a.js"))
	assert.Empty(t, w.Reasons[0].ResolvedModule)
	assert.Empty(t, worker.Validate())
}

func TestNormalize_MalformedRecords(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		kind  string
		field string
	}{
		{
			name:  "module without identifier",
			data:  `{"modules": [{"name": "./a.js"}]}`,
			kind:  "module",
			field: "identifier",
		},
		{
			name:  "nested module without identifier",
			data:  `{"modules": [{"identifier": "/a.js", "modules": [{"name": "./b.js"}]}]}`,
			kind:  "module",
			field: "identifier",
		},
		{
			name:  "chunk without id",
			data:  `{"chunks": [{"names": ["main"]}]}`,
			kind:  "chunk",
			field: "id",
		},
		{
			name:  "asset without name",
			data:  `{"assets": [{"size": 10}]}`,
			kind:  "asset",
			field: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := stats.Decode([]byte(tt.data))
			require.NoError(t, err)

			_, err = newNormalizer(t).Normalize(doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRecord))

			var malformed *MalformedRecordError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.kind, malformed.Kind)
			assert.Equal(t, tt.field, malformed.Field)
		})
	}
}

func TestNormalize_MalformedChildFailsDocument(t *testing.T) {
	doc, err := stats.Decode([]byte(`{"children": [{"name": "c", "modules": [{}]}]}`))
	require.NoError(t, err)

	_, err = newNormalizer(t).WithWorkers(1).Normalize(doc)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestNormalize_NilDocument(t *testing.T) {
	_, err := newNormalizer(t).Normalize(nil)
	assert.ErrorIs(t, err, stats.ErrInvalidDocument)
}

func TestNormalizeWithContext_Cancelled(t *testing.T) {
	doc, err := stats.Load(fixture)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = newNormalizer(t).NormalizeWithContext(ctx, doc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalize_NilCache(t *testing.T) {
	doc, err := stats.Load(fixture)
	require.NoError(t, err)

	file, err := New(nil).WithLogger(logger.NewSilentLogger()).Normalize(doc)
	require.NoError(t, err)
	assert.Empty(t, file.Root().Validate())
}

func TestNormalizeAll(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)

	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	require.NoError(t, os.WriteFile(first, data, 0o644))
	require.NoError(t, os.WriteFile(second, []byte(`{"name": "second"}`), 0o644))

	files, err := newNormalizer(t).WithWorkers(2).NormalizeAll(context.Background(), []string{first, second})
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, first, files[0].Path)
	assert.Equal(t, "abc", files[0].Root().Hash)
	assert.Equal(t, second, files[1].Path)
	assert.Equal(t, "second", files[1].Root().Name)
}

func TestNormalizeAll_FailsOnBadFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[1, 2, 3]`), 0o644))

	_, err := newNormalizer(t).NormalizeAll(context.Background(), []string{fixture, bad})
	assert.ErrorIs(t, err, stats.ErrInvalidDocument)
}

func TestNormalizer_WithOptionsCopy(t *testing.T) {
	base := newNormalizer(t)
	tuned := base.WithWorkers(3).WithProvenance(nil)

	assert.NotSame(t, base, tuned)
	assert.Equal(t, 3, tuned.workers)
	assert.Positive(t, base.WithWorkers(0).workers)
}
