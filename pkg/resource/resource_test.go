package resource

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewCache(128)
	require.NoError(t, err)
	return c
}

func TestNormalizeID(t *testing.T) {
	c := newCache(t)

	tests := []struct {
		id   string
		want string
	}{
		{"a/b.js|1a2b3c", "a/b.js|root"},
		{"a/b.js|deadbe", "a/b.js|root"},
		{"css ./style.css 0f0f", "css ./style.css root"},
		{"./src/index.js", "./src/index.js"},
		{"a/b.js|NOTHEX", "a/b.js|NOTHEX"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, c.NormalizeID(tt.id))
			// memoized result stays identical
			assert.Equal(t, tt.want, c.NormalizeID(tt.id))
		})
	}
}

func TestNormalizeID_SharedPrefixIsStable(t *testing.T) {
	c := newCache(t)
	assert.Equal(t, c.NormalizeID("x/y.js|111aaa"), c.NormalizeID("x/y.js|bbb222"))
}

func TestModuleNameResource(t *testing.T) {
	c := newCache(t)

	tests := []struct {
		name string
		want string
	}{
		{"./src/index.js", "src/index.js"},
		{`.\src\index.js`, `src\index.js`},
		{"babel-loader!./src/app.js", "src/app.js"},
		{"./src/index.js + 12 modules", "src/index.js"},
		{"(webpack)/buildin/global.js", "node_modules/webpack/buildin/global.js"},
		{"multi ./a.js ./b.js", ""},
		{"fs (ignored)", ""},
		{"", ""},
		{"node_modules/react/index.js", "node_modules/react/index.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ModuleNameResource(tt.name))
		})
	}
}

func TestModuleResource_FederatedModules(t *testing.T) {
	c := newCache(t)

	name := "consume shared module (default) react@^17 (strict) (fallback: ./node_modules/react/index.js)"
	assert.Equal(t, name, c.ModuleResource(name, "consume-shared-module"))
	assert.Equal(t, "provide shared module (default) react@17", c.ModuleResource("provide shared module (default) react@17", "provide-module"))
	assert.Equal(t, "src/a.js", c.ModuleResource("./src/a.js", "javascript/auto"))
}

func TestNodeModule(t *testing.T) {
	c := newCache(t)

	tests := []struct {
		path string
		want *NodeModule
	}{
		{"node_modules/foo/a.js", &NodeModule{Name: "foo", Path: "node_modules/foo", IsRoot: true}},
		{"node_modules/foo/b.js", &NodeModule{Name: "foo", Path: "node_modules/foo", IsRoot: true}},
		{"node_modules/bar/node_modules/foo/c.js", &NodeModule{Name: "foo", Path: "node_modules/bar/node_modules/foo", IsRoot: false}},
		{"node_modules/@scope/pkg/index.js", &NodeModule{Name: "@scope/pkg", Path: "node_modules/@scope/pkg", IsRoot: true}},
		{`C:\app\node_modules\lodash\map.js`, &NodeModule{Name: "lodash", Path: `C:\app\node_modules\lodash`, IsRoot: true}},
		{"src/index.js", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, c.NodeModule(tt.path))
		})
	}
}

func TestNodeModule_FederatedPathKept(t *testing.T) {
	c := newCache(t)

	path := "consume shared module (default) react@^17 (fallback: ./node_modules/react/index.js)"
	nm := c.NodeModule(path)
	require.NotNil(t, nm)
	assert.Equal(t, "react", nm.Name)
	assert.Equal(t, path, nm.Path)
}

func TestCache_NilComputesWithoutMemo(t *testing.T) {
	var c *Cache

	assert.Equal(t, "a.js|root", c.NormalizeID("a.js|abc"))
	assert.Equal(t, "src/a.js", c.ModuleNameResource("./src/a.js"))
	assert.NotNil(t, c.NodeModule("node_modules/a/index.js"))
	assert.Zero(t, c.Len())
	c.Purge()
}

func TestCache_Purge(t *testing.T) {
	c := newCache(t)
	c.NormalizeID("a|abc")
	c.ModuleNameResource("./a.js")
	c.NodeModule("node_modules/a/a.js")
	assert.Equal(t, 3, c.Len())

	c.Purge()
	assert.Zero(t, c.Len())
}

func TestCache_ConcurrentUse(t *testing.T) {
	c := newCache(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "m.js|root", c.NormalizeID("m.js|abcdef"))
				assert.Equal(t, "foo", c.NodeModule("node_modules/foo/x.js").Name)
			}
		}()
	}
	wg.Wait()
}
