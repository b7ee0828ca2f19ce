package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/magpie/pkg/stats"
)

func TestWalkCompilations_Nil(t *testing.T) {
	assert.Nil(t, walkCompilations(nil))
}

func TestWalkCompilations_Order(t *testing.T) {
	root := &stats.Compilation{
		Name: "root",
		Children: []*stats.Compilation{
			{Name: "a", Children: []*stats.Compilation{{Name: "a1"}, {Name: "a2"}}},
			nil,
			{Name: "b"},
		},
	}

	items := walkCompilations(root)

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.raw.Name)
	}
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, names)

	assert.False(t, items[0].isChild)
	assert.Equal(t, items[0].hash, items[1].parent)
	assert.Equal(t, items[1].hash, items[2].parent)
	assert.Equal(t, []string{items[1].hash, items[4].hash}, items[0].children)
	assert.Equal(t, []string{items[2].hash, items[3].hash}, items[1].children)
}

func TestWalkCompilations_DeepTree(t *testing.T) {
	const depth = 10000

	root := &stats.Compilation{Name: "root"}
	cursor := root
	for i := 0; i < depth; i++ {
		child := &stats.Compilation{Name: "child"}
		cursor.Children = []*stats.Compilation{child}
		cursor = child
	}

	items := walkCompilations(root)
	require.Len(t, items, depth+1)
	assert.Equal(t, items[depth-1].hash, items[depth].parent)
}

func TestCompilationHash(t *testing.T) {
	tests := []struct {
		name       string
		c          *stats.Compilation
		parentHash string
		hasParent  bool
		want       string
	}{
		{"explicit hash", &stats.Compilation{Name: "x", Hash: "h1"}, "P", true, "h1"},
		{"child", &stats.Compilation{Name: "child"}, "P", true, md5String("Pchild")},
		{"unnamed child", &stats.Compilation{}, "P", true, md5String("Pundefined")},
		{"null-named child", &stats.Compilation{NullName: true}, "P", true, md5String("Pnull")},
		{"empty-named child", &stats.Compilation{HasName: true}, "P", true, md5String("P")},
		{"root by name", &stats.Compilation{Name: "web"}, "", false, md5String("web")},
		{"anonymous root", &stats.Compilation{}, "", false, md5String("unknown")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compilationHash(tt.c, tt.parentHash, tt.hasParent))
		})
	}
}
