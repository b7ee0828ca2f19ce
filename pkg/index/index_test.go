package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id    string
	value int
}

func byID(i *item) string { return i.id }

func TestIndex_AddAndGet(t *testing.T) {
	ix := New(byID)

	stored, added := ix.Add(&item{id: "a", value: 1})
	require.True(t, added)
	assert.Equal(t, 1, stored.value)

	got, ok := ix.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got.value)

	_, ok = ix.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, ix.Len())
}

func TestIndex_DuplicateKeyIsMergeTrigger(t *testing.T) {
	ix := New(byID)

	first := &item{id: "a", value: 1}
	ix.Add(first)

	stored, added := ix.Add(&item{id: "a", value: 2})
	assert.False(t, added)
	assert.Same(t, first, stored)
	assert.Equal(t, 1, ix.Len())
}

func TestIndex_IDModifier(t *testing.T) {
	trimHash := func(id string) string {
		if i := strings.LastIndex(id, "|"); i >= 0 {
			return id[:i+1] + "root"
		}
		return id
	}
	ix := New(byID, WithIDModifier(trimHash))

	ix.Add(&item{id: "a.js|111", value: 1})
	stored, added := ix.Add(&item{id: "a.js|222", value: 2})

	assert.False(t, added)
	assert.Equal(t, 1, stored.value)
	assert.True(t, ix.HasID("a.js|111"))
	assert.True(t, ix.HasID("a.js|222"))
	assert.False(t, ix.HasID("a.js|333"))
	assert.True(t, ix.HasKey("a.js|333"))
	assert.Equal(t, "a.js|root", ix.Key("a.js|333"))

	got, ok := ix.Get("a.js|999")
	require.True(t, ok)
	assert.Equal(t, 1, got.value)
}

func TestIndex_AllPreservesInsertionOrder(t *testing.T) {
	ix := New(byID)
	for _, id := range []string{"c", "a", "b", "a"} {
		ix.Add(&item{id: id})
	}

	ids := make([]string, 0, ix.Len())
	for _, it := range ix.All() {
		ids = append(ids, it.id)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}
