// Package index provides ordered, keyed collections used while normalizing
// a compilation.
//
// An Index maps every item to a key produced by a key function. When an id
// modifier is configured, ids are normalized before they are stored or looked
// up, so two items whose ids normalize to the same key share one slot. Adding
// such an item never overwrites the stored one: Add reports the existing
// entry and the caller decides how to merge.
package index

// Option configures an Index.
type Option func(*options)

type options struct {
	idModifier func(string) string
}

// WithIDModifier normalizes ids before they are stored or looked up.
func WithIDModifier(fn func(string) string) Option {
	return func(o *options) {
		o.idModifier = fn
	}
}

// Index is an insertion-ordered collection keyed by string ids.
// It is not safe for concurrent mutation.
type Index[T any] struct {
	keyFn    func(T) string
	modifier func(string) string
	items    []T
	byKey    map[string]int
	ids      map[string]struct{}
}

// New creates an Index keyed by keyFn.
func New[T any](keyFn func(T) string, opts ...Option) *Index[T] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	return &Index[T]{
		keyFn:    keyFn,
		modifier: o.idModifier,
		items:    make([]T, 0),
		byKey:    make(map[string]int),
		ids:      make(map[string]struct{}),
	}
}

func (ix *Index[T]) key(id string) string {
	if ix.modifier == nil {
		return id
	}
	return ix.modifier(id)
}

// Add stores item under its normalized key. If the key is already taken the
// stored item is returned with added=false and item is not stored; its
// literal id is still recorded for HasID.
func (ix *Index[T]) Add(item T) (stored T, added bool) {
	id := ix.keyFn(item)
	ix.ids[id] = struct{}{}

	k := ix.key(id)
	if pos, ok := ix.byKey[k]; ok {
		return ix.items[pos], false
	}

	ix.byKey[k] = len(ix.items)
	ix.items = append(ix.items, item)
	return item, true
}

// Get returns the item stored under the normalized form of id.
func (ix *Index[T]) Get(id string) (T, bool) {
	pos, ok := ix.byKey[ix.key(id)]
	if !ok {
		var zero T
		return zero, false
	}
	return ix.items[pos], true
}

// HasID reports whether this exact literal id was added.
func (ix *Index[T]) HasID(id string) bool {
	_, ok := ix.ids[id]
	return ok
}

// HasKey reports whether any item is stored under the normalized form of id.
func (ix *Index[T]) HasKey(id string) bool {
	_, ok := ix.byKey[ix.key(id)]
	return ok
}

// Key returns the normalized form of id.
func (ix *Index[T]) Key(id string) string {
	return ix.key(id)
}

// All returns the stored items in insertion order. The slice must not be
// modified by the caller.
func (ix *Index[T]) All() []T {
	return ix.items
}

// Len returns the number of stored items.
func (ix *Index[T]) Len() int {
	return len(ix.items)
}
