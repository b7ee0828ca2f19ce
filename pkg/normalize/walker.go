package normalize

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/simonhull/firebird-suite/magpie/pkg/stats"
)

// walkItem is one compilation of the flattened tree together with the
// identity derived for it.
type walkItem struct {
	raw      *stats.Compilation
	hash     string
	parent   string
	isChild  bool
	children []string
}

// walkCompilations flattens the compilation tree depth first, parents
// before children, first child first. An explicit stack keeps arbitrarily
// deep trees off the call stack.
func walkCompilations(root *stats.Compilation) []*walkItem {
	if root == nil {
		return nil
	}

	type frame struct {
		raw    *stats.Compilation
		parent *walkItem
	}

	items := make([]*walkItem, 0, 1)
	stack := []frame{{raw: root}}

	for len(stack) > 0 {
		cursor := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		item := &walkItem{
			raw:      cursor.raw,
			children: make([]string, 0),
		}
		if cursor.parent != nil {
			item.parent = cursor.parent.hash
			item.isChild = item.parent != ""
			item.hash = compilationHash(cursor.raw, cursor.parent.hash, true)
			cursor.parent.children = append(cursor.parent.children, item.hash)
		} else {
			item.hash = compilationHash(cursor.raw, "", false)
		}
		items = append(items, item)

		for i := len(cursor.raw.Children) - 1; i >= 0; i-- {
			if child := cursor.raw.Children[i]; child != nil {
				stack = append(stack, frame{raw: child, parent: item})
			}
		}
	}

	return items
}

// compilationHash returns the explicit hash of a compilation or derives a
// stable one: md5(parentHash + name) for children, where a missing name
// reads "undefined", and md5(name or "unknown") otherwise.
func compilationHash(c *stats.Compilation, parentHash string, hasParent bool) string {
	if c.Hash != "" {
		return c.Hash
	}

	if hasParent {
		return md5Hex(parentHash + c.HashName())
	}

	name := c.Name
	if name == "" {
		name = "unknown"
	}
	return md5Hex(name)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
