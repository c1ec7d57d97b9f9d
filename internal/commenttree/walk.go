package commenttree

import (
	"iter"
	"slices"

	"github.com/lucho20091/firebase-next/internal/model"
)

// MaxDepth is the deepest nesting shown with a reply action. Replies can be
// started on nodes at depth 0..MaxDepth-2, so rendered threads reach depth
// MaxDepth-1. The limit is a display rule; AppendChild does not check it.
const MaxDepth = 10

// Visit is one node reached by Walk.
type Visit struct {
	Node     *model.CommentNode
	Depth    int
	Path     model.Path
	CanReply bool
}

// Walk returns a pre-order traversal of nodes. Each Visit carries its own copy
// of the path, so callers may keep it after the iteration advances. The
// sequence can be ranged over any number of times; each run reads the tree as
// it is at that moment.
func Walk(nodes []model.CommentNode, maxDepth int) iter.Seq[Visit] {
	return walkFrom(nodes, maxDepth, nil)
}

// walkFrom walks a subtree whose nodes sit under prefix.
func walkFrom(nodes []model.CommentNode, maxDepth int, prefix model.Path) iter.Seq[Visit] {
	return func(yield func(Visit) bool) {
		walk(nodes, maxDepth, slices.Clip(prefix), yield)
	}
}

func walk(nodes []model.CommentNode, maxDepth int, prefix model.Path, yield func(Visit) bool) bool {
	depth := len(prefix)
	for i := range nodes {
		path := append(slices.Clip(prefix), i)
		v := Visit{
			Node:     &nodes[i],
			Depth:    depth,
			Path:     path,
			CanReply: depth < maxDepth-1,
		}
		if !yield(v) {
			return false
		}
		if !walk(nodes[i].Children, maxDepth, path, yield) {
			return false
		}
	}
	return true
}
