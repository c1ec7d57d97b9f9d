package commenttree

import (
	"slices"
	"time"

	"github.com/lucho20091/firebase-next/internal/model"
)

// NewNode builds a comment node from caller input, stamped with now and with
// empty likes and children.
func NewNode(in model.CommentInput, now time.Time) model.CommentNode {
	return model.CommentNode{
		AuthorID:    in.Author.ID,
		AuthorName:  in.Author.Name,
		AuthorImage: in.Author.Image,
		Text:        in.Text,
		CreatedAt:   now,
		Likes:       []string{},
		Children:    []model.CommentNode{},
	}
}

// AppendChild appends child to node's replies. Existing replies are untouched.
func AppendChild(node *model.CommentNode, child model.CommentNode) {
	if node == nil {
		return
	}
	node.Children = append(node.Children, child)
}

// ToggleLike removes userID from node's likes if present, otherwise appends it.
// It returns whether userID likes the node afterwards.
func ToggleLike(node *model.CommentNode, userID string) bool {
	if node == nil {
		return false
	}
	if i := slices.Index(node.Likes, userID); i >= 0 {
		node.Likes = slices.Delete(node.Likes, i, i+1)
		return false
	}
	node.Likes = append(node.Likes, userID)
	return true
}

// Normalize fills in missing likes and children (documents may omit them) and
// drops duplicate like entries, keeping first-seen order. It returns a non-nil
// slice and mutates nodes in place.
func Normalize(nodes []model.CommentNode) []model.CommentNode {
	if nodes == nil {
		return []model.CommentNode{}
	}
	for i := range nodes {
		n := &nodes[i]
		n.Likes = dedupe(n.Likes)
		n.Children = Normalize(n.Children)
	}
	return nodes
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Clone returns a deep copy of nodes.
func Clone(nodes []model.CommentNode) []model.CommentNode {
	if nodes == nil {
		return nil
	}
	out := make([]model.CommentNode, len(nodes))
	for i, n := range nodes {
		n.Likes = slices.Clone(n.Likes)
		n.Children = Clone(n.Children)
		out[i] = n
	}
	return out
}
