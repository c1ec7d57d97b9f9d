package commenttree

import (
	"slices"

	"github.com/lucho20091/firebase-next/internal/model"
)

// BuildThread renders nodes into nested views for viewerID (empty for an
// anonymous viewer). It is driven by Walk, so every view carries the path
// the client must send back to reply to or like that comment.
func BuildThread(nodes []model.CommentNode, viewerID string) []model.CommentView {
	return buildViews(nodes, nil, viewerID)
}

// ViewAt renders the node at path together with its replies.
func ViewAt(root []model.CommentNode, path model.Path, viewerID string) (model.CommentView, error) {
	node, err := Resolve(root, path)
	if err != nil {
		return model.CommentView{}, err
	}
	depth := path.Depth()
	v := Visit{Node: node, Depth: depth, Path: slices.Clone(path), CanReply: depth < MaxDepth-1}
	view := newView(v, viewerID)
	view.Replies = buildViews(node.Children, v.Path, viewerID)
	return view, nil
}

func buildViews(nodes []model.CommentNode, prefix model.Path, viewerID string) []model.CommentView {
	base := len(prefix)
	roots := []model.CommentView{}
	// stack[d] is the reply list that receives views at depth base+d
	stack := []*[]model.CommentView{&roots}

	for v := range walkFrom(nodes, MaxDepth, prefix) {
		d := v.Depth - base
		stack = stack[:d+1]
		parent := stack[d]
		*parent = append(*parent, newView(v, viewerID))
		last := &(*parent)[len(*parent)-1]
		stack = append(stack, &last.Replies)
	}
	return roots
}

func newView(v Visit, viewerID string) model.CommentView {
	n := v.Node
	name := n.AuthorName
	if name == "" {
		name = model.AnonymousName
	}
	return model.CommentView{
		Path:          v.Path,
		Depth:         v.Depth,
		AuthorID:      n.AuthorID,
		AuthorName:    name,
		AuthorImage:   n.AuthorImage,
		Text:          n.Text,
		CreatedAt:     n.CreatedAt,
		LikeCount:     len(n.Likes),
		LikesLabel:    model.LikesLabel(len(n.Likes)),
		LikedByViewer: viewerID != "" && slices.Contains(n.Likes, viewerID),
		CanReply:      v.CanReply,
		Replies:       []model.CommentView{},
	}
}
