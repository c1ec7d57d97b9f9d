// Package commenttree implements path-addressed operations on a post's nested
// comment tree: resolving a path to a node, appending replies, toggling likes,
// counting nodes and walking the tree for display.
//
// A tree is a []model.CommentNode of top-level comments. Nodes are addressed by
// a model.Path of child indices from the root. Paths are not stable identifiers;
// they are resolved against the current tree on every operation.
package commenttree
