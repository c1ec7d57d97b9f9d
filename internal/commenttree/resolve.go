package commenttree

import (
	"fmt"

	"github.com/lucho20091/firebase-next/internal/model"
)

// Resolve walks path against root and returns a pointer to the addressed node.
// The pointer aliases the tree, so mutations through it are visible in root.
// It fails with model.ErrPathNotFound for an empty path or any out-of-range index.
func Resolve(root []model.CommentNode, path model.Path) (*model.CommentNode, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", model.ErrPathNotFound)
	}

	level := root
	for depth, idx := range path {
		if idx < 0 || idx >= len(level) {
			return nil, fmt.Errorf("%w: index %d out of range at depth %d (len %d)",
				model.ErrPathNotFound, idx, depth, len(level))
		}
		if depth == len(path)-1 {
			return &level[idx], nil
		}
		level = level[idx].Children
	}

	// unreachable: the loop returns on the last index
	return nil, model.ErrPathNotFound
}
