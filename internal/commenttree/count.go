package commenttree

import "github.com/lucho20091/firebase-next/internal/model"

// CountTotal returns the number of comments at every depth.
func CountTotal(nodes []model.CommentNode) int {
	total := len(nodes)
	for i := range nodes {
		total += CountTotal(nodes[i].Children)
	}
	return total
}
