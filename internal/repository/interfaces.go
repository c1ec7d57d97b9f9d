package repository

import (
	"context"

	"github.com/lucho20091/firebase-next/internal/model"
)

// PostRepository is the document store for posts and their comment trees.
type PostRepository interface {
	// Create stores a new post and sets its ID.
	Create(ctx context.Context, post *model.Post) error
	// GetByID loads the full post document. Returns model.ErrPostNotFound if absent.
	GetByID(ctx context.Context, postID string) (*model.Post, error)
	// ListByUser returns a user's posts, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Post, error)
	// ReplaceComments overwrites the post's entire comment tree in one write.
	ReplaceComments(ctx context.Context, postID string, comments []model.CommentNode) error
	// AddLike atomically adds userID to the post's likes (no-op if present).
	AddLike(ctx context.Context, postID, userID string) error
	// RemoveLike atomically removes userID from the post's likes.
	RemoveLike(ctx context.Context, postID, userID string) error
}
