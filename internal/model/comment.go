package model

import (
	"errors"
	"time"
)

// CommentNode is one comment or reply at any depth of a post's comment tree.
// Field names match the stored document layout.
type CommentNode struct {
	AuthorID    string        `json:"userId" firestore:"userId"`
	AuthorName  string        `json:"userName,omitempty" firestore:"userName"`
	AuthorImage string        `json:"userImage,omitempty" firestore:"userImage"`
	Text        string        `json:"comment" firestore:"comment"`
	CreatedAt   time.Time     `json:"createdAt" firestore:"createdAt"`
	Likes       []string      `json:"likes" firestore:"likes"`
	Children    []CommentNode `json:"comments" firestore:"comments"`
}

// Path addresses a node: Path[0] selects a top-level comment, Path[1] one of its
// replies, and so on.
type Path []int

// Depth returns the depth of the addressed node (top-level = 0).
func (p Path) Depth() int {
	return len(p) - 1
}

// CommentInput is the caller-supplied data for a new comment or reply.
type CommentInput struct {
	Author Author
	Text   string
}

// CreateCommentRequest is the request body for creating a top-level comment.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// CreateReplyRequest is the request body for replying to the comment at Path.
type CreateReplyRequest struct {
	Path Path   `json:"path"`
	Text string `json:"text"`
}

// ToggleCommentLikeRequest is the request body for liking/unliking the comment at Path.
type ToggleCommentLikeRequest struct {
	Path Path `json:"path"`
}

// ToggleLikeResponse reports the like state after a toggle.
type ToggleLikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// CommentResponse is returned after a comment or reply is stored.
type CommentResponse struct {
	Comment CommentView `json:"comment"`
	Total   int         `json:"total"`
}

// CommentView is a rendered comment with the addressing data a client needs to
// act on it.
type CommentView struct {
	Path          Path          `json:"path"`
	Depth         int           `json:"depth"`
	AuthorID      string        `json:"user_id"`
	AuthorName    string        `json:"user_name"`
	AuthorImage   string        `json:"user_image"`
	Text          string        `json:"comment"`
	CreatedAt     time.Time     `json:"created_at"`
	LikeCount     int           `json:"like_count"`
	LikesLabel    string        `json:"likes_label,omitempty"`
	LikedByViewer bool          `json:"liked_by_viewer"`
	CanReply      bool          `json:"can_reply"`
	Replies       []CommentView `json:"replies"`
}

// ThreadResponse is the comment thread of a post.
type ThreadResponse struct {
	PostID   string        `json:"post_id"`
	Total    int           `json:"total"`
	Comments []CommentView `json:"comments"`
}

// Comment constraints
const (
	MaxCommentLength = 2200 // Same as caption limit
	AnonymousName    = "Anonymous"
)

// Comment errors
var (
	ErrPathNotFound    = errors.New("comment path not found")
	ErrContentRequired = errors.New("comment content is required")
	ErrContentTooLong  = errors.New("comment content too long")
	ErrWriteFailed     = errors.New("comment tree write failed")
)
