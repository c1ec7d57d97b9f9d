package model

import (
	"errors"
	"strconv"
	"time"
)

// Post is a post document. It owns the top-level comment sequence.
type Post struct {
	ID          string        `json:"id" firestore:"-"`
	AuthorID    string        `json:"userId" firestore:"userId"`
	AuthorName  string        `json:"userName,omitempty" firestore:"userName"`
	AuthorImage string        `json:"userImage,omitempty" firestore:"userImage"`
	Caption     string        `json:"post" firestore:"post"`
	Media       string        `json:"media,omitempty" firestore:"media"`
	MediaType   string        `json:"mediaType,omitempty" firestore:"mediaType"`
	Likes       []string      `json:"likes" firestore:"likes"`
	Comments    []CommentNode `json:"comments" firestore:"comments"`
	CreatedAt   time.Time     `json:"createdAt" firestore:"createdAt"`
}

// PostResponse is a post enriched for display. The comment tree is sent only
// as Thread.
type PostResponse struct {
	ID            string        `json:"id"`
	AuthorID      string        `json:"userId"`
	AuthorName    string        `json:"userName,omitempty"`
	AuthorImage   string        `json:"userImage,omitempty"`
	Caption       string        `json:"post"`
	Media         string        `json:"media,omitempty"`
	MediaType     string        `json:"mediaType,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	LikeCount     int           `json:"like_count"`
	LikesLabel    string        `json:"likes_label,omitempty"`
	LikedByViewer bool          `json:"liked_by_viewer"`
	CommentCount  int           `json:"comment_count"`
	Thread        []CommentView `json:"thread"`
}

// PostSummary is a post without its comment tree, for profile listings.
type PostSummary struct {
	ID           string    `json:"id"`
	Caption      string    `json:"post"`
	Media        string    `json:"media,omitempty"`
	MediaType    string    `json:"mediaType,omitempty"`
	LikeCount    int       `json:"like_count"`
	LikesLabel   string    `json:"likes_label,omitempty"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PostListResponse is the list of a user's posts.
type PostListResponse struct {
	Posts []PostSummary `json:"posts"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Caption   string `json:"post"`
	Media     string `json:"media,omitempty"`     // Pre-uploaded media URL
	MediaType string `json:"mediaType,omitempty"` // "image" or "video"
}

// Post media constants
const (
	MaxPostCaptionLength = 2200
	MaxPostMediaSize     = 10 * 1024 * 1024 // 10MB per media
	MediaTypeImage       = "image"
	MediaTypeVideo       = "video"
)

// Post errors
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrEmptyPost        = errors.New("post needs text or media")
	ErrCaptionTooLong   = errors.New("caption too long")
	ErrInvalidMediaType = errors.New("invalid media type")
	ErrInvalidMediaURL  = errors.New("invalid media URL")
)

// LikesLabel formats a like count for display. Zero likes yields an empty label.
func LikesLabel(n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1:
		return "1 like"
	default:
		return strconv.Itoa(n) + " likes"
	}
}
