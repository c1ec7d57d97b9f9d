package repository

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lucho20091/firebase-next/internal/model"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"grpc not found", status.Error(codes.NotFound, "no document"), true},
		{"wrapped not found", fmt.Errorf("get: %w", status.Error(codes.NotFound, "gone")), true},
		{"permission denied", status.Error(codes.PermissionDenied, "nope"), false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFound(tt.err); got != tt.want {
				t.Errorf("isNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrepareForWrite(t *testing.T) {
	p := &model.Post{
		ID: "p1",
		Comments: []model.CommentNode{
			{AuthorID: "u1", Text: "hi", Children: []model.CommentNode{{AuthorID: "u2", Text: "yo"}}},
		},
	}

	prepareForWrite(p)

	if p.Likes == nil {
		t.Error("likes should be an empty slice, not nil")
	}
	c := p.Comments[0]
	if c.Likes == nil || c.Children[0].Likes == nil || c.Children[0].Children == nil {
		t.Errorf("nested slices not normalized: %+v", c)
	}
}

func TestNewFirestorePostRepository_DefaultCollection(t *testing.T) {
	repo := NewFirestorePostRepository(nil, "").(*firestorePostRepository)
	if repo.collection != DefaultPostCollection {
		t.Errorf("collection = %q, want %q", repo.collection, DefaultPostCollection)
	}
}
