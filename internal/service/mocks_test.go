package service

import (
	"context"
	"sync"

	"github.com/lucho20091/firebase-next/internal/commenttree"
	"github.com/lucho20091/firebase-next/internal/model"
	"github.com/lucho20091/firebase-next/internal/queue"
)

// =============================================================================
// MOCK REPOSITORY
// =============================================================================
//
// Each test sets only the functions it cares about. Calls are recorded so
// tests can assert which store operations ran.

type mockPostRepository struct {
	createFn          func(ctx context.Context, post *model.Post) error
	getByIDFn         func(ctx context.Context, postID string) (*model.Post, error)
	listByUserFn      func(ctx context.Context, userID string) ([]model.Post, error)
	replaceCommentsFn func(ctx context.Context, postID string, comments []model.CommentNode) error
	addLikeFn         func(ctx context.Context, postID, userID string) error
	removeLikeFn      func(ctx context.Context, postID, userID string) error

	getCalls     int
	replaceCalls []replaceCall
	addLikes     []string
	removeLikes  []string
}

type replaceCall struct {
	PostID   string
	Comments []model.CommentNode
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	post.ID = "new-post"
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	m.getCalls++
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) ListByUser(ctx context.Context, userID string) ([]model.Post, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return []model.Post{}, nil
}

func (m *mockPostRepository) ReplaceComments(ctx context.Context, postID string, comments []model.CommentNode) error {
	m.replaceCalls = append(m.replaceCalls, replaceCall{PostID: postID, Comments: commenttree.Clone(comments)})
	if m.replaceCommentsFn != nil {
		return m.replaceCommentsFn(ctx, postID, comments)
	}
	return nil
}

func (m *mockPostRepository) AddLike(ctx context.Context, postID, userID string) error {
	m.addLikes = append(m.addLikes, userID)
	if m.addLikeFn != nil {
		return m.addLikeFn(ctx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	m.removeLikes = append(m.removeLikes, userID)
	if m.removeLikeFn != nil {
		return m.removeLikeFn(ctx, postID, userID)
	}
	return nil
}

// snapshotRepo returns a fresh deep copy of post on every load, like a remote
// document store does.
func snapshotRepo(post model.Post) *mockPostRepository {
	return &mockPostRepository{
		getByIDFn: func(ctx context.Context, postID string) (*model.Post, error) {
			if postID != post.ID {
				return nil, model.ErrPostNotFound
			}
			p := post
			p.Likes = append([]string{}, post.Likes...)
			p.Comments = commenttree.Clone(post.Comments)
			return &p, nil
		},
	}
}

// =============================================================================
// MOCK PUBLISHER
// =============================================================================

type mockPublisher struct {
	mu        sync.Mutex
	publishFn func(ctx context.Context, stream string, event queue.CommentEvent) (string, error)
	events    []queue.CommentEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.CommentEvent) (string, error) {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.publishFn != nil {
		return m.publishFn(ctx, stream, event)
	}
	return "1-0", nil
}

// =============================================================================
// FIXTURES
// =============================================================================

func node(author, text string, children ...model.CommentNode) model.CommentNode {
	if children == nil {
		children = []model.CommentNode{}
	}
	return model.CommentNode{AuthorID: author, Text: text, Likes: []string{}, Children: children}
}

// samplePost has comments a (by u1) with replies a1 and a2, and b (by u2).
func samplePost() model.Post {
	return model.Post{
		ID:       "post-1",
		AuthorID: "owner",
		Likes:    []string{},
		Comments: []model.CommentNode{
			node("u1", "a", node("u2", "a1"), node("u3", "a2")),
			node("u2", "b"),
		},
	}
}
