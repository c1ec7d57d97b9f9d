package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lucho20091/firebase-next/internal/commenttree"
	"github.com/lucho20091/firebase-next/internal/model"
)

// memoryPostRepository is an in-process document store for development and tests.
// Documents are copied in and out, so callers see the same read-modify-write
// semantics as with a remote store.
type memoryPostRepository struct {
	mu    sync.RWMutex
	posts map[string]model.Post
	now   func() time.Time
}

// NewMemoryPostRepository creates an empty in-memory store.
func NewMemoryPostRepository() PostRepository {
	return &memoryPostRepository{
		posts: make(map[string]model.Post),
		now:   time.Now,
	}
}

func (r *memoryPostRepository) Create(_ context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = r.now().UTC()
	}
	post.Likes = nonNil(post.Likes)
	post.Comments = commenttree.Normalize(post.Comments)

	r.posts[post.ID] = copyPost(*post)
	return nil
}

func (r *memoryPostRepository) GetByID(_ context.Context, postID string) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[postID]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	out := copyPost(p)
	return &out, nil
}

func (r *memoryPostRepository) ListByUser(_ context.Context, userID string) ([]model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := []model.Post{}
	for _, p := range r.posts {
		if p.AuthorID == userID {
			posts = append(posts, copyPost(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

func (r *memoryPostRepository) ReplaceComments(_ context.Context, postID string, comments []model.CommentNode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return model.ErrPostNotFound
	}
	p.Comments = commenttree.Normalize(commenttree.Clone(comments))
	r.posts[postID] = p
	return nil
}

func (r *memoryPostRepository) AddLike(_ context.Context, postID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return model.ErrPostNotFound
	}
	if !slices.Contains(p.Likes, userID) {
		p.Likes = append(slices.Clone(p.Likes), userID)
	}
	r.posts[postID] = p
	return nil
}

func (r *memoryPostRepository) RemoveLike(_ context.Context, postID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return model.ErrPostNotFound
	}
	p.Likes = slices.DeleteFunc(slices.Clone(p.Likes), func(id string) bool { return id == userID })
	r.posts[postID] = p
	return nil
}

func copyPost(p model.Post) model.Post {
	p.Likes = nonNil(slices.Clone(p.Likes))
	p.Comments = commenttree.Normalize(commenttree.Clone(p.Comments))
	return p
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
