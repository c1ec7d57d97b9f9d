package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lucho20091/firebase-next/internal/commenttree"
	"github.com/lucho20091/firebase-next/internal/model"
)

// DefaultPostCollection is the Firestore collection holding post documents.
const DefaultPostCollection = "posts"

// Firestore field paths used in partial updates and queries.
const (
	fieldAuthorID = "userId"
	fieldLikes    = "likes"
	fieldComments = "comments"
)

type firestorePostRepository struct {
	client     *firestore.Client
	collection string
}

// NewFirestorePostRepository stores posts as documents in the given collection.
func NewFirestorePostRepository(client *firestore.Client, collection string) PostRepository {
	if collection == "" {
		collection = DefaultPostCollection
	}
	return &firestorePostRepository{client: client, collection: collection}
}

func (r *firestorePostRepository) posts() *firestore.CollectionRef {
	return r.client.Collection(r.collection)
}

// Create adds a document with a generated ID.
func (r *firestorePostRepository) Create(ctx context.Context, post *model.Post) error {
	ref := r.posts().NewDoc()
	prepareForWrite(post)

	if _, err := ref.Create(ctx, post); err != nil {
		return fmt.Errorf("create post document: %w", err)
	}
	post.ID = ref.ID
	return nil
}

// GetByID reads the post document and normalizes its comment tree.
func (r *firestorePostRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	if postID == "" {
		return nil, model.ErrPostNotFound
	}
	snap, err := r.posts().Doc(postID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("get post document: %w", err)
	}
	return decodePost(snap)
}

// ListByUser queries by author and sorts in memory, so no composite index is needed.
func (r *firestorePostRepository) ListByUser(ctx context.Context, userID string) ([]model.Post, error) {
	it := r.posts().Where(fieldAuthorID, "==", userID).Documents(ctx)
	defer it.Stop()

	posts := []model.Post{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		p, err := decodePost(snap)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// ReplaceComments overwrites the whole comments field. It is a plain update,
// not a transaction: a concurrent writer's change between load and this call
// is lost.
func (r *firestorePostRepository) ReplaceComments(ctx context.Context, postID string, comments []model.CommentNode) error {
	_, err := r.posts().Doc(postID).Update(ctx, []firestore.Update{
		{Path: fieldComments, Value: commenttree.Normalize(comments)},
	})
	if err != nil {
		if isNotFound(err) {
			return model.ErrPostNotFound
		}
		return fmt.Errorf("update comments: %w", err)
	}
	return nil
}

func (r *firestorePostRepository) AddLike(ctx context.Context, postID, userID string) error {
	return r.updateLikes(ctx, postID, firestore.ArrayUnion(userID))
}

func (r *firestorePostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	return r.updateLikes(ctx, postID, firestore.ArrayRemove(userID))
}

func (r *firestorePostRepository) updateLikes(ctx context.Context, postID string, value interface{}) error {
	_, err := r.posts().Doc(postID).Update(ctx, []firestore.Update{
		{Path: fieldLikes, Value: value},
	})
	if err != nil {
		if isNotFound(err) {
			return model.ErrPostNotFound
		}
		return fmt.Errorf("update likes: %w", err)
	}
	return nil
}

func decodePost(snap *firestore.DocumentSnapshot) (*model.Post, error) {
	var p model.Post
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode post %s: %w", snap.Ref.ID, err)
	}
	p.ID = snap.Ref.ID
	p.Likes = nonNil(p.Likes)
	p.Comments = commenttree.Normalize(p.Comments)
	return &p, nil
}

// prepareForWrite replaces nil slices, which Firestore would store as null.
func prepareForWrite(p *model.Post) {
	p.Likes = nonNil(p.Likes)
	p.Comments = commenttree.Normalize(p.Comments)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
