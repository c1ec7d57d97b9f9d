package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/lucho20091/firebase-next/internal/commenttree"
	"github.com/lucho20091/firebase-next/internal/model"
	"github.com/lucho20091/firebase-next/internal/queue"
	"github.com/lucho20091/firebase-next/internal/repository"
)

type PostService struct {
	postRepo  repository.PostRepository
	publisher queue.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewPostService(postRepo repository.PostRepository, publisher queue.Publisher, log *zap.Logger) *PostService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &PostService{
		postRepo:  postRepo,
		publisher: publisher,
		log:       log.With(zap.String("component", "post_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new post with an empty comment tree.
func (s *PostService) Create(ctx context.Context, author model.Author, req model.CreatePostRequest) (*model.PostResponse, error) {
	caption := strings.TrimSpace(req.Caption)
	if utf8.RuneCountInString(caption) > model.MaxPostCaptionLength {
		return nil, model.ErrCaptionTooLong
	}

	media := strings.TrimSpace(req.Media)
	mediaType := req.MediaType
	if media == "" {
		mediaType = ""
		if caption == "" {
			return nil, model.ErrEmptyPost
		}
	} else {
		if mediaType != model.MediaTypeImage && mediaType != model.MediaTypeVideo {
			return nil, model.ErrInvalidMediaType
		}
		if !isHTTPURL(media) {
			return nil, model.ErrInvalidMediaURL
		}
	}

	post := &model.Post{
		AuthorID:    author.ID,
		AuthorName:  author.Name,
		AuthorImage: author.Image,
		Caption:     caption,
		Media:       media,
		MediaType:   mediaType,
		Likes:       []string{},
		Comments:    []model.CommentNode{},
		CreatedAt:   s.now(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.log.Info("post created", zap.String("post_id", post.ID), zap.String("user_id", author.ID))
	return toPostResponse(post, author.ID), nil
}

// GetByID returns the post with counts and its rendered comment thread.
// viewerID may be empty.
func (s *PostService) GetByID(ctx context.Context, postID, viewerID string) (*model.PostResponse, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return toPostResponse(post, viewerID), nil
}

// ListByUser returns a user's posts, newest first, without comment threads.
func (s *PostService) ListByUser(ctx context.Context, userID string) (*model.PostListResponse, error) {
	posts, err := s.postRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	summaries := make([]model.PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, model.PostSummary{
			ID:           p.ID,
			Caption:      p.Caption,
			Media:        p.Media,
			MediaType:    p.MediaType,
			LikeCount:    len(p.Likes),
			LikesLabel:   model.LikesLabel(len(p.Likes)),
			CommentCount: commenttree.CountTotal(p.Comments),
			CreatedAt:    p.CreatedAt,
		})
	}
	return &model.PostListResponse{Posts: summaries}, nil
}

// ToggleLike likes or unlikes the post for the actor. Post likes go through the
// store's atomic add/remove, so unlike comment likes they do not race with
// comment writes.
func (s *PostService) ToggleLike(ctx context.Context, postID string, actor model.Author) (*model.ToggleLikeResponse, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked := slices.Contains(post.Likes, actor.ID)
	count := len(post.Likes)
	if liked {
		err = s.postRepo.RemoveLike(ctx, postID, actor.ID)
		count--
	} else {
		err = s.postRepo.AddLike(ctx, postID, actor.ID)
		count++
	}
	if errors.Is(err, model.ErrPostNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("toggle post like: %w", err)
	}

	if !liked {
		event := queue.NewCommentEvent(queue.EventPostLiked, postID, actor.ID, nil)
		event.ActorName = actor.Name
		event.RecipientID = post.AuthorID
		if _, err := s.publisher.Publish(ctx, queue.StreamComments, event); err != nil {
			s.log.Warn("publish post_liked failed", zap.String("post_id", postID), zap.Error(err))
		}
	}

	return &model.ToggleLikeResponse{Liked: !liked, LikeCount: count}, nil
}

func toPostResponse(p *model.Post, viewerID string) *model.PostResponse {
	likes := len(p.Likes)
	return &model.PostResponse{
		ID:            p.ID,
		AuthorID:      p.AuthorID,
		AuthorName:    p.AuthorName,
		AuthorImage:   p.AuthorImage,
		Caption:       p.Caption,
		Media:         p.Media,
		MediaType:     p.MediaType,
		CreatedAt:     p.CreatedAt,
		LikeCount:     likes,
		LikesLabel:    model.LikesLabel(likes),
		LikedByViewer: viewerID != "" && slices.Contains(p.Likes, viewerID),
		CommentCount:  commenttree.CountTotal(p.Comments),
		Thread:        commenttree.BuildThread(p.Comments, viewerID),
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
