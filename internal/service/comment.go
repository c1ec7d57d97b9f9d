package service

import (
	"context"
	"errors"
	"fmt"
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

// CommentService applies comment operations to a post's comment tree.
//
// Every mutation is load, change in memory, write the whole tree back. There is
// no version check between the load and the write, so two concurrent mutations
// on the same post race and the later write wins.
type CommentService struct {
	posts     repository.PostRepository
	publisher queue.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewCommentService(posts repository.PostRepository, publisher queue.Publisher, log *zap.Logger) *CommentService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &CommentService{
		posts:     posts,
		publisher: publisher,
		log:       log.With(zap.String("component", "comment_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AddComment appends a top-level comment to the post.
func (s *CommentService) AddComment(ctx context.Context, postID string, author model.Author, text string) (*model.CommentResponse, error) {
	return s.appendAt(ctx, postID, nil, author, text)
}

// AddReply appends a reply under the comment at parent.
func (s *CommentService) AddReply(ctx context.Context, postID string, parent model.Path, author model.Author, text string) (*model.CommentResponse, error) {
	if len(parent) == 0 {
		return nil, fmt.Errorf("%w: empty path", model.ErrPathNotFound)
	}
	return s.appendAt(ctx, postID, parent, author, text)
}

// appendAt appends a new node under parent; an empty parent is the post's
// top-level sequence.
func (s *CommentService) appendAt(ctx context.Context, postID string, parent model.Path, author model.Author, text string) (*model.CommentResponse, error) {
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}

	var created model.Path
	post, err := s.mutate(ctx, postID, func(comments *[]model.CommentNode, now time.Time) error {
		child := commenttree.NewNode(model.CommentInput{Author: author, Text: text}, now)
		if len(parent) == 0 {
			*comments = append(*comments, child)
			created = model.Path{len(*comments) - 1}
			return nil
		}
		node, err := commenttree.Resolve(*comments, parent)
		if err != nil {
			return err
		}
		commenttree.AppendChild(node, child)
		created = append(slices.Clone(parent), len(node.Children)-1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err := commenttree.ViewAt(post.Comments, created, author.ID)
	if err != nil {
		return nil, err
	}

	eventType := queue.EventCommentAdded
	recipient := post.AuthorID
	if len(parent) > 0 {
		eventType = queue.EventReplyAdded
		if p, err := commenttree.Resolve(post.Comments, parent); err == nil {
			recipient = p.AuthorID
		}
	}
	event := queue.NewCommentEvent(eventType, postID, author.ID, created)
	event.ActorName = author.Name
	event.RecipientID = recipient
	event.Text = text
	s.publish(ctx, event)

	return &model.CommentResponse{
		Comment: view,
		Total:   commenttree.CountTotal(post.Comments),
	}, nil
}

// ToggleLike flips the actor's like on the comment at path.
func (s *CommentService) ToggleLike(ctx context.Context, postID string, path model.Path, actor model.Author) (*model.ToggleLikeResponse, error) {
	var resp model.ToggleLikeResponse
	var recipient string
	_, err := s.mutate(ctx, postID, func(comments *[]model.CommentNode, _ time.Time) error {
		node, err := commenttree.Resolve(*comments, path)
		if err != nil {
			return err
		}
		resp.Liked = commenttree.ToggleLike(node, actor.ID)
		resp.LikeCount = len(node.Likes)
		recipient = node.AuthorID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.Liked {
		event := queue.NewCommentEvent(queue.EventCommentLiked, postID, actor.ID, slices.Clone(path))
		event.ActorName = actor.Name
		event.RecipientID = recipient
		s.publish(ctx, event)
	}
	return &resp, nil
}

// Thread returns the post's comments as nested views for viewerID.
func (s *CommentService) Thread(ctx context.Context, postID, viewerID string) (*model.ThreadResponse, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &model.ThreadResponse{
		PostID:   post.ID,
		Total:    commenttree.CountTotal(post.Comments),
		Comments: commenttree.BuildThread(post.Comments, viewerID),
	}, nil
}

// mutate loads the post, applies fn to a fresh copy of its tree and writes the
// whole tree back. Nothing is written when fn fails.
func (s *CommentService) mutate(ctx context.Context, postID string, fn func(comments *[]model.CommentNode, now time.Time) error) (*model.Post, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments := commenttree.Normalize(post.Comments)
	if err := fn(&comments, s.now()); err != nil {
		return nil, err
	}

	if err := s.posts.ReplaceComments(ctx, postID, comments); err != nil {
		s.log.Error("replace comments failed", zap.String("post_id", postID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", model.ErrWriteFailed, err)
	}
	post.Comments = comments
	return post, nil
}

func (s *CommentService) load(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if errors.Is(err, model.ErrPostNotFound) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrPostNotFound, err)
	}
	return post, nil
}

// cleanText trims surrounding whitespace. The body is plain text and is stored
// as written; escaping is up to whoever renders it.
func cleanText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", model.ErrContentRequired
	}
	if utf8.RuneCountInString(text) > model.MaxCommentLength {
		return "", model.ErrContentTooLong
	}
	return text, nil
}

// publish is best effort; the write has already succeeded.
func (s *CommentService) publish(ctx context.Context, event queue.CommentEvent) {
	msgID, err := s.publisher.Publish(ctx, queue.StreamComments, event)
	if err != nil {
		s.log.Warn("publish event failed", zap.String("type", event.Type), zap.String("post_id", event.PostID), zap.Error(err))
		return
	}
	if msgID != "" {
		s.log.Debug("published event", zap.String("type", event.Type), zap.String("msg_id", msgID))
	}
}
