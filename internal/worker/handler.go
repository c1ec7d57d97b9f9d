package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lucho20091/firebase-next/internal/commenttree"
	"github.com/lucho20091/firebase-next/internal/model"
	"github.com/lucho20091/firebase-next/internal/queue"
)

// PostReader loads the post an event refers to when the event does not name
// its recipient.
type PostReader interface {
	GetByID(ctx context.Context, postID string) (*model.Post, error)
}

// Notifier delivers a push notification to every device of a user.
type Notifier interface {
	Notify(ctx context.Context, userID, title, body string, data map[string]string) error
}

// Handler turns comment events into push notifications.
type Handler struct {
	posts    PostReader
	notifier Notifier
	log      *zap.Logger
}

func NewHandler(posts PostReader, notifier Notifier, log *zap.Logger) *Handler {
	return &Handler{posts: posts, notifier: notifier, log: log.With(zap.String("component", "worker_handler"))}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.CommentEvent) error {
	startTime := time.Now()

	title, body, ok := describe(event)
	if !ok {
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	recipient, err := h.recipient(ctx, event)
	if err != nil {
		return err
	}
	// Don't notify users about their own actions
	if recipient == "" || recipient == event.ActorID {
		h.log.Debug("skipping notification", zap.String("type", event.Type), zap.String("post_id", event.PostID))
		return nil
	}

	data := map[string]string{
		"type":     event.Type,
		"post_id":  event.PostID,
		"actor_id": event.ActorID,
		"path":     formatPath(event.Path),
	}
	if err := h.notifier.Notify(ctx, recipient, title, body, data); err != nil {
		return fmt.Errorf("notify %s: %w", recipient, err)
	}

	h.log.Info("notification sent",
		zap.String("type", event.Type),
		zap.String("post_id", event.PostID),
		zap.String("recipient", recipient),
		zap.Duration("duration", time.Since(startTime)),
	)
	return nil
}

// recipient is the user an event concerns: the post author for new comments
// and post likes, the parent comment's author for replies and the liked
// comment's author for comment likes.
func (h *Handler) recipient(ctx context.Context, event queue.CommentEvent) (string, error) {
	if event.RecipientID != "" {
		return event.RecipientID, nil
	}

	post, err := h.posts.GetByID(ctx, event.PostID)
	if errors.Is(err, model.ErrPostNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load post %s: %w", event.PostID, err)
	}

	var target model.Path
	switch event.Type {
	case queue.EventReplyAdded:
		if len(event.Path) > 1 {
			target = model.Path(event.Path[:len(event.Path)-1])
		}
	case queue.EventCommentLiked:
		target = model.Path(event.Path)
	}
	if len(target) == 0 {
		return post.AuthorID, nil
	}

	node, err := commenttree.Resolve(post.Comments, target)
	if err != nil {
		// The tree changed shape since the event; nobody to notify.
		return "", nil
	}
	return node.AuthorID, nil
}

func describe(event queue.CommentEvent) (title, body string, ok bool) {
	actor := event.ActorName
	if actor == "" {
		actor = "Someone"
	}
	switch event.Type {
	case queue.EventCommentAdded:
		return "New comment", actor + " commented on your post", true
	case queue.EventReplyAdded:
		return "New reply", actor + " replied to your comment", true
	case queue.EventCommentLiked:
		return "New like", actor + " liked your comment", true
	case queue.EventPostLiked:
		return "New like", actor + " liked your post", true
	}
	return "", "", false
}

// formatPath renders [0 2 1] as "0.2.1" for the data payload.
func formatPath(path []int) string {
	parts := make([]string, len(path))
	for i, idx := range path {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}
