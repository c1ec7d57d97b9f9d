package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the comment stream
const (
	EventCommentAdded = "comment_added"
	EventReplyAdded   = "reply_added"
	EventCommentLiked = "comment_liked"
	EventPostLiked    = "post_liked"
)

// Stream names
const (
	StreamComments = "stream:comments"
)

// Consumer group name for notification workers
const (
	ConsumerGroupNotifications = "notification_workers"
)

// CommentEvent is published after a successful write to a post's comments or
// likes. Path addresses the comment acted on: the new comment for added and
// reply events, the liked comment for comment_liked, empty for post_liked.
type CommentEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	PostID    string `json:"post_id"`
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name,omitempty"`

	// RecipientID is filled when the publisher already knows who to notify.
	// Workers resolve it from the post otherwise.
	RecipientID string `json:"recipient_id,omitempty"`

	Path []int  `json:"path,omitempty"`
	Text string `json:"text,omitempty"`
}

// NewCommentEvent stamps an event with the current time.
func NewCommentEvent(eventType, postID, actorID string, path []int) CommentEvent {
	return CommentEvent{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		ActorID:   actorID,
		Path:      path,
	}
}

// ToMap converts the event to field-value pairs for XADD. The full event is
// carried as JSON in "data".
func (e CommentEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseCommentEvent parses a CommentEvent from Redis stream message values.
func ParseCommentEvent(values map[string]interface{}) (CommentEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return CommentEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event CommentEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return CommentEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
