package service

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// messageSender is the part of *messaging.Client used for pushes.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier pushes notifications through Firebase Cloud Messaging.
//
// Clients subscribe their device tokens to the topic "user_<id>" after sign-in,
// so the backend addresses a user without storing tokens.
type FCMNotifier struct {
	client messageSender
	log    *zap.Logger
}

func NewFCMNotifier(client *messaging.Client, log *zap.Logger) *FCMNotifier {
	return &FCMNotifier{client: client, log: log.With(zap.String("component", "fcm"))}
}

// UserTopic is the FCM topic a user's devices subscribe to.
func UserTopic(userID string) string {
	return "user_" + userID
}

func (n *FCMNotifier) Notify(ctx context.Context, userID, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Topic: UserTopic(userID),
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{Title: title, Body: body},
		},
	}

	id, err := n.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("send to topic %s: %w", message.Topic, err)
	}
	n.log.Debug("push sent", zap.String("topic", message.Topic), zap.String("message_id", id))
	return nil
}
