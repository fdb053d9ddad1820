package notify

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/v4/messaging"
	"github.com/lumagram/backend/internal/models"
	"github.com/lumagram/backend/internal/repositories"
)

// Pusher sends a push message addressed to a recipient's device topic.
type Pusher interface {
	Push(ctx context.Context, recipientID uint, title, body string) error
}

// Service is the production Sink: it resolves the actor's profile, persists
// a Notification row, and pushes best-effort via FCM. Every failure is
// logged and swallowed.
type Service struct {
	profiles      repositories.ProfileRepository
	notifications repositories.NotificationRepository
	pusher        Pusher
}

// NewService creates a notification service. pusher may be nil when push
// delivery is disabled.
func NewService(profiles repositories.ProfileRepository, notifications repositories.NotificationRepository, pusher Pusher) *Service {
	return &Service{
		profiles:      profiles,
		notifications: notifications,
		pusher:        pusher,
	}
}

// Notify implements Sink.
func (s *Service) Notify(ctx context.Context, event Event) {
	actor, err := s.profiles.GetProfileByID(event.ActorID)
	if err != nil {
		log.Printf("notify: resolving actor %d: %v", event.ActorID, err)
		return
	}

	title, body := message(actor.Username, event)

	notification := &models.Notification{
		Type:        event.Type,
		ActorID:     event.ActorID,
		RecipientID: event.RecipientID,
		TargetID:    event.TargetID,
		TargetType:  event.TargetType,
		Message:     title,
	}
	if err := s.notifications.CreateNotification(notification); err != nil {
		log.Printf("notify: persisting %s notification for user %d: %v", event.Type, event.RecipientID, err)
	}

	if s.pusher == nil {
		return
	}
	if err := s.pusher.Push(ctx, event.RecipientID, title, body); err != nil {
		log.Printf("notify: pushing %s notification to user %d: %v", event.Type, event.RecipientID, err)
	}
}

// FCMPusher implements Pusher on Firebase Cloud Messaging. Each user's
// devices subscribe to the topic "user-<id>".
type FCMPusher struct {
	client *messaging.Client
}

// NewFCMPusher creates a Pusher backed by the given FCM client.
func NewFCMPusher(client *messaging.Client) *FCMPusher {
	return &FCMPusher{client: client}
}

func (p *FCMPusher) Push(ctx context.Context, recipientID uint, title, body string) error {
	_, err := p.client.Send(ctx, &messaging.Message{
		Topic: fmt.Sprintf("user-%d", recipientID),
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	})
	return err
}
