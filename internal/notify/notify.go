// Package notify delivers one-way notifications after successful
// mutations. Delivery is fire-and-forget: a failing sink never affects the
// mutation's reported success.
package notify

import (
	"context"
	"fmt"
)

// An Event describes something a user did to another user's content.
type Event struct {
	Type        string // models.NotificationLike, Comment or Follow
	ActorID     uint
	RecipientID uint
	TargetID    string // post id, comment id or profile id
	TargetType  string // "post", "comment", "profile"
	Preview     string // caption or comment text, truncated for the message
}

// Sink receives events emitted after successful mutations. Implementations
// must swallow their own failures.
type Sink interface {
	Notify(ctx context.Context, event Event)
}

// NopSink discards all events. Used where notifications are disabled and in
// tests.
type NopSink struct{}

func (NopSink) Notify(context.Context, Event) {}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// message composes the user-facing title and body for an event.
func message(actorUsername string, e Event) (title, body string) {
	switch e.Type {
	case "comment":
		title = fmt.Sprintf("%s commented on your post", actorUsername)
		body = fmt.Sprintf("%q", truncate(e.Preview, 100))
	case "follow":
		title = fmt.Sprintf("%s started following you", actorUsername)
		body = "Check out their profile!"
	default: // like
		title = fmt.Sprintf("%s liked your post", actorUsername)
		if e.Preview != "" {
			body = fmt.Sprintf("%q", truncate(e.Preview, 50))
		} else {
			body = "Check it out!"
		}
	}
	return title, body
}
