package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoryTTL is the window during which a story is active.
const StoryTTL = 24 * time.Hour

// Story is an ephemeral post stored in MongoDB. A story is active while
// ExpiresAt is in the future; expiry is a read-time filter, expired rows
// are only removed by the purge maintenance call.
type Story struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  uint               `json:"author_id" bson:"author_id"`
	MediaURL  string             `json:"media_url" bson:"media_url"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
}

// Active reports whether the story has not yet expired at t.
func (s *Story) Active(t time.Time) bool {
	return t.Before(s.ExpiresAt)
}
