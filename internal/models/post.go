package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a feed post stored in MongoDB. Posts are immutable after creation
// except for deletion by their author.
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  uint               `json:"author_id" bson:"author_id"`
	MediaURL  string             `json:"media_url" bson:"media_url"`
	Caption   string             `json:"caption,omitempty" bson:"caption,omitempty"`
	IsReel    bool               `json:"is_reel" bson:"is_reel"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	MediaURL string `json:"media_url" validate:"required,url"`
	Caption  string `json:"caption,omitempty" validate:"omitempty,max=2200"`
	IsReel   bool   `json:"is_reel"`
}
