package models

import "time"

// Like marks that a user liked a post. The composite unique index keeps the
// (post, user) pair to a single row no matter how often a like is retried.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index;uniqueIndex:idx_likes_post_user"` // MongoDB ObjectID hex
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_likes_post_user"`
	CreatedAt time.Time `json:"created_at"`
}
