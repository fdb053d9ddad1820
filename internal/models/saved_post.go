package models

import "time"

// SavedPost marks a post a user bookmarked for later.
type SavedPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index;uniqueIndex:idx_saved_post_user"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_saved_post_user"`
	CreatedAt time.Time `json:"created_at"`
}
