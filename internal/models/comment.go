package models

import "time"

// Comment is a comment on a post (PostgreSQL). The parent post lives in
// MongoDB, so PostID holds its ObjectID hex.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Content   string    `json:"content" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentWithAuthor is a comment annotated with its author's profile.
type CommentWithAuthor struct {
	Comment
	Author AuthorRef `json:"author"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
