package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Profile is a user's public profile stored in PostgreSQL. Its identity is
// shared with the external Firebase identity record via FirebaseUID.
type Profile struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"uniqueIndex;size:30;not null"`
	FullName    string    `json:"full_name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Bio         string    `json:"bio,omitempty" gorm:"size:160"`
	Website     string    `json:"website,omitempty"`
	FirebaseUID string    `json:"-" gorm:"uniqueIndex"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

// ProfileCompact is the subset of profile fields attached to enriched
// posts, stories and comments.
type ProfileCompact struct {
	ID        uint   `json:"id,omitempty"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ToCompact returns the compact projection of a profile.
func (p *Profile) ToCompact() ProfileCompact {
	return ProfileCompact{
		ID:        p.ID,
		Username:  p.Username,
		AvatarURL: p.AvatarURL,
	}
}

// AuthorRef is the result of an author profile lookup. A missing profile is
// represented explicitly (Known=false) instead of a sentinel record, and
// consumers decide how to render it.
type AuthorRef struct {
	Known   bool           `json:"known"`
	Profile ProfileCompact `json:"profile"`
}

// FoundAuthor wraps a resolved profile.
func FoundAuthor(p ProfileCompact) AuthorRef {
	return AuthorRef{Known: true, Profile: p}
}

// UnknownAuthor is the reference used when the author's profile row could
// not be found. Rendered as the "unknown" placeholder at the HTTP layer.
func UnknownAuthor() AuthorRef {
	return AuthorRef{Known: false, Profile: ProfileCompact{Username: "unknown"}}
}

// SignupRequest defines the request body for exchanging a Firebase ID token
// for a local session, creating the profile on first sign-in.
type SignupRequest struct {
	IDToken  string `json:"id_token" validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	FullName string `json:"full_name,omitempty" validate:"omitempty,max=80"`
}

// LoginRequest defines the request body for exchanging a Firebase ID token
// for a local session on an existing profile.
type LoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// UpdateProfileRequest defines the request body for editing one's profile.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name,omitempty" validate:"omitempty,max=80"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=160"`
	Website   *string `json:"website,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
