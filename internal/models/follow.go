package models

import "time"

// Follow records that FollowerID follows FollowingID.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follows_pair"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follows_pair"`
	CreatedAt   time.Time `json:"created_at"`
}
