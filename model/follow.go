package models

import (
	"time"

	"github.com/google/uuid"
)

type Follow struct {
	FollowerID  uuid.UUID `json:"followerId" db:"follower_id"`   // User who is following
	FollowingID uuid.UUID `json:"followingId" db:"following_id"` // User being followed
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
