package models

import (
	"time"

	"github.com/google/uuid"
)

type Like struct {
	PostID    uuid.UUID `json:"postId" db:"post_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
