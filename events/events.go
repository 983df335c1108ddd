package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	PostCreated    = "post.created"
	PostDeleted    = "post.deleted"
	PostLiked      = "post.liked"
	CommentCreated = "comment.created"
	UserFollowed   = "user.followed"
)

// Event payloads
type PostCreatedEvent struct {
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type PostDeletedEvent struct {
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// PostLikedEvent is sent on every like toggle; Liked is the new state.
type PostLikedEvent struct {
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	Liked     bool      `json:"liked"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentCreatedEvent struct {
	CommentID       uuid.UUID  `json:"comment_id"`
	PostID          uuid.UUID  `json:"post_id"`
	UserID          uuid.UUID  `json:"user_id"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id,omitempty"`
	Content         string     `json:"content"`
	CreatedAt       time.Time  `json:"created_at"`
}

// UserFollowedEvent is sent on every follow toggle; Following is the new state.
type UserFollowedEvent struct {
	FollowerID  uuid.UUID `json:"follower_id"`
	FollowingID uuid.UUID `json:"following_id"`
	Following   bool      `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}
