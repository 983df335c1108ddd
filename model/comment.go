package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Content         string     `json:"content" db:"content"`
	PostID          uuid.UUID  `json:"postId" db:"post_id"`
	AuthorID        uuid.UUID  `json:"authorId" db:"author_id"`
	ParentCommentID *uuid.UUID `json:"parentCommentId" db:"parent_comment_id"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// CommentView is a comment with its author. Top-level views carry their
// direct replies.
type CommentView struct {
	Comment
	Author  Author         `json:"author" db:"author"`
	Replies []*CommentView `json:"replies,omitempty" db:"-"`
}

type CreateCommentInput struct {
	Content         string     `json:"content" validate:"required,min=1,max=2000"`
	ParentCommentID *uuid.UUID `json:"parentCommentId"`
}

type UpdateCommentInput struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}
