package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxListRows caps every list read.
const MaxListRows = 50

type Post struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	Image     *string   `json:"image" db:"image"`
	AuthorID  uuid.UUID `json:"authorId" db:"author_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type PostCounts struct {
	Likes    int `json:"likes" db:"likes"`
	Comments int `json:"comments" db:"comments"`
}

// PostView is a post with its author, derived counts and the viewer's like state.
type PostView struct {
	Post
	Author Author     `json:"author" db:"author"`
	Counts PostCounts `json:"counts" db:"counts"`
	Liked  bool       `json:"liked" db:"liked"`
}

// PostFilter selects posts for a list read. Nil AuthorIDs means every
// author; an empty non-nil slice matches nothing.
type PostFilter struct {
	AuthorIDs []uuid.UUID
	Search    string
	Viewer    *uuid.UUID
	Limit     int
}

type CreatePostInput struct {
	Content string  `json:"content" validate:"required,min=1,max=5000"`
	Image   *string `json:"image" validate:"omitempty,url"`
}

// UpdatePostInput is a partial post update; a null image removes it.
type UpdatePostInput struct {
	Content *string        `json:"content" validate:"omitempty,min=1,max=5000"`
	Image   NullableString `json:"image" validate:"omitempty,url"`
}

func (in *UpdatePostInput) Empty() bool {
	return in.Content == nil && !in.Image.Set
}
