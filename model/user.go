package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email,omitempty" db:"email"`
	Name         *string   `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Bio          *string   `json:"bio" db:"bio"`
	Avatar       *string   `json:"avatar" db:"avatar"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Author is the public summary attached to posts, comments and follow lists.
type Author struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Username string    `json:"username" db:"username"`
	Name     *string   `json:"name" db:"name"`
	Avatar   *string   `json:"avatar" db:"avatar"`
}

// Summary returns the public author fields of u.
func (u *User) Summary() Author {
	return Author{ID: u.ID, Username: u.Username, Name: u.Name, Avatar: u.Avatar}
}

type ProfileCounts struct {
	Followers int `json:"followers" db:"followers"`
	Following int `json:"following" db:"following"`
	Posts     int `json:"posts" db:"posts"`
}

// Profile is a user with derived counts and the viewer's follow state.
type Profile struct {
	User
	Counts      ProfileCounts `json:"counts" db:"counts"`
	IsFollowing bool          `json:"isFollowing" db:"is_following"`
}

// ForViewer hides the email unless viewer is the profile owner.
func (p *Profile) ForViewer(viewer *uuid.UUID) *Profile {
	if viewer == nil || *viewer != p.ID {
		p.Email = ""
	}
	return p
}

// UpdateUserInput is a partial profile update. Absent fields are kept and
// explicit nulls clear the stored value.
type UpdateUserInput struct {
	Name   NullableString `json:"name" validate:"omitempty,min=1,max=50"`
	Bio    NullableString `json:"bio" validate:"omitempty,max=500"`
	Avatar NullableString `json:"avatar" validate:"omitempty,url"`
}

// Empty reports whether the update touches no field.
func (in *UpdateUserInput) Empty() bool {
	return !in.Name.Set && !in.Bio.Set && !in.Avatar.Set
}

type RegisterInput struct {
	Username string  `json:"username" validate:"required,username"`
	Name     *string `json:"name" validate:"omitempty,min=1,max=50"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=100"`
}

type LoginInput struct {
	Identifier string `json:"identifier" validate:"required,min=3,max=255"`
	Password   string `json:"password" validate:"required,min=8,max=100"`
}
