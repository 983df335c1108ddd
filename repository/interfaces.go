package repository

import (
	"context"

	"github.com/google/uuid"

	models "github.com/adri-yano/social-media-app/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByIdentifier matches an email (case-insensitive) or a username.
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	GetProfile(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Profile, error)
	GetProfileByUsername(ctx context.Context, username string, viewer *uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, id uuid.UUID, input *models.UpdateUserInput) (*models.User, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	GetView(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.PostView, error)
	List(ctx context.Context, filter models.PostFilter) ([]*models.PostView, error)
	Update(ctx context.Context, id uuid.UUID, input *models.UpdatePostInput) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	GetView(ctx context.Context, id uuid.UUID) (*models.CommentView, error)
	// ListByPost returns top-level comments oldest-first with their replies.
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*models.CommentView, error)
	Update(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type LikeRepository interface {
	// Toggle flips the like and reports whether the post is now liked.
	Toggle(ctx context.Context, postID, userID uuid.UUID) (bool, error)
}

type FollowRepository interface {
	// Toggle flips the follow and reports whether follower now follows following.
	Toggle(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]*models.Author, error)
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]*models.Author, error)
	FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
