package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	models "github.com/adri-yano/social-media-app/model"
)

type followRepository struct {
	db    *sqlx.DB
	pairs pairToggle
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{
		db:    db,
		pairs: pairToggle{db: db, table: "follows", left: "follower_id", right: "following_id"},
	}
}

// Toggle follows or unfollows a user. A missing user yields ErrNotFound and
// a self-follow yields ErrInvalid.
func (r *followRepository) Toggle(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	return r.pairs.toggle(ctx, followerID, followingID)
}

// ListFollowers returns the users following userID, most recent first.
func (r *followRepository) ListFollowers(ctx context.Context, userID uuid.UUID) ([]*models.Author, error) {
	query := `
		SELECT u.id, u.username, u.name, u.avatar
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC, f.follower_id DESC
		LIMIT $2
	`
	return r.listAuthors(ctx, query, userID)
}

// ListFollowing returns the users userID follows, most recent first.
func (r *followRepository) ListFollowing(ctx context.Context, userID uuid.UUID) ([]*models.Author, error) {
	query := `
		SELECT u.id, u.username, u.name, u.avatar
		FROM follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC, f.following_id DESC
		LIMIT $2
	`
	return r.listAuthors(ctx, query, userID)
}

func (r *followRepository) listAuthors(ctx context.Context, query string, userID uuid.UUID) ([]*models.Author, error) {
	authors := []*models.Author{}
	if err := r.db.SelectContext(ctx, &authors, query, userID, models.MaxListRows); err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", mapError(err))
	}
	return authors, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	query := `SELECT following_id FROM follows WHERE follower_id = $1`

	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get following ids: %w", mapError(err))
	}
	return ids, nil
}
