package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	models "github.com/adri-yano/social-media-app/model"
)

const userColumns = `id, username, email, name, password_hash, bio, avatar, created_at, updated_at`

const profileSelect = `
	SELECT u.id, u.username, u.email, u.name, u.bio, u.avatar, u.created_at, u.updated_at,
	       (SELECT COUNT(*) FROM follows f WHERE f.following_id = u.id) AS "counts.followers",
	       (SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id) AS "counts.following",
	       (SELECT COUNT(*) FROM posts p WHERE p.author_id = u.id) AS "counts.posts",
	       EXISTS(SELECT 1 FROM follows f WHERE f.follower_id = $2 AND f.following_id = u.id) AS is_following
	FROM users u
`

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a user. A taken username or email yields a *ConflictError.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Username, user.Email, user.Name, user.PasswordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err))
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `WHERE username = $1`, username)
}

func (r *userRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return r.getOne(ctx, `WHERE LOWER(email) = LOWER($1) OR username = $1 LIMIT 1`, identifier)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users ` + where

	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", mapError(err))
	}
	return &user, nil
}

func (r *userRepository) GetProfile(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Profile, error) {
	return r.getProfile(ctx, `WHERE u.id = $1`, id, viewer)
}

func (r *userRepository) GetProfileByUsername(ctx context.Context, username string, viewer *uuid.UUID) (*models.Profile, error) {
	return r.getProfile(ctx, `WHERE u.username = $1`, username, viewer)
}

func (r *userRepository) getProfile(ctx context.Context, where string, arg interface{}, viewer *uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, profileSelect+where, arg, viewer); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", mapError(err))
	}
	return &profile, nil
}

// Update applies the fields present in input. Null values clear the column.
func (r *userRepository) Update(ctx context.Context, id uuid.UUID, input *models.UpdateUserInput) (*models.User, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}

	if input.Name.Set {
		args = append(args, input.Name.Ptr())
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if input.Bio.Set {
		args = append(args, input.Bio.Ptr())
		sets = append(sets, fmt.Sprintf("bio = $%d", len(args)))
	}
	if input.Avatar.Set {
		args = append(args, input.Avatar.Ptr())
		sets = append(sets, fmt.Sprintf("avatar = $%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", mapError(err))
	}
	return &user, nil
}
