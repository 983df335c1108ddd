package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type likeRepository struct {
	pairs pairToggle
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{pairs: pairToggle{db: db, table: "likes", left: "post_id", right: "user_id"}}
}

// Toggle likes or unlikes a post. A missing post or user yields ErrNotFound.
func (r *likeRepository) Toggle(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	return r.pairs.toggle(ctx, postID, userID)
}
