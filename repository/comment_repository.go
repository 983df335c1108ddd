package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	models "github.com/adri-yano/social-media-app/model"
)

const commentColumns = `id, content, post_id, author_id, parent_comment_id, created_at, updated_at`

const commentViewSelect = `
	SELECT c.id, c.content, c.post_id, c.author_id, c.parent_comment_id, c.created_at, c.updated_at,
	       u.id AS "author.id", u.username AS "author.username",
	       u.name AS "author.name", u.avatar AS "author.avatar"
	FROM comments c
	JOIN users u ON u.id = c.author_id
`

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment. A missing post, author or parent yields ErrNotFound.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, content, post_id, author_id, parent_comment_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		comment.ID, comment.Content, comment.PostID, comment.AuthorID, comment.ParentCommentID,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves a comment by its ID
func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", mapError(err))
	}
	return &comment, nil
}

func (r *commentRepository) GetView(ctx context.Context, id uuid.UUID) (*models.CommentView, error) {
	var view models.CommentView
	if err := r.db.GetContext(ctx, &view, commentViewSelect+` WHERE c.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", mapError(err))
	}
	return &view, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]*models.CommentView, error) {
	topLevel := []*models.CommentView{}
	query := commentViewSelect + `
		WHERE c.post_id = $1 AND c.parent_comment_id IS NULL
		ORDER BY c.created_at ASC, c.id ASC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &topLevel, query, postID, models.MaxListRows); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", mapError(err))
	}
	if len(topLevel) == 0 {
		return topLevel, nil
	}

	parents := make(map[uuid.UUID]*models.CommentView, len(topLevel))
	ids := make([]uuid.UUID, 0, len(topLevel))
	for _, c := range topLevel {
		c.Replies = []*models.CommentView{}
		parents[c.ID] = c
		ids = append(ids, c.ID)
	}

	var replies []*models.CommentView
	replyQuery := commentViewSelect + `
		WHERE c.parent_comment_id = ANY($1::uuid[])
		ORDER BY c.created_at ASC, c.id ASC
	`
	if err := r.db.SelectContext(ctx, &replies, replyQuery, pq.Array(uuidStrings(ids))); err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", mapError(err))
	}

	for _, reply := range replies {
		if parent, ok := parents[*reply.ParentCommentID]; ok {
			parent.Replies = append(parent.Replies, reply)
		}
	}
	return topLevel, nil
}

func (r *commentRepository) Update(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	query := `
		UPDATE comments
		SET content = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + commentColumns

	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, query, content, id); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", mapError(err))
	}
	return &comment, nil
}

// Delete removes a comment and, by cascade, its replies.
func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", mapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
