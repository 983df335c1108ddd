package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	models "github.com/adri-yano/social-media-app/model"
)

const postColumns = `id, content, image, author_id, created_at, updated_at`

// postViewSelect expects the viewer id as $1.
const postViewSelect = `
	SELECT p.id, p.content, p.image, p.author_id, p.created_at, p.updated_at,
	       u.id AS "author.id", u.username AS "author.username",
	       u.name AS "author.name", u.avatar AS "author.avatar",
	       (SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS "counts.likes",
	       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS "counts.comments",
	       EXISTS(SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = $1) AS liked
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, content, image, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		post.ID, post.Content, post.Image, post.AuthorID,
	).Scan(&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", mapError(err))
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		return nil, fmt.Errorf("failed to get post: %w", mapError(err))
	}
	return &post, nil
}

func (r *postRepository) GetView(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.PostView, error) {
	var view models.PostView
	query := postViewSelect + ` WHERE p.id = $2`

	if err := r.db.GetContext(ctx, &view, query, viewer, id); err != nil {
		return nil, fmt.Errorf("failed to get post: %w", mapError(err))
	}
	return &view, nil
}

// List returns posts newest-first. Ties on created_at are broken by id so
// repeated calls see the same order.
func (r *postRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.PostView, error) {
	posts := []*models.PostView{}
	if filter.AuthorIDs != nil && len(filter.AuthorIDs) == 0 {
		return posts, nil
	}

	limit := filter.Limit
	if limit <= 0 || limit > models.MaxListRows {
		limit = models.MaxListRows
	}

	args := []interface{}{filter.Viewer}
	var conditions []string

	if filter.AuthorIDs != nil {
		args = append(args, pq.Array(uuidStrings(filter.AuthorIDs)))
		conditions = append(conditions, fmt.Sprintf("p.author_id = ANY($%d::uuid[])", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		conditions = append(conditions, fmt.Sprintf("p.content ILIKE $%d", len(args)))
	}

	query := postViewSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY p.created_at DESC, p.id DESC LIMIT $%d", len(args))

	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", mapError(err))
	}
	return posts, nil
}

// Update applies the fields present in input. A null image removes it.
func (r *postRepository) Update(ctx context.Context, id uuid.UUID, input *models.UpdatePostInput) (*models.Post, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}

	if input.Content != nil {
		args = append(args, *input.Content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	if input.Image.Set {
		args = append(args, input.Image.Ptr())
		sets = append(sets, fmt.Sprintf("image = $%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), postColumns)

	var post models.Post
	if err := r.db.GetContext(ctx, &post, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", mapError(err))
	}
	return &post, nil
}

// Delete removes a post. Likes and comments go with it through ON DELETE CASCADE.
func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", mapError(err))
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

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE wildcards so the search is a plain substring match.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
