package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// pairToggle flips membership of a row keyed by a unique (left, right) pair.
type pairToggle struct {
	db    *sqlx.DB
	table string
	left  string
	right string
}

// toggle deletes the pair if present and reports false, otherwise inserts it
// and reports true. A concurrent insert of the same pair leaves it present,
// which is the state this call asked for, so it also reports true.
func (t pairToggle) toggle(ctx context.Context, left, right uuid.UUID) (bool, error) {
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, t.table, t.left, t.right)

	result, err := t.db.ExecContext(ctx, deleteQuery, left, right)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", t.table, mapError(err))
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if removed > 0 {
		return false, nil
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (%s, %s) DO NOTHING
	`, t.table, t.left, t.right, t.left, t.right)

	if _, err := t.db.ExecContext(ctx, insertQuery, left, right); err != nil {
		return false, fmt.Errorf("failed to insert into %s: %w", t.table, mapError(err))
	}
	return true, nil
}
