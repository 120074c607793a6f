package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/snippet-activity/internal/apperror"
	"github.com/sakif/snippet-activity/internal/model"
)

// CreateActivity inserts a new activity and sets its ID.
func (db *DB) CreateActivity(ctx context.Context, activity *model.Activity) error {
	err := db.conn.QueryRowContext(ctx, db.rebind(
		`INSERT INTO activities (name, time_created, time_modified)
		 VALUES (?, ?, ?)
		 RETURNING id`),
		activity.Name,
		activity.CreatedAt,
		activity.UpdatedAt,
	).Scan(&activity.ID)
	if err != nil {
		return fmt.Errorf("sqlstore: creating activity: %w", err)
	}
	return nil
}

// GetActivity returns apperror.ErrNotFound when no activity has the given id.
func (db *DB) GetActivity(ctx context.Context, id int64) (*model.Activity, error) {
	var a model.Activity
	err := db.conn.QueryRowContext(ctx, db.rebind(
		`SELECT id, name, time_created, time_modified
		 FROM activities
		 WHERE id = ?`),
		id,
	).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("activity", id)
		}
		return nil, fmt.Errorf("sqlstore: getting activity %d: %w", id, err)
	}
	return &a, nil
}

// DeleteActivity removes the activity and everything it owns in one
// transaction: snips first, then categories, then the activity itself.
// The explicit deletes keep the cascade independent of foreign-key support.
func (db *DB) DeleteActivity(ctx context.Context, id int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: beginning delete of activity %d: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, db.rebind(`DELETE FROM snips WHERE activity_id = ?`), id); err != nil {
		return fmt.Errorf("sqlstore: deleting snips of activity %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, db.rebind(`DELETE FROM categories WHERE activity_id = ?`), id); err != nil {
		return fmt.Errorf("sqlstore: deleting categories of activity %d: %w", id, err)
	}
	result, err := tx.ExecContext(ctx, db.rebind(`DELETE FROM activities WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting activity %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("activity", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: committing delete of activity %d: %w", id, err)
	}
	return nil
}
