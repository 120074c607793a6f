package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/snippet-activity/internal/apperror"
	"github.com/sakif/snippet-activity/internal/model"
	"github.com/sakif/snippet-activity/internal/repository"
)

const snipColumns = `id, activity_id, category_id, user_id, name, description, description_format,
	private, language, code, time_created, time_modified`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnip(row rowScanner, s *model.Snip) error {
	var format int
	if err := row.Scan(
		&s.ID, &s.ActivityID, &s.CategoryID, &s.UserID, &s.Name,
		&s.Description.Text, &format,
		&s.Private, &s.Language, &s.Code,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return err
	}
	s.Description.Format = model.TextFormat(format)
	return nil
}

// CreateSnip inserts a snip and sets its ID.
func (db *DB) CreateSnip(ctx context.Context, snip *model.Snip) error {
	err := db.conn.QueryRowContext(ctx, db.rebind(
		`INSERT INTO snips (activity_id, category_id, user_id, name, description, description_format,
		                    private, language, code, time_created, time_modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		snip.ActivityID,
		snip.CategoryID,
		snip.UserID,
		snip.Name,
		snip.Description.Text,
		int(snip.Description.Format),
		snip.Private,
		snip.Language,
		snip.Code,
		snip.CreatedAt,
		snip.UpdatedAt,
	).Scan(&snip.ID)
	if err != nil {
		return fmt.Errorf("sqlstore: creating snip: %w", err)
	}
	return nil
}

// UpdateSnip rewrites the editable fields of a snip owned by snip.UserID.
// A snip that does not exist, or belongs to someone else, is reported as not found.
func (db *DB) UpdateSnip(ctx context.Context, snip *model.Snip) error {
	result, err := db.conn.ExecContext(ctx, db.rebind(
		`UPDATE snips
		 SET category_id = ?, name = ?, description = ?, description_format = ?,
		     private = ?, language = ?, code = ?, time_modified = ?
		 WHERE id = ? AND user_id = ?`),
		snip.CategoryID,
		snip.Name,
		snip.Description.Text,
		int(snip.Description.Format),
		snip.Private,
		snip.Language,
		snip.Code,
		snip.UpdatedAt,
		snip.ID,
		snip.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: updating snip %d: %w", snip.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snip", snip.ID)
	}
	return nil
}

func (db *DB) GetSnip(ctx context.Context, id int64) (*model.Snip, error) {
	var s model.Snip
	row := db.conn.QueryRowContext(ctx, db.rebind(`SELECT `+snipColumns+` FROM snips WHERE id = ?`), id)
	if err := scanSnip(row, &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("snip", id)
		}
		return nil, fmt.Errorf("sqlstore: getting snip %d: %w", id, err)
	}
	return &s, nil
}

func (db *DB) CountSnips(ctx context.Context, filter repository.SnipFilter) (int, error) {
	clause, args := snipWhere(filter)

	var count int
	err := db.conn.QueryRowContext(ctx, db.rebind(`SELECT COUNT(*) FROM snips`+clause), args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: counting snips: %w", err)
	}
	return count, nil
}

// ListSnips returns matching snips newest first. Snips created within the same
// clock tick come back in reverse insertion order. Offset applies only when
// Limit is set.
func (db *DB) ListSnips(ctx context.Context, filter repository.SnipFilter, opts repository.ListOptions) ([]model.Snip, error) {
	clause, args := snipWhere(filter)

	query := `SELECT ` + snipColumns + ` FROM snips` + clause + ` ORDER BY time_created DESC, id DESC`
	if opts.Limit > 0 {
		offset := opts.Offset
		if offset < 0 {
			offset = 0
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, offset)
	}

	rows, err := db.conn.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing snips: %w", err)
	}
	defer rows.Close()

	snips := make([]model.Snip, 0, max(opts.Limit, 0))
	for rows.Next() {
		var s model.Snip
		if err := scanSnip(rows, &s); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning snip row: %w", err)
		}
		snips = append(snips, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating snips: %w", err)
	}

	return snips, nil
}

func snipWhere(filter repository.SnipFilter) (string, []any) {
	return where(
		pred{"activity_id", filter.ActivityID},
		pred{"user_id", filter.UserID},
		pred{"category_id", filter.CategoryID},
	)
}
