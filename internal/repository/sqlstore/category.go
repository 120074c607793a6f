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

const categoryColumns = `id, activity_id, user_id, name, time_created, time_modified`

// CreateCategory inserts a category and sets its ID. Timestamps are written
// as given; the service layer stamps them.
func (db *DB) CreateCategory(ctx context.Context, category *model.Category) error {
	err := db.conn.QueryRowContext(ctx, db.rebind(
		`INSERT INTO categories (activity_id, user_id, name, time_created, time_modified)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`),
		category.ActivityID,
		category.UserID,
		category.Name,
		category.CreatedAt,
		category.UpdatedAt,
	).Scan(&category.ID)
	if err != nil {
		return fmt.Errorf("sqlstore: creating category: %w", err)
	}
	return nil
}

func (db *DB) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := db.conn.QueryRowContext(ctx, db.rebind(
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`),
		id,
	).Scan(&c.ID, &c.ActivityID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("category", id)
		}
		return nil, fmt.Errorf("sqlstore: getting category %d: %w", id, err)
	}
	return &c, nil
}

// ListCategories returns the matching categories ordered by name.
func (db *DB) ListCategories(ctx context.Context, filter repository.CategoryFilter) ([]model.Category, error) {
	clause, args := where(
		pred{"activity_id", filter.ActivityID},
		pred{"user_id", filter.UserID},
	)

	rows, err := db.conn.QueryContext(ctx, db.rebind(
		`SELECT `+categoryColumns+` FROM categories`+clause+` ORDER BY name ASC, id ASC`),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.ActivityID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating categories: %w", err)
	}

	return categories, nil
}

func (db *DB) CategoryExists(ctx context.Context, filter repository.CategoryFilter) (bool, error) {
	clause, args := where(
		pred{"activity_id", filter.ActivityID},
		pred{"user_id", filter.UserID},
	)

	var exists bool
	err := db.conn.QueryRowContext(ctx, db.rebind(
		`SELECT EXISTS (SELECT 1 FROM categories`+clause+`)`),
		args...,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking categories: %w", err)
	}
	return exists, nil
}
