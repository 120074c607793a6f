// Package repository declares the storage adapter the services depend on.
// Implementations live in sub-packages (see sqlstore).
package repository

import (
	"context"

	"github.com/sakif/snippet-activity/internal/model"
)

// ListOptions bounds a list query. A zero Limit means no limit.
type ListOptions struct {
	Limit  int
	Offset int
}

// CategoryFilter selects categories by field equality. Zero fields are ignored.
type CategoryFilter struct {
	ActivityID int64
	UserID     int64
}

// SnipFilter selects snips by field equality. Zero fields are ignored.
type SnipFilter struct {
	ActivityID int64
	UserID     int64
	CategoryID int64
}

type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity *model.Activity) error
	GetActivity(ctx context.Context, id int64) (*model.Activity, error)
	// DeleteActivity removes the activity with every category and snip it owns.
	DeleteActivity(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	// ListCategories returns matching categories ordered by name ascending.
	ListCategories(ctx context.Context, filter CategoryFilter) ([]model.Category, error)
	CategoryExists(ctx context.Context, filter CategoryFilter) (bool, error)
}

type SnipRepository interface {
	CreateSnip(ctx context.Context, snip *model.Snip) error
	UpdateSnip(ctx context.Context, snip *model.Snip) error
	GetSnip(ctx context.Context, id int64) (*model.Snip, error)
	CountSnips(ctx context.Context, filter SnipFilter) (int, error)
	// ListSnips returns matching snips newest first.
	ListSnips(ctx context.Context, filter SnipFilter, opts ListOptions) ([]model.Snip, error)
}

// Store is everything the services need from one backend.
type Store interface {
	ActivityRepository
	CategoryRepository
	SnipRepository
}
