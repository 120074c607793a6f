// Package service contains the business logic of the snippet activity.
//
// THE LAYERS:
//
//	Handler (HTTP / CLI)  → parses input, writes output
//	Service               → validates, applies defaults, composes views
//	Repository            → reads/writes records
//
// Every service call receives an explicit model.Session describing who is
// calling and in which activity. Nothing in this package reads a "current user"
// from anywhere else, which keeps the services usable from the HTTP handlers,
// the operator CLI and the tests alike.
//
// Services depend on the repository interfaces, never on a concrete backend.
// Tests pass an in-memory store; production passes sqlstore.DB.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/snippet-activity/internal/apperror"
	"github.com/sakif/snippet-activity/internal/model"
	"github.com/sakif/snippet-activity/internal/repository"
)

// MaxCategoryNameLength matches the length of the original form field.
const MaxCategoryNameLength = 255

// CreateCategoryInput is the data needed to create a category.
// An absent UserID means "the session user".
type CreateCategoryInput struct {
	ActivityID model.OptionalID
	UserID     model.OptionalID
	Name       string
}

// CategoryService handles user categories.
type CategoryService struct {
	categories repository.CategoryRepository
	snips      repository.SnipRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewCategoryService creates a CategoryService. The snip repository is used to
// count snips per category for navigation.
func NewCategoryService(categories repository.CategoryRepository, snips repository.SnipRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		categories: categories,
		snips:      snips,
		logger:     logger,
		now:        time.Now,
	}
}

// Create stores a new category and returns its identifier.
//
// A category must belong to an activity: without one the call fails with
// apperror.ErrValidation and nothing is written. A blank name is replaced by
// model.DefaultCategoryName.
func (s *CategoryService) Create(ctx context.Context, sess model.Session, in CreateCategoryInput) (int64, error) {
	activityID, ok := in.ActivityID.Get()
	if !ok {
		return 0, apperror.ValidationFailed("activityId", "a category must belong to an activity")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = model.DefaultCategoryName
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return 0, apperror.ValidationFailed("name",
			fmt.Sprintf("category name must be %d characters or less", MaxCategoryNameLength))
	}

	now := s.now().UTC()
	category := &model.Category{
		ActivityID: activityID,
		UserID:     in.UserID.Or(sess.UserID),
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.categories.CreateCategory(ctx, category); err != nil {
		s.logger.Error("failed to create category",
			slog.Int64("activityID", activityID),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("creating category: %w", err)
	}

	s.logger.Info("category created",
		slog.Int64("id", category.ID),
		slog.Int64("userID", category.UserID),
		slog.String("name", category.Name),
	)
	return category.ID, nil
}

// ListForUser returns the user's categories in the session activity, by name.
func (s *CategoryService) ListForUser(ctx context.Context, sess model.Session, userID int64) ([]model.Category, error) {
	categories, err := s.categories.ListCategories(ctx, repository.CategoryFilter{
		ActivityID: sess.ActivityID,
		UserID:     userID,
	})
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// ListForInput returns id/name pairs for a category selection control, in the
// same order as ListForUser.
func (s *CategoryService) ListForInput(ctx context.Context, sess model.Session, userID int64) ([]model.Option, error) {
	categories, err := s.ListForUser(ctx, sess, userID)
	if err != nil {
		return nil, err
	}

	options := make([]model.Option, 0, len(categories))
	for _, c := range categories {
		options = append(options, model.Option{ID: c.ID, Name: c.Name})
	}
	return options, nil
}

// ListForNav returns ListForUser with each category's snip count filled in.
func (s *CategoryService) ListForNav(ctx context.Context, sess model.Session, userID int64) ([]model.Category, error) {
	categories, err := s.ListForUser(ctx, sess, userID)
	if err != nil {
		return nil, err
	}

	for i := range categories {
		count, err := s.snips.CountSnips(ctx, repository.SnipFilter{
			ActivityID: sess.ActivityID,
			UserID:     userID,
			CategoryID: categories[i].ID,
		})
		if err != nil {
			return nil, fmt.Errorf("counting snips of category %d: %w", categories[i].ID, err)
		}
		categories[i].Count = count
		categories[i].HasNoSnip = count == 0
	}
	return categories, nil
}

// SetActive returns a copy of categories where only the category identified by
// id is active. An absent id leaves every category inactive.
func (s *CategoryService) SetActive(id model.OptionalID, categories []model.Category) []model.Category {
	out := make([]model.Category, len(categories))
	for i, c := range categories {
		c.Active = id.Is(c.ID)
		out[i] = c
	}
	return out
}

// HasCategory reports whether the user owns at least one category in the
// session activity.
func (s *CategoryService) HasCategory(ctx context.Context, sess model.Session, userID int64) (bool, error) {
	exists, err := s.categories.CategoryExists(ctx, repository.CategoryFilter{
		ActivityID: sess.ActivityID,
		UserID:     userID,
	})
	if err != nil {
		return false, fmt.Errorf("checking categories: %w", err)
	}
	return exists, nil
}

// owned returns the category if it belongs to the session user and activity.
// Anything else is an input error from the caller's point of view.
func (s *CategoryService) owned(ctx context.Context, sess model.Session, id int64) (*model.Category, error) {
	category, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("categoryId", fmt.Sprintf("category %d does not exist", id))
		}
		return nil, fmt.Errorf("loading category %d: %w", id, err)
	}
	if category.UserID != sess.UserID || (sess.ActivityID != 0 && category.ActivityID != sess.ActivityID) {
		return nil, apperror.ValidationFailed("categoryId", fmt.Sprintf("category %d does not exist", id))
	}
	return category, nil
}
