package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/snippet-activity/internal/apperror"
	"github.com/sakif/snippet-activity/internal/language"
	"github.com/sakif/snippet-activity/internal/model"
	"github.com/sakif/snippet-activity/internal/repository"
)

const (
	MaxSnipNameLength = 255
	MaxCodeLength     = 100_000

	// DefaultLatestMax is how many snips Latest returns when no maximum is given.
	DefaultLatestMax = 10
)

// CategoryChoice says which category a new snip goes into: either a category
// created on the fly (NewCategory) or one the user already owns
// (ExistingCategory). The unexported method closes the set.
type CategoryChoice interface {
	isCategoryChoice()
}

// NewCategory creates a category with Name before the snip is stored.
type NewCategory struct {
	Name string
}

// ExistingCategory files the snip under a category the caller owns.
type ExistingCategory struct {
	ID int64
}

func (NewCategory) isCategoryChoice()      {}
func (ExistingCategory) isCategoryChoice() {}

// CreateSnipInput is the data needed to create a snip. Owner and activity come
// from the session.
type CreateSnipInput struct {
	Category    CategoryChoice
	Name        string
	Description model.Description
	Private     bool
	Language    string
	Code        string
}

// UpdateSnipInput carries every editable field of a snip.
type UpdateSnipInput struct {
	ID          int64
	CategoryID  int64
	Name        string
	Description model.Description
	Private     bool
	Language    string
	Code        string
}

// LatestOptions controls Latest. An absent UserID means the session user and a
// Max of zero or less means DefaultLatestMax.
type LatestOptions struct {
	UserID model.OptionalID
	Max    int
}

// SnipService handles snips.
type SnipService struct {
	snips      repository.SnipRepository
	categories *CategoryService
	baseURL    string
	logger     *slog.Logger
	now        func() time.Time
}

// NewSnipService creates a SnipService. baseURL is the externally visible
// address used to build snip links, e.g. "https://example.org/mod/snippet".
func NewSnipService(snips repository.SnipRepository, categories *CategoryService, baseURL string, logger *slog.Logger) *SnipService {
	return &SnipService{
		snips:      snips,
		categories: categories,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		now:        time.Now,
	}
}

// Create validates and stores a new snip, returning its identifier.
//
// With a NewCategory choice the category is created first, but only after the
// rest of the input has passed validation, so a rejected snip never leaves an
// empty category behind.
func (s *SnipService) Create(ctx context.Context, sess model.Session, in CreateSnipInput) (int64, error) {
	name, lang, err := s.validate(in.Name, in.Description, in.Language, in.Code)
	if err != nil {
		return 0, err
	}

	var categoryID int64
	switch choice := in.Category.(type) {
	case NewCategory:
		categoryID, err = s.categories.Create(ctx, sess, CreateCategoryInput{
			ActivityID: model.SomeID(sess.ActivityID),
			Name:       choice.Name,
		})
		if err != nil {
			return 0, err
		}
	case ExistingCategory:
		category, err := s.categories.owned(ctx, sess, choice.ID)
		if err != nil {
			return 0, err
		}
		categoryID = category.ID
	default:
		return 0, apperror.ValidationFailed("categoryId", "a category is required")
	}

	now := s.now().UTC()
	snip := &model.Snip{
		ActivityID:  sess.ActivityID,
		CategoryID:  categoryID,
		UserID:      sess.UserID,
		Name:        name,
		Description: in.Description,
		Private:     in.Private,
		Language:    lang,
		Code:        in.Code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.snips.CreateSnip(ctx, snip); err != nil {
		s.logger.Error("failed to create snip",
			slog.Int64("categoryID", categoryID),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("creating snip: %w", err)
	}

	s.logger.Info("snip created",
		slog.Int64("id", snip.ID),
		slog.Int64("categoryID", snip.CategoryID),
		slog.String("language", snip.Language),
	)
	return snip.ID, nil
}

// Update rewrites a snip owned by the session user. Snips of other users and
// snips of other activities are reported as not found.
func (s *SnipService) Update(ctx context.Context, sess model.Session, in UpdateSnipInput) error {
	name, lang, err := s.validate(in.Name, in.Description, in.Language, in.Code)
	if err != nil {
		return err
	}

	existing, err := s.snips.GetSnip(ctx, in.ID)
	if err != nil {
		return err
	}
	if existing.UserID != sess.UserID || existing.ActivityID != sess.ActivityID {
		return apperror.NotFound("snip", in.ID)
	}
	if in.CategoryID != existing.CategoryID {
		if _, err := s.categories.owned(ctx, sess, in.CategoryID); err != nil {
			return err
		}
	}

	existing.CategoryID = in.CategoryID
	existing.Name = name
	existing.Description = in.Description
	existing.Private = in.Private
	existing.Language = lang
	existing.Code = in.Code
	existing.UpdatedAt = s.now().UTC()

	if err := s.snips.UpdateSnip(ctx, existing); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("updating snip %d: %w", in.ID, err)
	}

	s.logger.Info("snip updated", slog.Int64("id", existing.ID))
	return nil
}

// CountForCategory counts the user's snips in a category.
func (s *SnipService) CountForCategory(ctx context.Context, userID, categoryID int64) (int, error) {
	count, err := s.snips.CountSnips(ctx, repository.SnipFilter{UserID: userID, CategoryID: categoryID})
	if err != nil {
		return 0, fmt.Errorf("counting snips: %w", err)
	}
	return count, nil
}

// Latest returns the most recently created snips of a user in the session
// activity, newest first.
func (s *SnipService) Latest(ctx context.Context, sess model.Session, opts LatestOptions) ([]model.Snip, error) {
	limit := opts.Max
	if limit <= 0 {
		limit = DefaultLatestMax
	}

	snips, err := s.snips.ListSnips(ctx, repository.SnipFilter{
		ActivityID: sess.ActivityID,
		UserID:     opts.UserID.Or(sess.UserID),
	}, repository.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("listing latest snips: %w", err)
	}
	return s.enrich(snips), nil
}

// ListForCategory returns every snip of the user in a category, newest first,
// with display labels and view links filled in.
func (s *SnipService) ListForCategory(ctx context.Context, sess model.Session, userID, categoryID int64) ([]model.Snip, error) {
	snips, err := s.snips.ListSnips(ctx, repository.SnipFilter{
		ActivityID: sess.ActivityID,
		UserID:     userID,
		CategoryID: categoryID,
	}, repository.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing snips of category %d: %w", categoryID, err)
	}
	return s.enrich(snips), nil
}

// Get returns one snip with its display label. A private snip is only visible
// to its owner; everyone else gets ErrNotFound, as they do for snips outside
// the session activity.
func (s *SnipService) Get(ctx context.Context, sess model.Session, id int64) (*model.Snip, error) {
	snip, err := s.snips.GetSnip(ctx, id)
	if err != nil {
		return nil, err
	}
	if snip.ActivityID != sess.ActivityID || (snip.Private && snip.UserID != sess.UserID) {
		return nil, apperror.NotFound("snip", id)
	}
	s.decorate(snip)
	return snip, nil
}

// SetActive returns a copy of snips where only the snip identified by id is
// active.
func (s *SnipService) SetActive(id model.OptionalID, snips []model.Snip) []model.Snip {
	out := make([]model.Snip, len(snips))
	for i, sn := range snips {
		sn.Active = id.Is(sn.ID)
		out[i] = sn
	}
	return out
}

// DistinctLanguages returns the lower-cased languages used by snips, each once,
// in order of first appearance.
func (s *SnipService) DistinctLanguages(snips []model.Snip) []string {
	seen := make(map[string]struct{}, len(snips))
	langs := make([]string, 0, len(snips))
	for _, sn := range snips {
		lang := strings.ToLower(strings.TrimSpace(sn.Language))
		if lang == "" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		langs = append(langs, lang)
	}
	return langs
}

// URL builds the view link of a snip.
func (s *SnipService) URL(snip model.Snip) string {
	q := url.Values{}
	q.Set("id", strconv.FormatInt(snip.ActivityID, 10))
	q.Set("categoryid", strconv.FormatInt(snip.CategoryID, 10))
	q.Set("snipid", strconv.FormatInt(snip.ID, 10))
	return s.baseURL + "/view?" + q.Encode()
}

func (s *SnipService) enrich(snips []model.Snip) []model.Snip {
	for i := range snips {
		s.decorate(&snips[i])
	}
	return snips
}

func (s *SnipService) decorate(snip *model.Snip) {
	snip.DisplayLanguage = language.Label(snip.Language)
	snip.URL = s.URL(*snip)
}

// validate checks the user-supplied fields and returns the trimmed name and
// normalised language.
func (s *SnipService) validate(name string, desc model.Description, lang, code string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", apperror.ValidationFailed("name", "name is required")
	}
	if utf8.RuneCountInString(name) > MaxSnipNameLength {
		return "", "", apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxSnipNameLength))
	}
	if len(code) > MaxCodeLength {
		return "", "", apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d bytes or less", MaxCodeLength))
	}
	if !desc.Format.Valid() {
		return "", "", apperror.ValidationFailed("description.format",
			fmt.Sprintf("unknown description format %d", desc.Format))
	}

	lang = language.Normalize(lang)
	if !language.IsKnown(lang) {
		s.logger.Warn("storing snip with unknown language", slog.String("language", lang))
	}
	return name, lang, nil
}
