package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/snippet-activity/internal/apperror"
	"github.com/sakif/snippet-activity/internal/model"
	"github.com/sakif/snippet-activity/internal/repository"
)

const MaxActivityNameLength = 255

// ActivityService manages activity instances. Creating and deleting them is an
// operator task; the HTTP layer only uses Get to reject unknown activities.
type ActivityService struct {
	activities repository.ActivityRepository
	logger     *slog.Logger
	now        func() time.Time
}

func NewActivityService(activities repository.ActivityRepository, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *ActivityService) Create(ctx context.Context, name string) (*model.Activity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "activity name is required")
	}
	if utf8.RuneCountInString(name) > MaxActivityNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("activity name must be %d characters or less", MaxActivityNameLength))
	}

	now := s.now().UTC()
	activity := &model.Activity{Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.activities.CreateActivity(ctx, activity); err != nil {
		return nil, fmt.Errorf("creating activity: %w", err)
	}

	s.logger.Info("activity created", slog.Int64("id", activity.ID), slog.String("name", name))
	return activity, nil
}

func (s *ActivityService) Get(ctx context.Context, id int64) (*model.Activity, error) {
	return s.activities.GetActivity(ctx, id)
}

// Delete removes the activity together with all of its categories and snips.
func (s *ActivityService) Delete(ctx context.Context, id int64) error {
	if err := s.activities.DeleteActivity(ctx, id); err != nil {
		return err
	}
	s.logger.Info("activity deleted", slog.Int64("id", id))
	return nil
}
