// Package handler translates HTTP requests into service calls and service
// results into JSON. Handlers never touch storage; they receive services.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snippet-activity/internal/apperror"
	"github.com/sakif/snippet-activity/internal/auth"
	"github.com/sakif/snippet-activity/internal/model"
)

// ActivityFinder is the part of the activity service the handlers need.
type ActivityFinder interface {
	Get(ctx context.Context, id int64) (*model.Activity, error)
}

// sessions builds the model.Session of a request: the user comes from the
// verified token, the activity from the URL and must exist.
type sessions struct {
	activities ActivityFinder
}

func (s sessions) resolve(r *http.Request, rawActivityID string) (model.Session, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return model.Session{}, apperror.Unauthorized("valid authentication required")
	}

	activityID, err := parseID("id", rawActivityID)
	if err != nil {
		return model.Session{}, err
	}
	if _, err := s.activities.Get(r.Context(), activityID); err != nil {
		return model.Session{}, err
	}

	return model.Session{UserID: id.UserID, ActivityID: activityID}, nil
}

// fromPath resolves the session of a route with an {activityID} segment.
func (s sessions) fromPath(r *http.Request) (model.Session, error) {
	return s.resolve(r, chi.URLParam(r, "activityID"))
}

// parseID parses a required positive identifier.
func parseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed(field, field+" must be a positive integer")
	}
	return id, nil
}

// parseOptionalID parses an optional query identifier; "" and "0" mean none.
func parseOptionalID(field, raw string) (model.OptionalID, error) {
	id, err := model.ParseOptionalID(raw)
	if err != nil {
		return model.NoID, apperror.ValidationFailed(field, field+" must be an integer")
	}
	if n, ok := id.Get(); ok && n < 0 {
		return model.NoID, apperror.ValidationFailed(field, field+" must not be negative")
	}
	return id, nil
}
