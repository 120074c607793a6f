package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snippet-activity/internal/apperror"
	"github.com/sakif/snippet-activity/internal/model"
	"github.com/sakif/snippet-activity/internal/service"
)

// SnipHandler serves snip reads and writes.
type SnipHandler struct {
	sessions sessions
	snips    *service.SnipService
	logger   *slog.Logger
}

func NewSnipHandler(activities ActivityFinder, snips *service.SnipService, logger *slog.Logger) *SnipHandler {
	return &SnipHandler{
		sessions: sessions{activities: activities},
		snips:    snips,
		logger:   logger,
	}
}

// CreateSnipRequest is the body of POST /snips. Exactly one of CategoryID and
// NewCategoryName must be given.
type CreateSnipRequest struct {
	CategoryID      *int64            `json:"categoryId"`
	NewCategoryName *string           `json:"newCategoryName"`
	Name            string            `json:"name"`
	Description     model.Description `json:"description"`
	Private         bool              `json:"private"`
	Language        string            `json:"language"`
	Code            string            `json:"code"`
}

// UpdateSnipRequest is the body of PUT /snips/{snipID}.
type UpdateSnipRequest struct {
	CategoryID  int64             `json:"categoryId"`
	Name        string            `json:"name"`
	Description model.Description `json:"description"`
	Private     bool              `json:"private"`
	Language    string            `json:"language"`
	Code        string            `json:"code"`
}

func (req CreateSnipRequest) choice() (service.CategoryChoice, error) {
	switch {
	case req.CategoryID != nil && req.NewCategoryName != nil:
		return nil, apperror.ValidationFailed("categoryId", "give either categoryId or newCategoryName, not both")
	case req.CategoryID != nil:
		return service.ExistingCategory{ID: *req.CategoryID}, nil
	case req.NewCategoryName != nil:
		return service.NewCategory{Name: *req.NewCategoryName}, nil
	default:
		return nil, apperror.ValidationFailed("categoryId", "categoryId or newCategoryName is required")
	}
}

// HandleCreate stores a new snip, creating its category first when asked to.
//
// HTTP: POST /api/activities/{activityID}/snips
func (h *SnipHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.fromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req CreateSnipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	choice, err := req.choice()
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := h.snips.Create(r.Context(), sess, service.CreateSnipInput{
		Category:    choice,
		Name:        req.Name,
		Description: req.Description,
		Private:     req.Private,
		Language:    req.Language,
		Code:        req.Code,
	})
	if err != nil {
		h.logError("failed to create snip", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// HandleUpdate rewrites a snip of the caller.
//
// HTTP: PUT /api/activities/{activityID}/snips/{snipID}
func (h *SnipHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.fromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	snipID, err := parseID("snipID", chi.URLParam(r, "snipID"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdateSnipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	err = h.snips.Update(r.Context(), sess, service.UpdateSnipInput{
		ID:          snipID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Private:     req.Private,
		Language:    req.Language,
		Code:        req.Code,
	})
	if err != nil {
		h.logError("failed to update snip", err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGet returns one snip.
//
// HTTP: GET /api/activities/{activityID}/snips/{snipID}
func (h *SnipHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.fromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	snipID, err := parseID("snipID", chi.URLParam(r, "snipID"))
	if err != nil {
		writeError(w, err)
		return
	}

	snip, err := h.snips.Get(r.Context(), sess, snipID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snip)
}

// HandleLatest returns the caller's most recent snips.
//
// HTTP: GET /api/activities/{activityID}/snips/latest?max=5
func (h *SnipHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.fromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("max"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 || limit > 100 {
			writeError(w, apperror.ValidationFailed("max", "max must be between 0 and 100"))
			return
		}
	}

	snips, err := h.snips.Latest(r.Context(), sess, service.LatestOptions{Max: limit})
	if err != nil {
		h.logError("failed to list latest snips", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snips)
}

// HandleListForCategory returns every snip of the caller in a category.
//
// HTTP: GET /api/activities/{activityID}/categories/{categoryID}/snips
func (h *SnipHandler) HandleListForCategory(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.fromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}
	categoryID, err := parseID("categoryID", chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, err)
		return
	}

	snips, err := h.snips.ListForCategory(r.Context(), sess, sess.UserID, categoryID)
	if err != nil {
		h.logError("failed to list snips", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snips)
}

func (h *SnipHandler) logError(msg string, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return
	}
	h.logger.Error(msg, slog.String("error", err.Error()))
}
