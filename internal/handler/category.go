package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/snippet-activity/internal/model"
	"github.com/sakif/snippet-activity/internal/service"
)

// CategoryHandler serves the categories of the calling user.
type CategoryHandler struct {
	sessions   sessions
	categories *service.CategoryService
	logger     *slog.Logger
}

func NewCategoryHandler(activities ActivityFinder, categories *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		sessions:   sessions{activities: activities},
		categories: categories,
		logger:     logger,
	}
}

// CreateCategoryRequest is the body of POST /categories.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// HandleList returns the caller's categories with their snip counts.
//
// HTTP: GET /api/activities/{activityID}/categories
func (h *CategoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.fromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	categories, err := h.categories.ListForNav(r.Context(), sess, sess.UserID)
	if err != nil {
		h.logger.Error("failed to list categories", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// HandleOptions returns id/name pairs for a category picker.
//
// HTTP: GET /api/activities/{activityID}/categories/options
func (h *CategoryHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.fromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	options, err := h.categories.ListForInput(r.Context(), sess, sess.UserID)
	if err != nil {
		h.logger.Error("failed to list category options", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, options)
}

// HandleCreate creates a category for the caller.
//
// HTTP: POST /api/activities/{activityID}/categories
// BODY: {"name": "Sorting"}
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.fromPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req CreateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.categories.Create(r.Context(), sess, service.CreateCategoryInput{
		ActivityID: model.SomeID(sess.ActivityID),
		Name:       req.Name,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}
