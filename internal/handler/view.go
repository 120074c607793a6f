package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/snippet-activity/internal/service"
)

// StylesheetWriter writes the highlighting stylesheet.
type StylesheetWriter interface {
	CSS(w io.Writer) error
}

// ViewHandler serves the data of the main activity page.
type ViewHandler struct {
	sessions sessions
	views    *service.ViewService
	styles   StylesheetWriter
	logger   *slog.Logger
}

func NewViewHandler(activities ActivityFinder, views *service.ViewService, styles StylesheetWriter, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{
		sessions: sessions{activities: activities},
		views:    views,
		styles:   styles,
		logger:   logger,
	}
}

// HandleView returns the composed page data.
//
// HTTP: GET /view?id=<activity>&categoryid=<category>&snipid=<snip>&highlight=1
func (h *ViewHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sess, err := h.sessions.resolve(r, q.Get("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	categoryID, err := parseOptionalID("categoryid", q.Get("categoryid"))
	if err != nil {
		writeError(w, err)
		return
	}
	snipID, err := parseOptionalID("snipid", q.Get("snipid"))
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := h.views.Compose(r.Context(), sess, service.ViewParams{
		CategoryID: categoryID,
		SnipID:     snipID,
		Highlight:  q.Get("highlight") == "1" || q.Get("highlight") == "true",
	})
	if err != nil {
		h.logger.Error("failed to compose view",
			slog.Int64("activityID", sess.ActivityID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, data)
}

// HandleStylesheet serves the CSS matching the highlighted markup.
//
// HTTP: GET /api/highlight.css
func (h *ViewHandler) HandleStylesheet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if err := h.styles.CSS(w); err != nil {
		h.logger.Error("failed to write stylesheet", slog.String("error", err.Error()))
	}
}
