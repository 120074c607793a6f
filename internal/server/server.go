// Package server is the composition root of the HTTP service: it opens the
// store, builds the services and handlers, and mounts them on a chi router.
//
// ROUTES:
//
//	GET  /healthz
//	GET  /api/highlight.css
//	GET  /view?id=&categoryid=&snipid=&highlight=1              view
//	GET  /api/activities/{activityID}/categories                  view
//	GET  /api/activities/{activityID}/categories/options          view
//	POST /api/activities/{activityID}/categories                  addcategory
//	GET  /api/activities/{activityID}/categories/{categoryID}/snips view
//	GET  /api/activities/{activityID}/snips/latest                view
//	POST /api/activities/{activityID}/snips                       addsnip
//	GET  /api/activities/{activityID}/snips/{snipID}              view
//	PUT  /api/activities/{activityID}/snips/{snipID}              addsnip
//
// The right-hand column is the capability (mod/snippet:*) the token must carry.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/snippet-activity/internal/auth"
	"github.com/sakif/snippet-activity/internal/config"
	"github.com/sakif/snippet-activity/internal/format"
	"github.com/sakif/snippet-activity/internal/handler"
	"github.com/sakif/snippet-activity/internal/highlight"
	"github.com/sakif/snippet-activity/internal/middleware"
	"github.com/sakif/snippet-activity/internal/model"
	"github.com/sakif/snippet-activity/internal/repository/sqlstore"
	"github.com/sakif/snippet-activity/internal/service"
)

// Server owns the store and the router. The store is closed when Start returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqlstore.DB
	tokens *auth.TokenService

	activities  *service.ActivityService
	categories  *service.CategoryService
	snips       *service.SnipService
	views       *service.ViewService
	highlighter *highlight.Highlighter
}

// New opens the database and wires every layer.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == sqlstore.DriverSQLite && cfg.Database.DSN != ":memory:" {
		dir := filepath.Dir(cfg.Database.DSN)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	db, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	highlighter, err := highlight.New(highlight.Options{
		Style:     cfg.Highlight.Style,
		CacheSize: cfg.Highlight.CacheSize,
		Logger:    logger,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	activities := service.NewActivityService(db, logger)
	categories := service.NewCategoryService(db, db, logger)
	snips := service.NewSnipService(db, categories, cfg.Server.BaseURL, logger)
	views := service.NewViewService(categories, snips, auth.Authorizer{}, logger,
		service.WithDescriptionRenderer(format.NewRenderer()),
		service.WithHighlighter(highlighter),
	)

	s := &Server{
		router:      chi.NewRouter(),
		config:      cfg,
		logger:      logger,
		db:          db,
		tokens:      tokens,
		activities:  activities,
		categories:  categories,
		snips:       snips,
		views:       views,
		highlighter: highlighter,
	}
	s.setupRoutes()
	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	viewHandler := handler.NewViewHandler(s.activities, s.views, s.highlighter, s.logger)
	categoryHandler := handler.NewCategoryHandler(s.activities, s.categories, s.logger)
	snipHandler := handler.NewSnipHandler(s.activities, s.snips, s.logger)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/highlight.css", viewHandler.HandleStylesheet)

	canAddSnip := auth.RequireCapability(model.CapabilityAddSnip)
	canAddCategory := auth.RequireCapability(model.CapabilityAddCategory)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(s.tokens, s.logger))
		r.Use(middleware.CaptureRequest)
		r.Use(auth.RequireCapability(model.CapabilityView))

		r.Get("/view", viewHandler.HandleView)

		r.Route("/api/activities/{activityID}", func(r chi.Router) {
			r.Get("/categories", categoryHandler.HandleList)
			r.Get("/categories/options", categoryHandler.HandleOptions)
			r.With(canAddCategory).Post("/categories", categoryHandler.HandleCreate)
			r.Get("/categories/{categoryID}/snips", snipHandler.HandleListForCategory)

			r.Get("/snips/latest", snipHandler.HandleLatest)
			r.With(canAddSnip).Post("/snips", snipHandler.HandleCreate)
			r.Get("/snips/{snipID}", snipHandler.HandleGet)
			r.With(canAddSnip).Put("/snips/{snipID}", snipHandler.HandleUpdate)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok","database":"` + s.db.Dialect() + `"}`))
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the store.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("baseURL", s.config.Server.BaseURL),
			slog.String("database", s.db.Dialect()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Close releases the store without serving. Used when New succeeded but Start
// is never called.
func (s *Server) Close() error {
	return s.db.Close()
}
