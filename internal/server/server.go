package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hongminglow/faithpath-be/internal/auth"
	"github.com/hongminglow/faithpath-be/internal/config"
	"github.com/hongminglow/faithpath-be/internal/http/handlers"
	"github.com/hongminglow/faithpath-be/internal/journal"
	"github.com/hongminglow/faithpath-be/internal/middleware"
	"github.com/hongminglow/faithpath-be/internal/progress"
	"github.com/hongminglow/faithpath-be/internal/services"
	"github.com/hongminglow/faithpath-be/internal/storage"
)

// Store is the persistence surface the server needs.
type Store interface {
	storage.UserStore
	storage.ProgressStore
	storage.SessionStore
	storage.JournalStore
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store Store, log *zap.Logger) *Server {
	return &Server{inner: &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, store, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      70 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}
}

// NewHandler builds the routed HTTP handler.
func NewHandler(cfg config.Config, store Store, log *zap.Logger) http.Handler {
	var sessions storage.SessionStore
	if cfg.SessionRevocation {
		sessions = store
	}

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenManager(cfg.SessionSecret, time.Now)
	authService := services.NewAuthService(store, sessions, hasher, tokens, log.Named("auth"))
	tracker := progress.NewTracker(store, time.Now, log.Named("progress"))
	entries := journal.New(store, time.Now, log.Named("journal"))

	router := chi.NewRouter()
	router.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.Logging(log.Named("http")),
		chimw.Recoverer,
		middleware.CORS(cfg.CORSOrigins),
		chimw.Timeout(60*time.Second),
	)

	var db handlers.Pinger
	if p, ok := store.(handlers.Pinger); ok {
		db = p
	}
	handlers.NewHealthHandler(time.Now(), db).Register(router)
	handlers.NewAuthHandler(authService, cfg.IsProduction()).Register(router)
	handlers.NewProgressHandler(tracker, authService, log.Named("progress")).Register(router)
	handlers.NewJournalHandler(entries, authService, log.Named("journal")).Register(router)

	return router
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
