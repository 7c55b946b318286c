// Package server exposes the summarizer over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docsum/internal/auth"
	"docsum/internal/domain"
	"docsum/internal/export"
	"docsum/internal/pipeline"
)

const maxJSONBodyBytes = 1 << 20

// DocumentSummarizer runs one uploaded document through extraction and generation.
type DocumentSummarizer interface {
	Summarize(ctx context.Context, doc pipeline.Document, summaryType domain.SummaryType) (domain.Summary, error)
}

// HistoryStore persists summaries per user; "" is the anonymous scope.
type HistoryStore interface {
	ListSummaries(ctx context.Context, userID string) ([]domain.Summary, error)
	SaveSummary(ctx context.Context, userID string, s domain.Summary) error
	DeleteSummary(ctx context.Context, userID string, id string) (bool, error)
}

type Options struct {
	MaxUploadBytes int64
	SecureCookies  bool
	// Exporter renders downloads; nil uses the default fonts.
	Exporter *export.Exporter
}

type Server struct {
	pipeline DocumentSummarizer
	history  HistoryStore
	auth     *auth.Service
	google   *auth.Google
	exporter *export.Exporter
	opts     Options
	log      *slog.Logger
}

// New builds a server. google may be nil when Google sign-in is not configured.
func New(
	p DocumentSummarizer,
	history HistoryStore,
	authService *auth.Service,
	google *auth.Google,
	opts Options,
	log *slog.Logger,
) *Server {
	exporter := opts.Exporter
	if exporter == nil {
		exporter, _ = export.New(nil)
	}

	return &Server{
		pipeline: p,
		history:  history,
		auth:     authService,
		google:   google,
		exporter: exporter,
		opts:     opts,
		log:      log,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware(s.auth.Secret(), s.opts.SecureCookies, s.log))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/summarize", s.handleSummarize)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleListHistory)
			r.Post("/", s.handleSaveHistory)
			r.Delete("/{id}", s.handleDeleteHistory)
		})

		r.Post("/export/{format}", s.handleExport)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signin/credentials", s.handleCredentialsSignIn)
			r.Get("/signin/google", s.handleGoogleSignIn)
			r.Get("/callback/google", s.handleGoogleCallback)
			r.Get("/session", s.handleSession)
			r.Post("/signout", s.handleSignOut)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
