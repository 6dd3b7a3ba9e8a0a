// Package server exposes the chat endpoint over HTTP.
package server

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/crm-assistant/internal/chat"
	"github.com/sells-group/crm-assistant/internal/model"
	"github.com/sells-group/crm-assistant/internal/monitoring"
)

// Fetcher supplies the CRM snapshot for the first turn of a conversation.
type Fetcher interface {
	FetchAnalysis(ctx context.Context, r model.DateRange, userID int64, isAdmin bool) (*model.Analysis, error)
}

// Replier streams a model reply.
type Replier interface {
	StreamReply(ctx context.Context, history []chat.Message, message, contextText string) <-chan chat.Chunk
}

// Server holds the handlers' dependencies.
type Server struct {
	analysis    Fetcher
	relay       Replier
	origins     []string
	defaultDays int
	now         func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS allow list.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithDefaultDays sets the lookback used when a request has no date filter.
func WithDefaultDays(days int) Option {
	return func(s *Server) {
		if days > 0 {
			s.defaultDays = days
		}
	}
}

// WithClock overrides the clock used for default date ranges.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a Server.
func New(analysis Fetcher, relay Replier, opts ...Option) *Server {
	s := &Server{
		analysis:    analysis,
		relay:       relay,
		defaultDays: model.DefaultRangeDays,
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// corsOptions allows no cross-origin callers when no origins are set.
// Credentials are only allowed for an explicit origin list.
func (s *Server) corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: !slices.Contains(s.origins, "*"),
		MaxAge:           300,
	}
	if len(s.origins) == 0 {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}
	return opts
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(withRequestID)
	r.Use(withRequestLogging)
	r.Use(cors.Handler(s.corsOptions()))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", monitoring.Handler())
	r.Post("/api/chat", s.handleChat)

	return r
}
