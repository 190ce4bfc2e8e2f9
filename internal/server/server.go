// Package server exposes the scouting statistics over a small JSON API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ga2230/reefscout/internal/model"
	"github.com/ga2230/reefscout/internal/ratings"
)

// MaxBodySize limits import bodies to 10MB.
const MaxBodySize = 10 << 20

// Store is the record persistence the handlers need. *storage.DB implements it.
type Store interface {
	ReadAll() ([]model.MatchRecord, error)
	Append(r model.MatchRecord) error
	Import(data []byte) error
	Clear() error
}

// RatingsSource supplies external ratings. *ratings.Source implements it.
type RatingsSource interface {
	Get(ctx context.Context) model.Ratings
	Status() (ratings.Status, int, time.Time)
}

type Config struct {
	Store          Store
	Ratings        RatingsSource
	Teams          []string
	AllowedOrigins []string
	Logger         *zap.Logger
}

type Handler struct {
	store   Store
	ratings RatingsSource
	teams   []string
	known   map[string]bool
	origins []string
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	known := make(map[string]bool, len(cfg.Teams))
	for _, t := range cfg.Teams {
		known[t] = true
	}
	return &Handler{
		store:   cfg.Store,
		ratings: cfg.Ratings,
		teams:   cfg.Teams,
		known:   known,
		origins: cfg.AllowedOrigins,
		logger:  logger.Sugar(),
		now:     time.Now,
	}
}

// Router builds the chi router with middleware and every route mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/leaderboard", h.GetLeaderboard)
		r.Get("/teams/{team}", h.GetTeam)
		r.Get("/compare", h.GetCompare)
		r.Get("/ratings/status", h.GetRatingsStatus)

		r.Get("/entries", h.ListEntries)
		r.Post("/entries", h.AppendEntry)
		r.Put("/entries", h.ImportEntries)
		r.Delete("/entries", h.ClearEntries)
	})
	return r
}

// requestLogger logs one line per request with status and latency.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
