// Package ratings loads external team ratings once per process and shares the
// result across every aggregation.
package ratings

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ga2230/reefscout/internal/model"
)

// FetchTimeout bounds the single load, independent of the caller's context.
const FetchTimeout = 30 * time.Second

// Status reports what the source holds.
type Status string

const (
	StatusOff         Status = "off"
	StatusLoaded      Status = "loaded"
	StatusUnavailable Status = "unavailable"
)

// Fetcher retrieves a season's ratings. *statbotics.Client implements it.
type Fetcher interface {
	Ratings(ctx context.Context, year int) (model.Ratings, error)
}

// Cache stores a ratings snapshot between processes.
type Cache interface {
	Load(ctx context.Context, year int) (model.Ratings, bool, error)
	Store(ctx context.Context, year int, r model.Ratings) error
}

// Source fetches ratings at most once. A failed fetch is never retried; the
// source then serves an empty map.
type Source struct {
	fetcher Fetcher
	cache   Cache
	year    int
	logger  *zap.Logger

	once     sync.Once
	mu       sync.RWMutex
	ratings  model.Ratings
	status   Status
	loadedAt time.Time
}

// NewSource returns a Source for year. cache may be nil; a nil fetcher gives a
// source that is permanently off.
func NewSource(fetcher Fetcher, cache Cache, year int, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		fetcher: fetcher,
		cache:   cache,
		year:    year,
		logger:  logger,
		status:  StatusOff,
	}
}

// Get returns the ratings, fetching them on first use. The fetch outlives a
// cancelled first caller so one aborted request cannot decide the session.
func (s *Source) Get(ctx context.Context) model.Ratings {
	s.once.Do(func() {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FetchTimeout)
		defer cancel()
		s.load(loadCtx)
	})
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ratings
}

// Status reports the outcome of the first fetch, or off if none happened yet.
func (s *Source) Status() (Status, int, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, len(s.ratings), s.loadedAt
}

func (s *Source) load(ctx context.Context) {
	if s.fetcher == nil {
		s.set(model.Ratings{}, StatusOff)
		return
	}
	log := s.logger.With(zap.Int("year", s.year))

	if s.cache != nil {
		r, ok, err := s.cache.Load(ctx, s.year)
		switch {
		case err != nil:
			log.Warn("ratings cache read failed", zap.Error(err))
		case ok:
			s.set(r, StatusLoaded)
			log.Info("ratings loaded from cache", zap.Int("teams", len(r)))
			return
		}
	}

	r, err := s.fetcher.Ratings(ctx, s.year)
	if err != nil {
		log.Warn("external ratings unavailable, using local data only", zap.Error(err))
		s.set(model.Ratings{}, StatusUnavailable)
		return
	}
	s.set(r, StatusLoaded)
	log.Info("ratings fetched", zap.Int("teams", len(r)))

	if s.cache != nil {
		if err := s.cache.Store(ctx, s.year, r); err != nil {
			log.Warn("ratings cache write failed", zap.Error(err))
		}
	}
}

func (s *Source) set(r model.Ratings, st Status) {
	if r == nil {
		r = model.Ratings{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = r
	s.status = st
	s.loadedAt = time.Now()
}
