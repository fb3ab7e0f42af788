package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"MCMTracker/internal/domain/models"
	drepo "MCMTracker/internal/domain/repository"
	pkgcache "MCMTracker/pkg/cache"
	xutil "MCMTracker/pkg/util"
)

const (
	coachLatestKey  = "coach:latest"
	coachLastRunKey = "coach:last_run_ms"
)

// CoachStore keeps the latest coach output and the time it was produced.
type CoachStore struct {
	cache pkgcache.Service
	ttl   time.Duration
}

var _ drepo.CoachStore = (*CoachStore)(nil)

// NewCoachStore creates a coach store. A zero ttl keeps results until
// replaced.
func NewCoachStore(c pkgcache.Service, ttl time.Duration) *CoachStore {
	return &CoachStore{cache: c, ttl: ttl}
}

func (s *CoachStore) Latest(ctx context.Context) (*models.CoachResult, error) {
	var out models.CoachResult
	if err := s.cache.Get(ctx, coachLatestKey, &out); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read coach: %v", models.ErrStoreUnavailable, err)
	}
	return &out, nil
}

// LastRun returns the zero time when no run is recorded.
func (s *CoachStore) LastRun(ctx context.Context) (time.Time, error) {
	var raw string
	if err := s.cache.Get(ctx, coachLastRunKey, &raw); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("%w: read coach run: %v", models.ErrStoreUnavailable, err)
	}
	ms := xutil.ParseIntDefault(strings.TrimSpace(raw), 0)
	if ms <= 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(int64(ms)), nil
}

func (s *CoachStore) Save(ctx context.Context, result *models.CoachResult, at time.Time) error {
	if err := s.cache.Set(ctx, coachLatestKey, result, s.ttl); err != nil {
		return fmt.Errorf("%w: write coach: %v", models.ErrStoreUnavailable, err)
	}
	if err := s.cache.Set(ctx, coachLastRunKey, strconv.FormatInt(at.UnixMilli(), 10), 0); err != nil {
		return fmt.Errorf("%w: write coach run: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}
