package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MCMTracker/internal/domain/models"
	drepo "MCMTracker/internal/domain/repository"
	pkgcache "MCMTracker/pkg/cache"
)

// SnapshotCache stores encoded snapshots verbatim so hits are
// byte-identical to what was written.
type SnapshotCache struct {
	cache pkgcache.Service
}

var _ drepo.SnapshotCache = (*SnapshotCache)(nil)

func NewSnapshotCache(c pkgcache.Service) *SnapshotCache {
	return &SnapshotCache{cache: c}
}

func (s *SnapshotCache) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	if err := s.cache.Get(ctx, key, &body); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read snapshot: %v", models.ErrStoreUnavailable, err)
	}
	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

func (s *SnapshotCache) Put(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if err := s.cache.Set(ctx, key, body, ttl); err != nil {
		return fmt.Errorf("%w: write snapshot: %v", models.ErrStoreUnavailable, err)
	}
	return nil
}
