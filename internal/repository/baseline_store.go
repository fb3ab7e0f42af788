package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"MCMTracker/internal/domain/models"
	drepo "MCMTracker/internal/domain/repository"
	pkgcache "MCMTracker/pkg/cache"
	applogger "MCMTracker/pkg/logger"
	xutil "MCMTracker/pkg/util"
)

const baselineSource = "previous_close"

// BaselineRecord is the stored form of a baseline.
type BaselineRecord struct {
	Baseline       float64 `json:"baseline"`
	BootstrappedOn string  `json:"bootstrapped_on,omitempty"`
	Source         string  `json:"source,omitempty"`
}

// BaselineStore keeps one durable baseline per symbol under
// "baseline:<SYMBOL>" with no expiry.
type BaselineStore struct {
	cache pkgcache.Service
	log   *applogger.Logger
}

var _ drepo.BaselineStore = (*BaselineStore)(nil)

// NewBaselineStore creates a baseline store on c.
func NewBaselineStore(c pkgcache.Service, l *applogger.Logger) *BaselineStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &BaselineStore{cache: c, log: l}
}

// BaselineKey returns the store key for symbol.
func BaselineKey(symbol string) string {
	return pkgcache.GenerateKey("baseline", symbol)
}

// Get returns the stored baseline. found is true when a record exists even
// if it does not hold a usable number.
func (s *BaselineStore) Get(ctx context.Context, symbol string) (baseline *float64, found bool, err error) {
	var raw []byte
	if err := s.cache.Get(ctx, BaselineKey(symbol), &raw); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: read baseline %s: %v", models.ErrStoreUnavailable, symbol, err)
	}
	return ParseBaseline(raw), true, nil
}

// GetOrBootstrap returns the stored baseline or creates it from
// previousClose. The record is written create-once, so concurrent
// bootstraps converge on the first writer's value and an existing record
// is never replaced by a later previous close.
func (s *BaselineStore) GetOrBootstrap(ctx context.Context, symbol string, previousClose *float64, day string) (*float64, bool, error) {
	baseline, found, err := s.Get(ctx, symbol)
	if err != nil {
		return nil, false, err
	}
	if baseline != nil {
		return baseline, false, nil
	}
	if !models.IsFinite(previousClose) {
		return nil, false, nil
	}

	rec := BaselineRecord{Baseline: *previousClose, BootstrappedOn: day, Source: baselineSource}
	key := BaselineKey(symbol)

	if found {
		// present but unreadable
		s.log.Warn("baseline record not numeric, replacing",
			applogger.String("symbol", symbol),
			applogger.String("day", day),
		)
		if err := s.cache.Set(ctx, key, rec, 0); err != nil {
			return nil, false, fmt.Errorf("%w: write baseline %s: %v", models.ErrStoreUnavailable, symbol, err)
		}
		v := rec.Baseline
		return &v, true, nil
	}

	created, err := s.cache.SetNX(ctx, key, rec, 0)
	if err != nil {
		return nil, false, fmt.Errorf("%w: write baseline %s: %v", models.ErrStoreUnavailable, symbol, err)
	}
	if !created {
		baseline, _, err := s.Get(ctx, symbol)
		return baseline, false, err
	}

	s.log.Info("baseline bootstrapped",
		applogger.String("symbol", symbol),
		applogger.Float64("baseline", rec.Baseline),
		applogger.String("day", day),
	)
	v := rec.Baseline
	return &v, true, nil
}

// ParseBaseline accepts a bare number, a numeric string or an object with
// a "baseline" field. Anything else is nil.
func ParseBaseline(raw []byte) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil
		}
		inner, ok := obj["baseline"]
		if !ok {
			return nil
		}
		return parseNumber(inner)
	}
	return parseNumber(raw)
}

func parseNumber(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
	}
	n, ok := xutil.ParseFloat(s)
	if !ok {
		return nil
	}
	return models.Finite(n)
}
