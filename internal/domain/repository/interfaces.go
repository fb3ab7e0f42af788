package repository

import (
	"context"
	"time"

	"MCMTracker/internal/domain/models"
)

// QuoteProvider fetches upstream market data.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	TimeSeries(ctx context.Context, symbol string) (*models.Series, error)
	Configured() bool
}

// BaselineStore reads and bootstraps per-symbol baselines.
type BaselineStore interface {
	// GetOrBootstrap returns the stored baseline, or persists previousClose
	// as the baseline when none exists. created reports whether this call
	// wrote the record. A nil baseline means unavailable.
	GetOrBootstrap(ctx context.Context, symbol string, previousClose *float64, day string) (baseline *float64, created bool, err error)
}

// SnapshotCache stores assembled snapshots as opaque bytes.
type SnapshotCache interface {
	// Get returns (nil, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// CoachStore persists the latest narrative summary and its run stamp.
type CoachStore interface {
	Latest(ctx context.Context) (*models.CoachResult, error)
	LastRun(ctx context.Context) (time.Time, error)
	Save(ctx context.Context, result *models.CoachResult, at time.Time) error
}

// SnapshotPublisher announces freshly built snapshots.
type SnapshotPublisher interface {
	PublishSnapshotBuilt(ctx context.Context, evt *models.SnapshotBuilt) error
	Close() error
}

// Metrics records snapshot engine telemetry.
type Metrics interface {
	RecordUpstream(endpoint string, d time.Duration, err error)
	RecordCacheLookup(session string, hit bool)
	RecordBootstrap(symbol string)
	RecordBuild(session string, d time.Duration)
	RecordError(kind string)
}
