package usecase

import (
	"context"
	"encoding/json"
	"time"

	"MCMTracker/internal/domain/models"
	drepo "MCMTracker/internal/domain/repository"
	pkgkafka "MCMTracker/pkg/kafka"
	applogger "MCMTracker/pkg/logger"
)

// SnapshotEventsHandler refreshes the coach when a snapshot is built. The
// coach's own interval gate keeps this from calling the summarizer on every
// event.
type SnapshotEventsHandler struct {
	topic    string
	coach    *Coach
	interval time.Duration
	metrics  drepo.Metrics
	log      *applogger.Logger
}

func NewSnapshotEventsHandler(topic string, coach *Coach, interval time.Duration, metrics drepo.Metrics, l *applogger.Logger) *SnapshotEventsHandler {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &SnapshotEventsHandler{topic: topic, coach: coach, interval: interval, metrics: metrics, log: l}
}

func (h *SnapshotEventsHandler) Topic() string { return h.topic }

// incoming message schema: {key, session, symbols, built_at}
func (h *SnapshotEventsHandler) Handle(ctx context.Context, b []byte) error {
	var evt models.SnapshotBuilt
	if err := json.Unmarshal(b, &evt); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		// malformed events are not retried
		h.log.Warn("drop malformed snapshot event", applogger.Error(err))
		return nil
	}
	if len(evt.Symbols) == 0 {
		return nil
	}

	res, err := h.coach.Refresh(ctx, evt.Symbols, h.interval)
	if err != nil {
		h.metrics.RecordError("coach_refresh")
		return err
	}
	if !res.Fresh {
		h.log.Debug("coach refreshed from event",
			applogger.String("key", evt.Key),
			applogger.String("session", string(evt.Session)),
		)
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*SnapshotEventsHandler)(nil)
