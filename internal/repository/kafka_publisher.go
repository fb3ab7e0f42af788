package repository

import (
	"context"

	"MCMTracker/internal/domain/models"
	drepo "MCMTracker/internal/domain/repository"
	pkgkafka "MCMTracker/pkg/kafka"
)

// KafkaSnapshotPublisher publishes SnapshotBuilt events keyed by snapshot
// key.
type KafkaSnapshotPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ drepo.SnapshotPublisher = (*KafkaSnapshotPublisher)(nil)

func NewKafkaSnapshotPublisher(p *pkgkafka.Producer, topic string) *KafkaSnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: p, topic: topic}
}

func (p *KafkaSnapshotPublisher) PublishSnapshotBuilt(ctx context.Context, evt *models.SnapshotBuilt) error {
	return p.producer.Publish(ctx, p.topic, []byte(evt.Key), evt)
}

func (p *KafkaSnapshotPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSnapshotBuilt(context.Context, *models.SnapshotBuilt) error { return nil }
func (NoopPublisher) Close() error                                                      { return nil }
