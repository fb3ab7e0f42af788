//go:build wireinject
// +build wireinject

package di

import (
	"MCMTracker/pkg/config"
	"MCMTracker/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideStore,
		ProvideSessionResolver,
		ProvideQuoteProvider,
		ProvideSummarizer,
		ProvideSnapshotPublisher,
		ProvideKafkaConsumer,

		// Repositories
		ProvideBaselineStore,
		ProvideSnapshotCache,
		ProvideCoachStore,

		// Use cases
		ProvideBasket,
		ProvideSnapshotAssembler,
		ProvideCoach,
		ProvidePerformance,
		ProvideSnapshotEventsHandler,

		// Transport
		ProvideRateLimiter,
		ProvideHTTPHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
