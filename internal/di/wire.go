//go:build wireinject
// +build wireinject

package di

import (
	"PairScope/pkg/config"
	"PairScope/pkg/logger"
	"PairScope/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config, l *logger.Logger) (*server.App, func(), error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Price history
		ProvideHTTPClient,
		ProvideYahooClient,
		ProvideCache,
		ProvidePriceProvider,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Report backends
		ProvideStorage,
		ProvidePublisher,
		ProvideReportSink,
		ProvideUniverse,

		// Use cases
		ProvideAnalyzer,
		ProvideScanner,
		ProvideBacktester,
		ProvideReportDispatcher,

		// Application
		ProvideApp,
	)
	return nil, nil, nil
}
