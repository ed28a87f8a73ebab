package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"PairScope/internal/domain/repository"
	internalrepo "PairScope/internal/repository"
	"PairScope/internal/service/provider"
	"PairScope/internal/service/yahoo"
	"PairScope/internal/usecase"
	"PairScope/pkg/cache"
	pkgch "PairScope/pkg/clickhouse"
	"PairScope/pkg/config"
	xhttp "PairScope/pkg/http"
	pkgkafka "PairScope/pkg/kafka"
	"PairScope/pkg/logger"
	"PairScope/pkg/metrics"
	"PairScope/pkg/server"
)

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideHTTPClient creates the outbound client used by the price provider.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Provider.Timeout),
		xhttp.WithUserAgent(cfg.Provider.UserAgent),
		xhttp.WithRetry(cfg.Provider.Retries, cfg.Provider.RetryBackoff),
	)
}

// ProvideYahooClient creates the chart API client.
func ProvideYahooClient(cfg *config.Config, hc *xhttp.Client) *yahoo.Client {
	return yahoo.New(cfg.Provider.BaseURL,
		yahoo.WithHTTPClient(hc),
		yahoo.WithSuffix(cfg.Provider.SymbolSuffix),
		yahoo.WithInterval(repository.NormalizeInterval(cfg.Provider.Interval)),
		yahoo.WithLookbackMonths(cfg.Provider.LookbackMonths),
	)
}

// ProvideCache creates the price cache. A disabled cache yields nil.
func ProvideCache(cfg *config.Config) (cache.Service, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}

	var c cache.Service
	switch cfg.Cache.Type {
	case "memory":
		c = cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.Memory.MaxSize))
	case "redis", "layered":
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithRedisPool(4, 1),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("price cache: %w", err)
		}
		c = rc
		if cfg.Cache.Type == "layered" {
			c = cache.NewLayeredCache(rc, cache.WithLayeredMemory(cfg.Cache.Memory.MaxSize, cfg.Cache.Memory.TTL))
		}
	default:
		return nil, nil, fmt.Errorf("price cache: unknown type %q", cfg.Cache.Type)
	}
	return c, func() { _ = c.Close() }, nil
}

// ProvidePriceProvider decorates the chart client with caching, pacing and a circuit breaker.
func ProvidePriceProvider(
	cfg *config.Config,
	upstream *yahoo.Client,
	c cache.Service,
	m repository.Metrics,
	l *logger.Logger,
) repository.PriceProvider {
	opts := []provider.Option{
		provider.WithMetrics(m),
		provider.WithLogger(l),
		provider.WithMinInterval(cfg.Provider.MinInterval),
		provider.WithBreaker(cfg.Provider.Breaker.FailureThreshold, cfg.Provider.Breaker.OpenTimeout),
	}
	if c != nil {
		opts = append(opts, provider.WithCache(c, cfg.Cache.TTL,
			cfg.Provider.Interval, cfg.Provider.LookbackMonths, cfg.Provider.SymbolSuffix))
	}
	return provider.NewGuarded("yahoo", upstream, opts...)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the store is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(4, 2, 0),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, true),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideStorage creates the result store and its tables. Returns a nil interface when disabled.
func ProvideStorage(cfg *config.Config, ch *pkgch.Client, l *logger.Logger) (repository.Storage, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewCHResults(ch, cfg.ClickHouse.Database, l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when publishing is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.BatchSize, cfg.Kafka.BatchBytes, cfg.Kafka.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the result publisher. Returns a nil interface when disabled.
func ProvidePublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaResults(producer, internalrepo.Topics{
		Scan:     cfg.Kafka.Topics.Scan,
		Backtest: cfg.Kafka.Topics.Backtest,
		Trades:   cfg.Kafka.Topics.Trades,
	})
}

// ProvideReportSink creates the CSV report writer.
func ProvideReportSink(cfg *config.Config) repository.ReportSink {
	return internalrepo.NewCSVReports(cfg.Output.Dir)
}

// ProvideUniverse reads the scan symbols and batch pairs from files.
func ProvideUniverse(cfg *config.Config) repository.Universe {
	return internalrepo.NewFileUniverse(cfg.Batch.SymbolsFile, cfg.Backtest.PairsFile)
}

func ProvideAnalyzer(p repository.PriceProvider, m repository.Metrics, l *logger.Logger) *usecase.Analyzer {
	return usecase.NewAnalyzer(p, m, l)
}

func ProvideScanner(cfg *config.Config, p repository.PriceProvider, m repository.Metrics, l *logger.Logger) *usecase.Scanner {
	return usecase.NewScanner(p, m, l, cfg.Batch.MaxPairs)
}

func ProvideBacktester(cfg *config.Config, p repository.PriceProvider, m repository.Metrics, l *logger.Logger) *usecase.Backtester {
	return usecase.NewBacktester(p, m, l, cfg.Backtest.MaxPairs)
}

// ProvideReportDispatcher fans reports out to the sink and the optional backends.
func ProvideReportDispatcher(
	sink repository.ReportSink,
	store repository.Storage,
	pub repository.Publisher,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.ReportDispatcher {
	return usecase.NewReportDispatcher(sink, store, pub, m, l)
}

// ProvideApp creates the application. The log digest ships through the producer when both are enabled.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	analyzer *usecase.Analyzer,
	scanner *usecase.Scanner,
	backtester *usecase.Backtester,
	dispatcher *usecase.ReportDispatcher,
	universe repository.Universe,
	store repository.Storage,
	producer *pkgkafka.Producer,
) *server.App {
	if cfg.Log.Digest && producer != nil {
		l.AddDigest(&logger.DigestConfig{
			TimeInterval:   cfg.Log.DigestInterval,
			CountThreshold: 100,
			Topic:          cfg.Kafka.Topics.Logs,
			Publisher:      producer,
		})
	}
	return server.New(cfg, l, analyzer, scanner, backtester, dispatcher, universe, store)
}
