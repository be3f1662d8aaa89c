package commands

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/leozw/domain-inspector/internal/checker"
	"github.com/leozw/domain-inspector/internal/config"
	"github.com/leozw/domain-inspector/internal/lookup"
	"github.com/leozw/domain-inspector/internal/metrics"
	"github.com/leozw/domain-inspector/internal/storage/postgres"
	"github.com/leozw/domain-inspector/internal/storage/redis"
)

// app holds everything a command needs, built once from configuration.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	service  *lookup.Service
	closers  []func() error
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	return zc.Build()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	analyzer := checker.NewAnalyzer(
		checker.NewWHOISChecker(checker.NewWhoisNetClient(cfg.Lookup.WhoisTimeout, cfg.Lookup.WhoisRateLimit), logger),
		checker.NewDNSChecker(checker.NewDNSResolver(cfg.Lookup.Nameserver, cfg.Lookup.DNSTimeout, cfg.Lookup.DNSLifetime), logger),
		checker.NewTLSChecker(checker.NewHTTPSClient(cfg.Lookup.TLSTimeout), cfg.Lookup.TLSTimeout, logger),
		logger,
		checker.WithSequential(cfg.Lookup.Sequential),
		checker.WithMetrics(collector),
	)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
	}

	opts := []lookup.Option{lookup.WithMetrics(collector)}

	if cfg.Cache.RedisURL != "" {
		client := redis.NewClient(cfg.Cache.RedisURL)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("Report cache unavailable, continuing without it", zap.Error(err))
			_ = client.Close()
		} else {
			opts = append(opts, lookup.WithCache(redis.NewReportCache(client, cfg.Cache.TTL)))
			a.closers = append(a.closers, client.Close)
			logger.Info("Report cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
		}
	}

	if cfg.Database.URL != "" {
		if db, err := openHistory(cfg.Database); err != nil {
			logger.Warn("Report history unavailable, continuing without it", zap.Error(err))
		} else {
			opts = append(opts, lookup.WithHistory(postgres.NewReportRepository(db)))
			a.closers = append(a.closers, db.Close)
			logger.Info("Report history enabled")
		}
	}

	a.service = lookup.NewService(analyzer, logger, opts...)
	return a, nil
}

func openHistory(cfg config.DatabaseConfig) (*postgres.DB, error) {
	if err := postgres.Migrate(cfg.URL); err != nil {
		return nil, err
	}
	return postgres.NewConnection(cfg.URL, cfg.MaxConnections, cfg.MaxIdleConns)
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Warn("Failed to close resource", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
