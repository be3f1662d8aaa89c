package lookup

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leozw/domain-inspector/internal/core"
	"github.com/leozw/domain-inspector/internal/metrics"
)

// Analyzer builds a fresh report for one raw input.
type Analyzer interface {
	Analyze(ctx context.Context, input string) (*core.DomainReport, error)
}

// Cache holds recent reports keyed by the extracted domain.
type Cache interface {
	Get(ctx context.Context, domain string) (*core.DomainReport, bool, error)
	Set(ctx context.Context, report *core.DomainReport) error
}

// History persists every freshly built report.
type History interface {
	Save(ctx context.Context, report *core.DomainReport) error
	ListByDomain(ctx context.Context, domain string, limit int) ([]*core.DomainReport, error)
}

// Service is the entry point shared by the console, batch and HTTP surfaces.
// Cache and history are optional; their failures are logged and never fail a
// lookup.
type Service struct {
	analyzer Analyzer
	cache    Cache
	history  History
	metrics  *metrics.Collector
	logger   *zap.Logger
}

type Option func(*Service)

func WithCache(cache Cache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithHistory(history History) Option {
	return func(s *Service) { s.history = history }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(analyzer Analyzer, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		analyzer: analyzer,
		logger:   logger.With(zap.String("component", "lookup")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns a report for input and whether it came from the cache. Input
// errors are returned before the cache is touched. fresh skips the cache read
// but still refreshes the cached entry.
func (s *Service) Lookup(ctx context.Context, input string, fresh bool) (*core.DomainReport, bool, error) {
	domain, _, err := core.ParseDomain(input)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil && !fresh {
		if cached, ok := s.cachedReport(ctx, domain); ok {
			return cached, true, nil
		}
	}

	report, err := s.analyzer.Analyze(ctx, input)
	if err != nil {
		return nil, false, err
	}

	s.store(ctx, report)
	return report, false, nil
}

func (s *Service) cachedReport(ctx context.Context, domain string) (*core.DomainReport, bool) {
	report, ok, err := s.cache.Get(ctx, domain)
	switch {
	case err != nil:
		s.metrics.RecordCache("error")
		s.logger.Warn("Failed to read cached report", zap.String("domain", domain), zap.Error(err))
		return nil, false
	case !ok:
		s.metrics.RecordCache("miss")
		return nil, false
	default:
		s.metrics.RecordCache("hit")
		s.logger.Debug("Serving cached report", zap.String("domain", domain))
		return report, true
	}
}

func (s *Service) store(ctx context.Context, report *core.DomainReport) {
	if s.cache != nil {
		if err := s.cache.Set(ctx, report); err != nil {
			s.logger.Warn("Failed to cache report", zap.String("domain", report.Domain), zap.Error(err))
		}
	}
	if s.history != nil {
		if err := s.history.Save(ctx, report); err != nil {
			s.logger.Warn("Failed to save report history", zap.String("domain", report.Domain), zap.Error(err))
		}
	}

	s.logger.Info("Domain analyzed",
		zap.String("domain", report.Domain),
		zap.String("report_id", report.ID.String()),
		zap.Duration("elapsed", report.Elapsed.Round(time.Millisecond)),
	)
}

// HistoryEnabled reports whether reports are being persisted.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

// History lists stored reports for a domain, newest first.
func (s *Service) History(ctx context.Context, domain string, limit int) ([]*core.DomainReport, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.ListByDomain(ctx, domain, limit)
}
