package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leozw/domain-inspector/internal/core"
	"github.com/leozw/domain-inspector/internal/metrics"
)

const (
	SourceRegistration = "registration"
	SourceDNS          = "dns"
	SourceTLS          = "tls"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
	outcomeEmpty = "empty"
	outcomePanic = "panic"
)

// Analyzer runs the three source lookups for one input and joins their
// results into a DomainReport.
type Analyzer struct {
	whois      *WHOISChecker
	dns        *DNSChecker
	tls        *TLSChecker
	sequential bool
	metrics    *metrics.Collector
	logger     *zap.Logger
}

type Option func(*Analyzer)

// WithSequential runs the lookups one after another instead of concurrently.
func WithSequential(sequential bool) Option {
	return func(a *Analyzer) {
		a.sequential = sequential
	}
}

func WithMetrics(collector *metrics.Collector) Option {
	return func(a *Analyzer) {
		a.metrics = collector
	}
}

func NewAnalyzer(whois *WHOISChecker, dns *DNSChecker, tls *TLSChecker, logger *zap.Logger, opts ...Option) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Analyzer{
		whois:  whois,
		dns:    dns,
		tls:    tls,
		logger: logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze validates input and queries registration (by main domain), DNS and
// TLS (by domain). Only an invalid input produces an error; a failing source
// is recorded inside its own section of the report.
func (a *Analyzer) Analyze(ctx context.Context, input string) (*core.DomainReport, error) {
	domain, mainDomain, err := core.ParseDomain(input)
	if err != nil {
		a.metrics.RecordAnalysis("invalid_input")
		return nil, err
	}

	var (
		registration core.RegistrationInfo
		records      core.DNSRecordSet
		status       core.TLSStatus
	)

	tasks := []func(){
		func() { registration = a.lookupRegistration(ctx, mainDomain) },
		func() { records = a.lookupDNS(ctx, domain) },
		func() { status = a.checkTLS(ctx, domain) },
	}

	start := time.Now()
	if a.sequential {
		for _, task := range tasks {
			task()
		}
	} else {
		var g errgroup.Group
		for _, task := range tasks {
			g.Go(func() error {
				task()
				return nil
			})
		}
		_ = g.Wait()
	}
	elapsed := time.Since(start)

	a.metrics.RecordAnalysis(outcomeOK)
	a.logger.Debug("Domain analysed",
		zap.String("domain", domain),
		zap.String("main_domain", mainDomain),
		zap.Bool("registration_failed", registration.Failed()),
		zap.Int("dns_types", len(records)),
		zap.String("tls", string(status.Outcome)),
		zap.Duration("elapsed", elapsed),
	)

	return &core.DomainReport{
		ID:           uuid.New(),
		Domain:       domain,
		MainDomain:   mainDomain,
		Registration: registration,
		DNS:          records,
		TLS:          status,
		Elapsed:      elapsed,
		CheckedAt:    time.Now().UTC(),
	}, nil
}

func (a *Analyzer) lookupRegistration(ctx context.Context, mainDomain string) core.RegistrationInfo {
	return runSource(a, SourceRegistration, mainDomain,
		func() core.RegistrationInfo { return a.whois.Lookup(ctx, mainDomain) },
		func(r any) core.RegistrationInfo {
			return core.RegistrationFailure(fmt.Sprintf("unexpected error: %v", r))
		},
		func(info core.RegistrationInfo) string {
			if info.Failed() {
				return outcomeError
			}
			return outcomeOK
		},
	)
}

func (a *Analyzer) lookupDNS(ctx context.Context, domain string) core.DNSRecordSet {
	return runSource(a, SourceDNS, domain,
		func() core.DNSRecordSet { return a.dns.Lookup(ctx, domain) },
		func(any) core.DNSRecordSet { return core.DNSRecordSet{} },
		func(records core.DNSRecordSet) string {
			if len(records) == 0 {
				return outcomeEmpty
			}
			return outcomeOK
		},
	)
}

func (a *Analyzer) checkTLS(ctx context.Context, domain string) core.TLSStatus {
	return runSource(a, SourceTLS, domain,
		func() core.TLSStatus { return a.tls.Check(ctx, domain) },
		func(any) core.TLSStatus { return core.TLSFailure(core.TLSUnknownFailure) },
		func(status core.TLSStatus) string { return string(status.Outcome) },
	)
}

// runSource times one lookup and turns a panic into the source's failure
// value.
func runSource[T any](a *Analyzer, source, domain string, lookup func() T, onPanic func(any) T, outcome func(T) string) (result T) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Source lookup panicked",
				zap.String("source", source),
				zap.String("domain", domain),
				zap.Any("panic", r),
			)
			a.metrics.RecordSource(source, outcomePanic, time.Since(start))
			result = onPanic(r)
		}
	}()

	result = lookup()
	a.metrics.RecordSource(source, outcome(result), time.Since(start))
	return result
}
