package checker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leozw/domain-inspector/internal/core"
	"github.com/leozw/domain-inspector/internal/normalize"
)

var ErrNoDomainName = errors.New("registration record has no domain name")

// RawWhoisRecord is a registration record as the client saw it. Every field
// may be absent, a single value or a list.
type RawWhoisRecord struct {
	DomainName     normalize.Value
	Registrar      normalize.Value
	CreationDate   normalize.Value
	ExpirationDate normalize.Value
	UpdatedDate    normalize.Value
	Status         normalize.Value
	NameServers    normalize.Value
}

func (r *RawWhoisRecord) hasDomainName() bool {
	if r == nil {
		return false
	}
	first, ok := r.DomainName.First()
	return ok && !first.IsNull()
}

type WhoisClient interface {
	Query(ctx context.Context, name string) (*RawWhoisRecord, error)
}

type WHOISChecker struct {
	client WhoisClient
	logger *zap.Logger
}

func NewWHOISChecker(client WhoisClient, logger *zap.Logger) *WHOISChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WHOISChecker{
		client: client,
		logger: logger.With(zap.String("source", SourceRegistration)),
	}
}

// Lookup queries the registration record for mainDomain once. Failures come
// back as a RegistrationInfo carrying only an error message.
func (w *WHOISChecker) Lookup(ctx context.Context, mainDomain string) core.RegistrationInfo {
	record, err := w.client.Query(ctx, mainDomain)
	if err == nil && !record.hasDomainName() {
		err = ErrNoDomainName
	}
	if err != nil {
		w.logger.Warn("Registration lookup failed",
			zap.String("domain", mainDomain),
			zap.Error(err),
		)
		return core.RegistrationFailure(fmt.Sprintf("registration lookup failed: %v", err))
	}

	return core.NewRegistrationInfo(
		normalize.Registrar(record.Registrar),
		normalize.Date(record.CreationDate),
		normalize.Date(record.ExpirationDate),
		normalize.Date(record.UpdatedDate),
		normalize.Status(record.Status),
		normalize.NameServers(record.NameServers),
	)
}

// WhoisNetClient queries registration records over the WHOIS protocol and
// parses the free-text answer.
type WhoisNetClient struct {
	client  *whois.Client
	limiter *rate.Limiter
}

// NewWhoisNetClient builds a client with the given query timeout. perMinute
// caps outgoing queries; zero disables the limit.
func NewWhoisNetClient(timeout time.Duration, perMinute int) *WhoisNetClient {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	return &WhoisNetClient{
		client:  whois.NewClient().SetTimeout(timeout),
		limiter: limiter,
	}
}

func (c *WhoisNetClient) Query(ctx context.Context, name string) (*RawWhoisRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("whois rate limit: %w", err)
	}

	raw, err := c.client.Whois(name)
	if err != nil {
		return nil, fmt.Errorf("whois query failed: %w", err)
	}

	return ParseWhois(raw)
}

// ParseWhois converts raw WHOIS text into a RawWhoisRecord.
func ParseWhois(raw string) (*RawWhoisRecord, error) {
	info, err := whoisparser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("whois parse failed: %w", err)
	}
	if info.Domain == nil {
		return nil, ErrNoDomainName
	}

	record := &RawWhoisRecord{
		DomainName:     normalize.SingleText(info.Domain.Domain),
		CreationDate:   parsedDate(info.Domain.CreatedDateInTime, info.Domain.CreatedDate),
		ExpirationDate: parsedDate(info.Domain.ExpirationDateInTime, info.Domain.ExpirationDate),
		UpdatedDate:    parsedDate(info.Domain.UpdatedDateInTime, info.Domain.UpdatedDate),
		Status:         normalize.TextList(info.Domain.Status),
		NameServers:    normalize.TextList(info.Domain.NameServers),
	}
	if info.Registrar != nil {
		record.Registrar = normalize.SingleText(strings.TrimSpace(info.Registrar.Name))
	}

	return record, nil
}

// parsedDate prefers the parser's timestamp and keeps the raw text when the
// parser could not read it.
func parsedDate(parsed *time.Time, text string) normalize.Value {
	if parsed != nil {
		return normalize.Single(normalize.Time(*parsed))
	}
	return normalize.SingleText(text)
}
