package checker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leozw/domain-inspector/internal/core"
)

const (
	defaultNameserver = "8.8.8.8:53"
	ednsBufferSize    = 4096
)

var ErrNoAnswer = errors.New("no answer for record type")

type Resolver interface {
	Resolve(ctx context.Context, name string, recordType core.RecordType) ([]string, error)
}

type DNSChecker struct {
	resolver Resolver
	logger   *zap.Logger
}

func NewDNSChecker(resolver Resolver, logger *zap.Logger) *DNSChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DNSChecker{
		resolver: resolver,
		logger:   logger.With(zap.String("source", SourceDNS)),
	}
}

// Lookup queries every record type once. A type whose query fails or panics
// is left out of the result; the other types are unaffected.
func (d *DNSChecker) Lookup(ctx context.Context, domain string) core.DNSRecordSet {
	answers := make([][]string, len(core.RecordTypes))

	var g errgroup.Group
	for i, recordType := range core.RecordTypes {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					d.logger.Error("DNS query panicked",
						zap.String("domain", domain),
						zap.String("record_type", string(recordType)),
						zap.Any("panic", r),
					)
				}
			}()

			records, err := d.resolver.Resolve(ctx, domain, recordType)
			if err != nil {
				d.logger.Debug("DNS query failed",
					zap.String("domain", domain),
					zap.String("record_type", string(recordType)),
					zap.Error(err),
				)
				return nil
			}
			answers[i] = records
			return nil
		})
	}
	_ = g.Wait()

	records := make(core.DNSRecordSet)
	for i, recordType := range core.RecordTypes {
		if len(answers[i]) > 0 {
			records[recordType] = answers[i]
		}
	}
	return records
}

// DNSResolver issues single queries with miekg/dns. Timeout bounds each
// exchange and Lifetime the whole call.
type DNSResolver struct {
	client     *dns.Client
	tcpClient  *dns.Client
	nameserver string
	lifetime   time.Duration
}

// NewDNSResolver uses nameserver ("host:port" or "host") when set, otherwise
// the first server in /etc/resolv.conf, otherwise 8.8.8.8.
func NewDNSResolver(nameserver string, timeout, lifetime time.Duration) *DNSResolver {
	return &DNSResolver{
		client:     &dns.Client{Timeout: timeout},
		tcpClient:  &dns.Client{Net: "tcp", Timeout: timeout},
		nameserver: resolveNameserver(nameserver),
		lifetime:   lifetime,
	}
}

func resolveNameserver(configured string) string {
	if configured != "" {
		if _, _, err := net.SplitHostPort(configured); err != nil {
			return net.JoinHostPort(configured, "53")
		}
		return configured
	}
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return defaultNameserver
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port)
}

func (r *DNSResolver) Resolve(ctx context.Context, name string, recordType core.RecordType) ([]string, error) {
	qtype, ok := dnsStringToType(recordType)
	if !ok {
		return nil, fmt.Errorf("unsupported record type %q", recordType)
	}

	if r.lifetime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.lifetime)
		defer cancel()
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.RecursionDesired = true
	m.SetEdns0(ednsBufferSize, false)

	resp, _, err := r.client.ExchangeContext(ctx, m, r.nameserver)
	if err != nil {
		return nil, fmt.Errorf("DNS query failed: %w", err)
	}
	if resp.Truncated {
		resp, _, err = r.tcpClient.ExchangeContext(ctx, m, r.nameserver)
		if err != nil {
			return nil, fmt.Errorf("DNS query over TCP failed: %w", err)
		}
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("DNS query failed with code: %s", dns.RcodeToString[resp.Rcode])
	}

	var answers []string
	for _, ans := range resp.Answer {
		if value, ok := answerValue(ans, qtype); ok {
			answers = append(answers, value)
		}
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAnswer, recordType)
	}
	return answers, nil
}

// answerValue renders one answer of the asked type; other types in the
// answer section (a CNAME chain ahead of an A record, say) are skipped.
func answerValue(rr dns.RR, qtype uint16) (string, bool) {
	switch v := rr.(type) {
	case *dns.A:
		return v.A.String(), qtype == dns.TypeA
	case *dns.AAAA:
		return v.AAAA.String(), qtype == dns.TypeAAAA
	case *dns.MX:
		return fmt.Sprintf("%d %s", v.Preference, v.Mx), qtype == dns.TypeMX
	case *dns.NS:
		return v.Ns, qtype == dns.TypeNS
	case *dns.TXT:
		return strings.Join(v.Txt, " "), qtype == dns.TypeTXT
	case *dns.CNAME:
		return v.Target, qtype == dns.TypeCNAME
	default:
		return "", false
	}
}

func dnsStringToType(recordType core.RecordType) (uint16, bool) {
	switch recordType {
	case core.RecordA:
		return dns.TypeA, true
	case core.RecordAAAA:
		return dns.TypeAAAA, true
	case core.RecordMX:
		return dns.TypeMX, true
	case core.RecordNS:
		return dns.TypeNS, true
	case core.RecordTXT:
		return dns.TypeTXT, true
	case core.RecordCNAME:
		return dns.TypeCNAME, true
	default:
		return 0, false
	}
}
