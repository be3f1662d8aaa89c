package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/leozw/domain-inspector/internal/core"
)

type HTTPSClient interface {
	Get(ctx context.Context, url string) (statusCode int, err error)
}

type TLSChecker struct {
	client  HTTPSClient
	timeout time.Duration
	logger  *zap.Logger
}

func NewTLSChecker(client HTTPSClient, timeout time.Duration, logger *zap.Logger) *TLSChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TLSChecker{
		client:  client,
		timeout: timeout,
		logger:  logger.With(zap.String("source", SourceTLS)),
	}
}

// Check makes one HTTPS request to the domain and reports how it went.
func (t *TLSChecker) Check(ctx context.Context, domain string) core.TLSStatus {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	code, err := t.client.Get(ctx, "https://"+domain)
	if err != nil {
		outcome := ClassifyTLSError(err)
		t.logger.Debug("HTTPS check failed",
			zap.String("domain", domain),
			zap.String("outcome", string(outcome)),
			zap.Error(err),
		)
		return core.TLSFailure(outcome)
	}
	return core.TLSValidStatus(code)
}

// ClassifyTLSError maps a failed HTTPS attempt onto a TLS outcome.
func ClassifyTLSError(err error) core.TLSOutcome {
	if isCertificateError(err) {
		return core.TLSInvalidCertificate
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return core.TLSNameUnresolvable
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return core.TLSConnectionRefused
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return core.TLSTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return core.TLSTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return core.TLSOtherConnectionError
	}

	return core.TLSUnknownFailure
}

func isCertificateError(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		unknownAuth  x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
		recordErr    tls.RecordHeaderError
		alertErr     tls.AlertError
		systemRoots  x509.SystemRootsError
		constraints  x509.ConstraintViolationError
		insecureAlgo x509.InsecureAlgorithmError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &alertErr) ||
		errors.As(err, &systemRoots) ||
		errors.As(err, &constraints) ||
		errors.As(err, &insecureAlgo)
}

// NetHTTPSClient is an HTTPSClient on net/http with certificate verification
// left on and the default redirect policy.
type NetHTTPSClient struct {
	client *http.Client
}

func NewHTTPSClient(timeout time.Duration) *NetHTTPSClient {
	return &NetHTTPSClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: false,
				},
				TLSHandshakeTimeout: timeout,
			},
		},
	}
}

func (c *NetHTTPSClient) Get(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "DomainInspector/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, nil
}
