package checker

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leozw/domain-inspector/internal/core"
)

func TestDNSChecker_Lookup(t *testing.T) {
	resolver := &fakeResolver{
		answers: map[core.RecordType][]string{
			core.RecordA:   {"192.0.2.20", "192.0.2.10"},
			core.RecordMX:  {"10 mx1.example.com.", "20 mx2.example.com."},
			core.RecordTXT: {"v=spf1 -all"},
		},
		errs: map[core.RecordType]error{
			core.RecordAAAA: errors.New("i/o timeout"),
			core.RecordNS:   errors.New("NXDOMAIN"),
		},
	}

	records := NewDNSChecker(resolver, nil).Lookup(context.Background(), "example.com")

	assert.Equal(t, int32(len(core.RecordTypes)), resolver.calls.Load(), "each type queried exactly once")
	assert.Equal(t, core.DNSRecordSet{
		core.RecordA:   {"192.0.2.20", "192.0.2.10"},
		core.RecordMX:  {"10 mx1.example.com.", "20 mx2.example.com."},
		core.RecordTXT: {"v=spf1 -all"},
	}, records)
	assert.Equal(t, []core.RecordType{core.RecordA, core.RecordMX, core.RecordTXT}, records.Types())
}

func TestDNSChecker_PanickingTypeIsOmitted(t *testing.T) {
	resolver := &fakeResolver{
		answers: map[core.RecordType][]string{core.RecordA: {"192.0.2.1"}},
		panics:  map[core.RecordType]any{core.RecordAAAA: "resolver exploded"},
	}

	records := NewDNSChecker(resolver, nil).Lookup(context.Background(), "example.com")

	assert.Equal(t, core.DNSRecordSet{core.RecordA: {"192.0.2.1"}}, records)
	assert.Equal(t, int32(len(core.RecordTypes)), resolver.calls.Load())
}

func TestDNSChecker_AllFail(t *testing.T) {
	resolver := &fakeResolver{}
	records := NewDNSChecker(resolver, nil).Lookup(context.Background(), "example.com")
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

// startDNSServer runs an in-process UDP DNS server answering from zone.
func startDNSServer(t *testing.T, zone map[uint16][]string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	serveDNS(t, &dns.Server{
		PacketConn: pc,
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(r)
			q := r.Question[0]
			if q.Name != "example.com." {
				m.Rcode = dns.RcodeNameError
			}
			for _, record := range zone[q.Qtype] {
				rr, err := dns.NewRR(record)
				if err == nil {
					m.Answer = append(m.Answer, rr)
				}
			}
			_ = w.WriteMsg(m)
		}),
	})
	return pc.LocalAddr().String()
}

func TestDNSResolver_Resolve(t *testing.T) {
	addr := startDNSServer(t, map[uint16][]string{
		dns.TypeA: {
			"example.com. 300 IN CNAME edge.example.net.",
			"example.com. 300 IN A 192.0.2.2",
			"example.com. 300 IN A 192.0.2.1",
		},
		dns.TypeMX:  {"example.com. 300 IN MX 10 mail.example.com."},
		dns.TypeTXT: {`example.com. 300 IN TXT "v=spf1" "-all"`},
		dns.TypeNS:  {"example.com. 300 IN NS a.iana-servers.net."},
	})

	resolver := NewDNSResolver(addr, 2*time.Second, 2*time.Second)
	ctx := context.Background()

	a, err := resolver.Resolve(ctx, "example.com", core.RecordA)
	require.NoError(t, err)
	assert.Equal(t, []string{"192.0.2.2", "192.0.2.1"}, a, "resolver order kept, CNAME skipped")

	mx, err := resolver.Resolve(ctx, "example.com", core.RecordMX)
	require.NoError(t, err)
	assert.Equal(t, []string{"10 mail.example.com."}, mx)

	txt, err := resolver.Resolve(ctx, "example.com", core.RecordTXT)
	require.NoError(t, err)
	assert.Equal(t, []string{"v=spf1 -all"}, txt)

	ns, err := resolver.Resolve(ctx, "example.com", core.RecordNS)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.iana-servers.net."}, ns)

	_, err = resolver.Resolve(ctx, "example.com", core.RecordAAAA)
	assert.ErrorIs(t, err, ErrNoAnswer)

	_, err = resolver.Resolve(ctx, "missing.example.org", core.RecordA)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NXDOMAIN")

	_, err = resolver.Resolve(ctx, "example.com", core.RecordType("SRV"))
	assert.Error(t, err)
}

func TestDNSChecker_WithResolverServer(t *testing.T) {
	addr := startDNSServer(t, map[uint16][]string{
		dns.TypeA:     {"example.com. 60 IN A 192.0.2.7"},
		dns.TypeCNAME: {"example.com. 60 IN CNAME other.example.net."},
	})

	checker := NewDNSChecker(NewDNSResolver(addr, time.Second, time.Second), nil)
	records := checker.Lookup(context.Background(), "example.com")

	assert.Equal(t, core.DNSRecordSet{
		core.RecordA:     {"192.0.2.7"},
		core.RecordCNAME: {"other.example.net."},
	}, records)
}

func serveDNS(t *testing.T, server *dns.Server) {
	t.Helper()
	started := make(chan struct{})
	server.NotifyStartedFunc = func() { close(started) }
	go func() { _ = server.ActivateAndServe() }()
	t.Cleanup(func() { _ = server.Shutdown() })

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("dns server did not start")
	}
}

func TestDNSResolver_TruncatedAnswerRetriesOverTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	pc, err := net.ListenPacket("udp", ln.Addr().String())
	require.NoError(t, err)

	var udpSize atomic.Int32
	handler := dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		if _, tcp := w.RemoteAddr().(*net.TCPAddr); !tcp {
			if opt := r.IsEdns0(); opt != nil {
				udpSize.Store(int32(opt.UDPSize()))
			}
			m.Truncated = true
			_ = w.WriteMsg(m)
			return
		}
		for _, record := range []string{
			`example.com. 300 IN TXT "v=spf1 include:_spf.example.net -all"`,
			`example.com. 300 IN TXT "google-site-verification=abc"`,
		} {
			if rr, err := dns.NewRR(record); err == nil {
				m.Answer = append(m.Answer, rr)
			}
		}
		_ = w.WriteMsg(m)
	})
	serveDNS(t, &dns.Server{PacketConn: pc, Handler: handler})
	serveDNS(t, &dns.Server{Listener: ln, Handler: handler})

	resolver := NewDNSResolver(ln.Addr().String(), 2*time.Second, 2*time.Second)
	txt, err := resolver.Resolve(context.Background(), "example.com", core.RecordTXT)
	require.NoError(t, err)

	assert.Equal(t, []string{"v=spf1 include:_spf.example.net -all", "google-site-verification=abc"}, txt)
	assert.Equal(t, int32(ednsBufferSize), udpSize.Load())
}

func TestResolveNameserver(t *testing.T) {
	assert.Equal(t, "1.1.1.1:53", resolveNameserver("1.1.1.1"))
	assert.Equal(t, "10.0.0.1:5353", resolveNameserver("10.0.0.1:5353"))
	assert.NotEmpty(t, resolveNameserver(""))
}
