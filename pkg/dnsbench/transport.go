package dnsbench

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/miekg/dns"
)

// ErrUnsupportedTransport is returned when a transport is requested for a
// resolver whose configuration does not carry what the transport needs, for
// example DoT without a TLS hostname. It is raised at construction time,
// before any network I/O is attempted.
var ErrUnsupportedTransport = errors.New("transport is not supported by the resolver")

// transport is the contract shared by all DNS transports: one
// request/response round trip bound by a single timeout, returning the raw
// response, a timing breakdown and the identity of the answering endpoint.
type transport interface {
	roundTrip(ctx context.Context, msg *dns.Msg, timeout time.Duration) (*dns.Msg, TimingBreakdown, string, error)
	close() error
}

// newTransport constructs a transport of the given type for the resolver.
// Unsupported combinations fail fast with ErrUnsupportedTransport.
func newTransport(typ Transport, resolver ResolverConfig, dohProtocol string) (transport, error) {
	switch typ {
	case UDP:
		return &udpTransport{
			addr: hostPort(resolver.IPv4, "53"),
			client: &dns.Client{
				Net:     "udp",
				UDPSize: DefaultEdns0BufferSize,
			},
		}, nil
	case TCP:
		return &tcpTransport{
			addr:   hostPort(resolver.IPv4, "53"),
			client: &dns.Client{Net: "tcp"},
		}, nil
	case DOT:
		if resolver.DotHostname == "" {
			return nil, fmt.Errorf("resolver %s has no DoT hostname configured: %w", resolver.Name, ErrUnsupportedTransport)
		}
		return &tcpTransport{
			addr: hostPort(resolver.IPv4, "853"),
			client: &dns.Client{
				Net:       "tcp-tls",
				TLSConfig: &tls.Config{ServerName: resolver.DotHostname, MinVersion: tls.VersionTLS12},
			},
		}, nil
	case DOH:
		if resolver.DohURL == "" {
			return nil, fmt.Errorf("resolver %s has no DoH URL configured: %w", resolver.Name, ErrUnsupportedTransport)
		}
		return newDohTransport(resolver.DohURL, dohProtocol), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", typ)
	}
}

// udpTransport is connectionless, the entire round trip counts as query time.
type udpTransport struct {
	addr   string
	client *dns.Client
}

func (t *udpTransport) roundTrip(ctx context.Context, msg *dns.Msg, timeout time.Duration) (*dns.Msg, TimingBreakdown, string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, _, err := t.client.ExchangeContext(ctx, msg, t.addr)
	if err != nil {
		return nil, TimingBreakdown{}, "", err
	}
	total := time.Since(start)
	return resp, TimingBreakdown{Total: total, Query: total}, t.addr, nil
}

func (t *udpTransport) close() error { return nil }

// tcpTransport carries DNS over a 2-byte length-prefixed stream, plain or
// TLS-wrapped depending on the client network. The connect phase, including
// the TLS handshake for DoT, is measured separately from the exchange.
type tcpTransport struct {
	addr   string
	client *dns.Client
}

func (t *tcpTransport) roundTrip(ctx context.Context, msg *dns.Msg, timeout time.Duration) (*dns.Msg, TimingBreakdown, string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	connectStart := time.Now()
	conn, err := t.client.DialContext(ctx, t.addr)
	if err != nil {
		return nil, TimingBreakdown{}, "", err
	}
	connection := time.Since(connectStart)
	defer conn.Close()

	queryStart := time.Now()
	resp, _, err := t.client.ExchangeWithConnContext(ctx, msg, conn)
	if err != nil {
		return nil, TimingBreakdown{}, "", err
	}
	query := time.Since(queryStart)

	timing := TimingBreakdown{
		Total:      connection + query,
		Connection: connection,
		Query:      query,
	}
	return resp, timing, t.addr, nil
}

func (t *tcpTransport) close() error { return nil }

func hostPort(host, defaultPort string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, defaultPort)
}

// isTimeout reports whether err represents an exceeded per-attempt timeout
// as opposed to any other I/O failure.
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err)
}
