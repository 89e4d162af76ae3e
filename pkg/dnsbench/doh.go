package dnsbench

import (
	"context"
	"net/http"
	"time"

	"github.com/miekg/dns"
	"github.com/quic-go/quic-go/http3"
	"github.com/tantalor93/doh-go/doh"
	"golang.org/x/net/http2"
)

// dohTransport exchanges DNS messages as application/dns-message POST
// requests. The HTTP client is pooled for the lifetime of the transport so
// repeated queries against the same endpoint reuse connections. Connection
// and query phases cannot be separated without stream introspection, so the
// whole round trip is reported as query time, and the answering endpoint is
// the configured URL rather than a numeric address.
type dohTransport struct {
	url    string
	client *doh.Client
	rt     http.RoundTripper
}

func newDohTransport(url string, protocol string) *dohTransport {
	var rt http.RoundTripper
	switch protocol {
	case HTTP3Proto:
		rt = &http3.RoundTripper{}
	case HTTP2Proto:
		rt = &http2.Transport{}
	case HTTP1Proto:
		fallthrough
	default:
		rt = &http.Transport{}
	}
	httpClient := http.Client{Transport: rt}
	return &dohTransport{
		url:    url,
		client: doh.NewClient(url, doh.WithHTTPClient(&httpClient)),
		rt:     rt,
	}
}

func (t *dohTransport) roundTrip(ctx context.Context, msg *dns.Msg, timeout time.Duration) (*dns.Msg, TimingBreakdown, string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := t.client.SendViaPost(ctx, msg)
	if err != nil {
		return nil, TimingBreakdown{}, "", err
	}
	total := time.Since(start)
	return resp, TimingBreakdown{Total: total, Query: total}, t.url, nil
}

func (t *dohTransport) close() error {
	switch rt := t.rt.(type) {
	case *http.Transport:
		rt.CloseIdleConnections()
	case *http2.Transport:
		rt.CloseIdleConnections()
	case *http3.RoundTripper:
		return rt.Close()
	}
	return nil
}
