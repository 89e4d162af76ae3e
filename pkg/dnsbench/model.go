package dnsbench

import (
	"time"

	"github.com/miekg/dns"
)

// Transport identifies the network protocol framing that carries a DNS query.
type Transport string

const (
	// UDP is standard connectionless DNS.
	UDP Transport = "udp"
	// TCP is DNS over a length-prefixed TCP stream.
	TCP Transport = "tcp"
	// DOT is DNS over TLS.
	DOT Transport = "dot"
	// DOH is DNS over HTTPS.
	DOH Transport = "doh"
)

// AllTransports returns every supported transport in a stable order.
func AllTransports() []Transport {
	return []Transport{UDP, TCP, DOT, DOH}
}

// RecordType is a DNS record type to query, in its textual form.
type RecordType string

const (
	TypeA     RecordType = "A"
	TypeAAAA  RecordType = "AAAA"
	TypeCNAME RecordType = "CNAME"
	TypeMX    RecordType = "MX"
	TypeTXT   RecordType = "TXT"
	TypeNS    RecordType = "NS"
)

func (rt RecordType) dnsType() uint16 {
	return dns.StringToType[string(rt)]
}

// QueryStatus is the terminal classification of a single DNS query.
type QueryStatus string

const (
	StatusSuccess  QueryStatus = "success"
	StatusTimeout  QueryStatus = "timeout"
	StatusNXDomain QueryStatus = "nxdomain"
	StatusServfail QueryStatus = "servfail"
	StatusRefused  QueryStatus = "refused"
	StatusError    QueryStatus = "error"
)

// ResolverConfig describes a DNS resolver endpoint under test. The zero
// value is not usable, IPv4 is required. Values are never mutated once
// constructed.
type ResolverConfig struct {
	Name        string `json:"name"`
	IPv4        string `json:"ipv4"`
	IPv6        string `json:"ipv6,omitempty"`
	DotHostname string `json:"dotHostname,omitempty"`
	DohURL      string `json:"dohUrl,omitempty"`
	Description string `json:"description,omitempty"`
}

// SupportsTransport reports whether the resolver configuration carries
// everything the given transport needs. UDP and TCP need only the address,
// DoT needs a TLS hostname for certificate verification and DoH needs an
// endpoint URL.
func (r ResolverConfig) SupportsTransport(t Transport) bool {
	switch t {
	case UDP, TCP:
		return true
	case DOT:
		return r.DotHostname != ""
	case DOH:
		return r.DohURL != ""
	default:
		return false
	}
}

// TimingBreakdown splits a query round trip into connection setup and
// query exchange. Connectionless transports report a zero Connection and
// Query equal to Total.
type TimingBreakdown struct {
	Total      time.Duration `json:"total"`
	Connection time.Duration `json:"connection"`
	Query      time.Duration `json:"query"`
}

// TotalMs returns the total round-trip latency in milliseconds.
func (t TimingBreakdown) TotalMs() float64 {
	return t.Total.Seconds() * 1000
}

// QueryResult is the immutable outcome of one logical DNS query. Retries are
// folded into a single result, only the final outcome is materialized.
type QueryResult struct {
	Domain    string          `json:"domain"`
	Type      RecordType      `json:"type"`
	Resolver  ResolverConfig  `json:"resolver"`
	Transport Transport       `json:"transport"`
	Status    QueryStatus     `json:"status"`
	Timing    TimingBreakdown `json:"timing"`
	Timestamp time.Time       `json:"timestamp"`

	Answers []string `json:"answers,omitempty"`
	// TTL of the first answer record set, nil when the response carried no
	// answers.
	TTL *uint32 `json:"ttl,omitempty"`

	// RespondedBy identifies the endpoint that answered. For DoH this is the
	// configured endpoint URL rather than a numeric address.
	RespondedBy string `json:"respondedBy,omitempty"`
	// Cached marks results of warm-mode measurement batches. Advisory only,
	// it is set by the runner and not verified against resolver cache state.
	Cached bool   `json:"cached"`
	Error  string `json:"error,omitempty"`
}

// IsSuccess reports whether the query completed with a NOERROR response.
func (r QueryResult) IsSuccess() bool {
	return r.Status == StatusSuccess
}

// LatencyMs returns the total query latency in milliseconds.
func (r QueryResult) LatencyMs() float64 {
	return r.Timing.TotalMs()
}

// ResolverStats aggregates results of a single resolver×transport pair.
// Latency fields are milliseconds and are computed only over successful
// queries; they are all exactly zero when no query succeeded.
type ResolverStats struct {
	Resolver  ResolverConfig `json:"resolver"`
	Transport Transport      `json:"transport"`

	TotalQueries      int `json:"totalQueries"`
	SuccessfulQueries int `json:"successfulQueries"`
	FailedQueries     int `json:"failedQueries"`

	MinLatency    float64 `json:"minLatency"`
	MaxLatency    float64 `json:"maxLatency"`
	AvgLatency    float64 `json:"avgLatency"`
	MedianLatency float64 `json:"medianLatency"`
	P95Latency    float64 `json:"p95Latency"`
	P99Latency    float64 `json:"p99Latency"`
	StddevLatency float64 `json:"stddevLatency"`

	TimeoutCount  int `json:"timeoutCount"`
	NxdomainCount int `json:"nxdomainCount"`
	ErrorCount    int `json:"errorCount"`

	// Jitter is the mean absolute difference between consecutive successful
	// latencies in execution-submission order.
	Jitter float64 `json:"jitter"`
}

// SuccessRate returns the percentage of successful queries in [0,100].
func (s ResolverStats) SuccessRate() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.SuccessfulQueries) / float64(s.TotalQueries) * 100
}

// PacketLossRate returns the percentage of failed queries in [0,100].
func (s ResolverStats) PacketLossRate() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.FailedQueries) / float64(s.TotalQueries) * 100
}

// RecordTypeStats is a secondary breakdown of the same raw result set by
// record type.
type RecordTypeStats struct {
	Type        RecordType `json:"type"`
	Count       int        `json:"count"`
	AvgLatency  float64    `json:"avgLatency"`
	SuccessRate float64    `json:"successRate"`
}

// BenchmarkResult is the complete outcome of one test-mode invocation.
type BenchmarkResult struct {
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
	TestMode    string    `json:"testMode"`

	DomainsTested      int `json:"domainsTested"`
	QueriesPerResolver int `json:"queriesPerResolver"`
	Runs               int `json:"runs"`
	ParallelQueries    int `json:"parallelQueries"`

	ResolverStats []ResolverStats `json:"resolverStats"`
	RawResults    []QueryResult   `json:"rawResults"`

	// RecordTypeStats is keyed by "<resolver>_<transport>".
	RecordTypeStats map[string][]RecordTypeStats `json:"recordTypeStats"`
}

// Duration returns the wall-clock duration of the benchmark.
func (b *BenchmarkResult) Duration() time.Duration {
	return b.CompletedAt.Sub(b.StartedAt)
}

// Winner returns the resolver stats with the lowest average latency among
// those with at least one success, or nil when nothing succeeded.
func (b *BenchmarkResult) Winner() *ResolverStats {
	var winner *ResolverStats
	for i := range b.ResolverStats {
		s := &b.ResolverStats[i]
		if s.SuccessfulQueries == 0 {
			continue
		}
		if winner == nil || s.AvgLatency < winner.AvgLatency {
			winner = s
		}
	}
	return winner
}
