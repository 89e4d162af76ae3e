package dnsbench

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/semaphore"
)

// Query is a single (domain, record type) unit of work.
type Query struct {
	Domain string
	Type   RecordType
}

// transportKey carries the whole resolver configuration so same-named
// resolvers pointing at different endpoints never share a transport.
type transportKey struct {
	transport Transport
	resolver  ResolverConfig
}

// Engine executes DNS queries with per-attempt timeouts, a fixed-delay retry
// policy and terminal result classification. Transport instances are created
// lazily and cached per (transport, resolver) pair so connection state,
// notably the pooled DoH client, is reused across calls. A single Engine may
// be shared by the goroutines of one batch but not between independent
// engine instances, and it must be released exactly once via Close.
type Engine struct {
	// Timeout bounds every single attempt. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Retries is the number of retries after a failed attempt, so the total
	// attempt count is Retries+1. Negative values mean no retries.
	Retries int
	// DNSSEC requests DNSSEC records via the EDNS0 DO bit.
	DNSSEC bool
	// Rate optionally caps query dispatch at the given QPS, 0 is unlimited.
	Rate int
	// DohProtocol selects the HTTP protocol version for DoH transports.
	DohProtocol string
	// LogRequests enables per-request log lines.
	LogRequests bool

	initOnce  sync.Once
	closeOnce sync.Once
	limiter   ratelimit.Limiter

	mu         sync.Mutex
	transports map[transportKey]transport
}

func (e *Engine) init() {
	e.initOnce.Do(func() {
		if e.Timeout <= 0 {
			e.Timeout = DefaultTimeout
		}
		if e.Retries < 0 {
			e.Retries = 0
		}
		if e.Rate > 0 {
			e.limiter = ratelimit.New(e.Rate)
		}
		e.transports = make(map[transportKey]transport)
	})
}

var errEngineClosed = errors.New("engine is closed")

func (e *Engine) transportFor(typ Transport, resolver ResolverConfig) (transport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.transports == nil {
		return nil, errEngineClosed
	}
	key := transportKey{transport: typ, resolver: resolver}
	if tr, ok := e.transports[key]; ok {
		return tr, nil
	}
	tr, err := newTransport(typ, resolver, e.DohProtocol)
	if err != nil {
		return nil, err
	}
	e.transports[key] = tr
	return tr, nil
}

func (e *Engine) buildMsg(domain string, recordType RecordType) *dns.Msg {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), recordType.dnsType())
	msg.RecursionDesired = true
	if e.DNSSEC {
		msg.SetEdns0(DefaultEdns0BufferSize, true)
	}
	return msg
}

func classifyRcode(rcode int) QueryStatus {
	switch rcode {
	case dns.RcodeSuccess:
		return StatusSuccess
	case dns.RcodeNameError:
		return StatusNXDomain
	case dns.RcodeServerFailure:
		return StatusServfail
	case dns.RcodeRefused:
		return StatusRefused
	default:
		return StatusError
	}
}

func extractAnswers(resp *dns.Msg) ([]string, *uint32) {
	if len(resp.Answer) == 0 {
		return nil, nil
	}
	ttl := resp.Answer[0].Header().Ttl
	answers := make([]string, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		answers = append(answers, rr.String())
	}
	return answers, &ttl
}

// Query executes one logical DNS query and returns its terminal result.
// Transport failures and timeouts are retried with a fixed delay and folded
// into the result, they are never returned as errors. The returned error is
// non-nil only for the fail-fast case of a transport the resolver does not
// support, which callers are expected to pre-filter with SupportsTransport.
func (e *Engine) Query(ctx context.Context, domain string, recordType RecordType, resolver ResolverConfig, transportType Transport) (QueryResult, error) {
	e.init()

	tr, err := e.transportFor(transportType, resolver)
	if err != nil {
		return QueryResult{}, err
	}

	msg := e.buildMsg(domain, recordType)

	var lastErr error
	for attempt := 0; attempt <= e.Retries; attempt++ {
		msg.Id = dns.Id()

		start := time.Now()
		resp, timing, respondedBy, err := tr.roundTrip(ctx, msg, e.Timeout)
		if err == nil {
			status := classifyRcode(resp.Rcode)
			answers, ttl := extractAnswers(resp)
			dnsRequestDuration.WithLabelValues(string(transportType)).Observe(timing.Total.Seconds())
			dnsResponseTotal.WithLabelValues(string(transportType), string(status)).Inc()
			if e.LogRequests {
				logRequest(resolver.Name, transportType, domain, recordType, resp, nil, timing.Total)
			}
			return QueryResult{
				Domain:      domain,
				Type:        recordType,
				Resolver:    resolver,
				Transport:   transportType,
				Status:      status,
				Timing:      timing,
				Timestamp:   time.Now(),
				Answers:     answers,
				TTL:         ttl,
				RespondedBy: respondedBy,
			}, nil
		}

		lastErr = err
		dnsErrorsTotal.WithLabelValues(string(transportType)).Inc()
		if e.LogRequests {
			logRequest(resolver.Name, transportType, domain, recordType, nil, err, time.Since(start))
		}

		if attempt < e.Retries {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				// no point retrying a cancelled batch
				attempt = e.Retries
			}
		}
	}

	status := StatusError
	if isTimeout(lastErr) {
		status = StatusTimeout
	}
	return QueryResult{
		Domain:    domain,
		Type:      recordType,
		Resolver:  resolver,
		Transport: transportType,
		Status:    status,
		Timing:    TimingBreakdown{Total: e.Timeout},
		Timestamp: time.Now(),
		Error:     lastErr.Error(),
	}, nil
}

// QueryBatch executes the queries under a hard cap on simultaneously
// in-flight requests and returns one result per input query in submission
// order, regardless of completion order. The bound exists to avoid
// resolver-side rate limiting and local resource exhaustion, not for
// correctness. The returned error is non-nil only when the resolver does not
// support the requested transport.
func (e *Engine) QueryBatch(ctx context.Context, queries []Query, resolver ResolverConfig, transportType Transport, concurrency int) ([]QueryResult, error) {
	e.init()

	if _, err := e.transportFor(transportType, resolver); err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	sem := semaphore.NewWeighted(int64(concurrency))
	results := make([]QueryResult, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		if e.limiter != nil {
			e.limiter.Take()
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = QueryResult{
				Domain:    q.Domain,
				Type:      q.Type,
				Resolver:  resolver,
				Transport: transportType,
				Status:    StatusError,
				Timestamp: time.Now(),
				Error:     err.Error(),
			}
			continue
		}
		wg.Add(1)
		go func(i int, q Query) {
			defer wg.Done()
			defer sem.Release(1)
			res, _ := e.Query(ctx, q.Domain, q.Type, resolver, transportType)
			results[i] = res
		}(i, q)
	}
	wg.Wait()

	return results, nil
}

// Close releases all cached transport resources. It is safe to call multiple
// times, only the first call has an effect. A release failure is non-fatal
// to results computed earlier.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for _, tr := range e.transports {
			if cerr := tr.close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		e.transports = nil
	})
	return err
}
