package dnsbench

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Test modes supported by the Runner.
const (
	ModeCold          = "cold"
	ModeWarm          = "warm"
	ModeBurst         = "burst"
	ModeNXDomain      = "nxdomain"
	ModeComprehensive = "comprehensive"
)

// ProgressFunc is an advisory progress notification invoked before every
// resolver×transport×run unit begins. It must not influence control flow.
type ProgressFunc func(message string, current, total int)

// Runner orchestrates workload generation and batched query execution across
// resolver×transport×run combinations for each test mode. Zero values of the
// sizing fields fall back to the package defaults. Modes are
// independent and re-entrant, but a Runner must not be shared between
// goroutines and must be released exactly once via Close.
type Runner struct {
	Resolvers  []ResolverConfig
	Transports []Transport

	Timeout time.Duration
	// Retries is the number of retransmissions after a failed attempt.
	// Unlike the other fields, zero is meaningful and disables retries.
	Retries     int
	DNSSEC      bool
	Rate        int
	DohProtocol string
	LogRequests bool

	DomainCount      int
	Runs             int
	Concurrency      int
	WarmupBatches    int
	BurstSize        int
	BurstConcurrency int
	NXDomainCount    int

	// CNAMEChains adds queries for domains known to sit behind CNAME chains
	// to the cold workload.
	CNAMEChains bool

	// RecordTypes defaults to A and AAAA (A only in warm mode).
	RecordTypes []RecordType
	// Domains overrides the embedded top-domain list.
	Domains []string
	// OnProgress is the optional progress sink, a no-op when nil.
	OnProgress ProgressFunc

	initOnce sync.Once
	engine   *Engine
	workload *Generator
}

func (r *Runner) init() {
	r.initOnce.Do(func() {
		if len(r.Transports) == 0 {
			r.Transports = []Transport{UDP}
		}
		if r.DomainCount <= 0 {
			r.DomainCount = DefaultDomainCount
		}
		if r.Runs <= 0 {
			r.Runs = DefaultRuns
		}
		if r.Concurrency <= 0 {
			r.Concurrency = DefaultConcurrency
		}
		if r.WarmupBatches <= 0 {
			r.WarmupBatches = DefaultWarmupBatches
		}
		if r.BurstSize <= 0 {
			r.BurstSize = DefaultBurstSize
		}
		if r.BurstConcurrency <= 0 {
			r.BurstConcurrency = DefaultBurstConcurrency
		}
		if r.NXDomainCount <= 0 {
			r.NXDomainCount = DefaultNXDomainCount
		}
		r.engine = &Engine{
			Timeout:     r.Timeout,
			Retries:     r.Retries,
			DNSSEC:      r.DNSSEC,
			Rate:        r.Rate,
			DohProtocol: r.DohProtocol,
			LogRequests: r.LogRequests,
		}
		r.workload = NewGenerator(r.Domains)
	})
}

func (r *Runner) progress(message string, current, total int) {
	if r.OnProgress != nil {
		r.OnProgress(message, current, total)
	}
}

// supportedPairs returns the resolver×transport pairs the configured
// resolvers actually support, in configuration order.
func (r *Runner) supportedPairs() [][2]int {
	var pairs [][2]int
	for i, resolver := range r.Resolvers {
		for j, tr := range r.Transports {
			if resolver.SupportsTransport(tr) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

func (r *Runner) recordTypes(fallback []RecordType) []RecordType {
	if len(r.RecordTypes) > 0 {
		return r.RecordTypes
	}
	return fallback
}

// RunCold executes the cold-start benchmark. Every run regenerates
// cache-busting queries with fresh random prefixes so each resolver must
// resolve upstream.
func (r *Runner) RunCold(ctx context.Context) (*BenchmarkResult, error) {
	r.init()

	types := r.recordTypes([]RecordType{TypeA, TypeAAAA})
	pairs := r.supportedPairs()

	startedAt := time.Now()
	var all []QueryResult
	total := r.Runs * len(pairs)
	current := 0

	for run := 0; run < r.Runs; run++ {
		queries := r.workload.ColdQueries(r.DomainCount, types)
		if r.CNAMEChains {
			queries = append(queries, r.workload.CNAMEChainQueries()...)
		}
		for _, pair := range pairs {
			resolver, tr := r.Resolvers[pair[0]], r.Transports[pair[1]]
			current++
			r.progress(fmt.Sprintf("Run %d/%d: %s (%s)", run+1, r.Runs, resolver.Name, tr), current, total)

			results, err := r.engine.QueryBatch(ctx, queries, resolver, tr, r.Concurrency)
			if err != nil {
				return nil, err
			}
			all = append(all, results...)
		}
	}
	return r.buildResult(all, startedAt, ModeCold, r.DomainCount, r.Runs, r.Concurrency), nil
}

// RunWarm executes the warm-cache benchmark: one fixed query set, a number
// of discarded warm-up batches per pair, then measured batches whose results
// are marked as served from cache. The mark is a convenience annotation set
// by the runner, it is not verified against actual resolver cache state.
func (r *Runner) RunWarm(ctx context.Context) (*BenchmarkResult, error) {
	r.init()

	types := r.recordTypes([]RecordType{TypeA})
	pairs := r.supportedPairs()
	queries := r.workload.WarmQueries(r.DomainCount, types)

	startedAt := time.Now()
	var all []QueryResult
	total := len(pairs)
	current := 0

	for _, pair := range pairs {
		resolver, tr := r.Resolvers[pair[0]], r.Transports[pair[1]]
		current++

		r.progress(fmt.Sprintf("Warming cache: %s (%s)", resolver.Name, tr), current, total)
		for i := 0; i < r.WarmupBatches; i++ {
			if _, err := r.engine.QueryBatch(ctx, queries, resolver, tr, r.Concurrency); err != nil {
				return nil, err
			}
		}

		for run := 0; run < r.Runs; run++ {
			r.progress(fmt.Sprintf("Run %d/%d: %s (%s)", run+1, r.Runs, resolver.Name, tr), current, total)
			results, err := r.engine.QueryBatch(ctx, queries, resolver, tr, r.Concurrency)
			if err != nil {
				return nil, err
			}
			for i := range results {
				results[i].Cached = true
			}
			all = append(all, results...)
		}
	}
	return r.buildResult(all, startedAt, ModeWarm, r.DomainCount, r.Runs, r.Concurrency), nil
}

// RunBurst executes the burst benchmark, simulating the DNS fan-out of page
// loads at high concurrency. Every run samples a fresh random domain subset.
func (r *Runner) RunBurst(ctx context.Context) (*BenchmarkResult, error) {
	r.init()

	types := r.recordTypes(nil)
	pairs := r.supportedPairs()

	startedAt := time.Now()
	var all []QueryResult
	total := r.Runs * len(pairs)
	current := 0

	for run := 0; run < r.Runs; run++ {
		queries := r.workload.BurstQueries(r.BurstSize, types)
		for _, pair := range pairs {
			resolver, tr := r.Resolvers[pair[0]], r.Transports[pair[1]]
			current++
			r.progress(fmt.Sprintf("Burst %d/%d: %s (%s)", run+1, r.Runs, resolver.Name, tr), current, total)

			results, err := r.engine.QueryBatch(ctx, queries, resolver, tr, r.BurstConcurrency)
			if err != nil {
				return nil, err
			}
			all = append(all, results...)
		}
	}
	return r.buildResult(all, startedAt, ModeBurst, r.BurstSize, r.Runs, r.BurstConcurrency), nil
}

// RunNXDomain probes resolver behavior with synthetically-constructed
// non-existent domains.
func (r *Runner) RunNXDomain(ctx context.Context) (*BenchmarkResult, error) {
	r.init()

	pairs := r.supportedPairs()

	startedAt := time.Now()
	var all []QueryResult
	total := r.Runs * len(pairs)
	current := 0

	for run := 0; run < r.Runs; run++ {
		queries := r.workload.NXDomainQueries(r.NXDomainCount)
		for _, pair := range pairs {
			resolver, tr := r.Resolvers[pair[0]], r.Transports[pair[1]]
			current++
			r.progress(fmt.Sprintf("NXDOMAIN %d/%d: %s (%s)", run+1, r.Runs, resolver.Name, tr), current, total)

			results, err := r.engine.QueryBatch(ctx, queries, resolver, tr, DefaultConcurrency)
			if err != nil {
				return nil, err
			}
			all = append(all, results...)
		}
	}
	return r.buildResult(all, startedAt, ModeNXDomain, r.NXDomainCount, r.Runs, DefaultConcurrency), nil
}

// RunComprehensive sequentially runs the cold, warm, burst and NXDOMAIN
// probes and returns one BenchmarkResult per sub-mode keyed by mode name.
func (r *Runner) RunComprehensive(ctx context.Context) (map[string]*BenchmarkResult, error) {
	r.init()

	results := make(map[string]*BenchmarkResult, 4)

	r.progress("Running cold start test...", 1, 4)
	cold, err := r.RunCold(ctx)
	if err != nil {
		return nil, err
	}
	results[ModeCold] = cold

	r.progress("Running warm cache test...", 2, 4)
	warm, err := r.RunWarm(ctx)
	if err != nil {
		return nil, err
	}
	results[ModeWarm] = warm

	r.progress("Running burst test...", 3, 4)
	burst, err := r.RunBurst(ctx)
	if err != nil {
		return nil, err
	}
	results[ModeBurst] = burst

	r.progress("Running NXDOMAIN test...", 4, 4)
	nxdomain, err := r.RunNXDomain(ctx)
	if err != nil {
		return nil, err
	}
	results[ModeNXDomain] = nxdomain

	return results, nil
}

// buildResult partitions raw results by (resolver, transport) and derives
// one ResolverStats and one record-type breakdown per non-empty partition.
func (r *Runner) buildResult(results []QueryResult, startedAt time.Time, mode string, domainsTested, runs, parallel int) *BenchmarkResult {
	completedAt := time.Now()

	var resolverStats []ResolverStats
	recordTypeStats := make(map[string][]RecordTypeStats)

	for _, pair := range r.supportedPairs() {
		resolver, tr := r.Resolvers[pair[0]], r.Transports[pair[1]]

		var subset []QueryResult
		for _, res := range results {
			if res.Resolver.Name == resolver.Name && res.Transport == tr {
				subset = append(subset, res)
			}
		}
		if len(subset) == 0 {
			continue
		}
		resolverStats = append(resolverStats, CalculateResolverStats(subset, resolver, tr))
		recordTypeStats[resolver.Name+"_"+string(tr)] = CalculateRecordTypeStats(subset)
	}

	queriesPerResolver := 0
	if len(resolverStats) > 0 {
		queriesPerResolver = len(results) / len(resolverStats)
	}

	return &BenchmarkResult{
		StartedAt:          startedAt,
		CompletedAt:        completedAt,
		TestMode:           mode,
		DomainsTested:      domainsTested,
		QueriesPerResolver: queriesPerResolver,
		Runs:               runs,
		ParallelQueries:    parallel,
		ResolverStats:      resolverStats,
		RawResults:         results,
		RecordTypeStats:    recordTypeStats,
	}
}

// Close releases the cached transports of the underlying query engine.
func (r *Runner) Close() error {
	r.init()
	return r.engine.Close()
}
