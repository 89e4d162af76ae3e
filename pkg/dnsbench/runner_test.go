package dnsbench

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRunner(addr string) *Runner {
	return &Runner{
		Resolvers:   []ResolverConfig{testResolver(addr)},
		Transports:  []Transport{UDP},
		Timeout:     time.Second,
		Runs:        2,
		Domains:     []string{"example.com"},
		RecordTypes: []RecordType{TypeA},
	}
}

func TestRunner_RunCold(t *testing.T) {
	s := NewServer("udp", nil, successHandler)
	defer s.Close()

	r := testRunner(s.Addr)
	defer r.Close()

	res, err := r.RunCold(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ModeCold, res.TestMode)
	assert.Equal(t, 2, res.Runs)
	assert.False(t, res.CompletedAt.Before(res.StartedAt))

	// per run: 1 domain expanded to 4 subdomains plus the third-party set
	expected := 2 * (4 + len(commonThirdParty))
	require.Len(t, res.RawResults, expected)
	assert.Equal(t, expected, res.QueriesPerResolver)

	require.Len(t, res.ResolverStats, 1)
	stats := res.ResolverStats[0]
	assert.Equal(t, expected, stats.TotalQueries)
	assert.Equal(t, expected, stats.SuccessfulQueries)
	assert.Positive(t, stats.AvgLatency)

	require.Contains(t, res.RecordTypeStats, "test_udp")
	for _, raw := range res.RawResults {
		assert.False(t, raw.Cached, "cold results are never marked cached")
	}
}

func TestRunner_RunCold_cnameChains(t *testing.T) {
	s := NewServer("udp", nil, successHandler)
	defer s.Close()

	r := testRunner(s.Addr)
	r.CNAMEChains = true
	defer r.Close()

	res, err := r.RunCold(context.Background())

	require.NoError(t, err)
	// the cold workload grows by a CNAME and an A query per chain domain
	expected := 2 * (4 + len(commonThirdParty) + 2*len(cnameChainDomains))
	require.Len(t, res.RawResults, expected)

	cnames := 0
	for _, raw := range res.RawResults {
		if raw.Type == TypeCNAME {
			cnames++
		}
	}
	assert.Equal(t, 2*len(cnameChainDomains), cnames)
}

func TestRunner_zeroRetries(t *testing.T) {
	r := &Runner{
		Resolvers:     []ResolverConfig{testResolver("127.0.0.1:1")},
		Transports:    []Transport{UDP},
		Timeout:       time.Second,
		Runs:          1,
		NXDomainCount: 5,
	}
	defer r.Close()
	r.init()
	require.Equal(t, 0, r.engine.Retries)

	fake := &fakeTransport{err: errors.New("connection refused")}
	withFakeTransport(r.engine, r.Resolvers[0], UDP, fake)

	res, err := r.RunNXDomain(context.Background())

	require.NoError(t, err)
	require.Len(t, res.RawResults, 5)
	assert.EqualValues(t, 5, atomic.LoadInt32(&fake.attempts), "zero retries means one attempt per query")
}

func TestRunner_RunWarm(t *testing.T) {
	s := NewServer("udp", nil, successHandler)
	defer s.Close()

	r := testRunner(s.Addr)
	r.WarmupBatches = 1
	defer r.Close()

	res, err := r.RunWarm(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ModeWarm, res.TestMode)

	// warm-up batches are discarded, only the measured runs are kept
	expected := 2 * (1 + len(commonThirdParty))
	require.Len(t, res.RawResults, expected)
	for _, raw := range res.RawResults {
		assert.True(t, raw.Cached, "warm measurement results are marked cached")
	}
}

func TestRunner_RunBurst(t *testing.T) {
	s := NewServer("udp", nil, successHandler)
	defer s.Close()

	r := testRunner(s.Addr)
	defer r.Close()

	res, err := r.RunBurst(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ModeBurst, res.TestMode)
	assert.Equal(t, DefaultBurstConcurrency, res.ParallelQueries)

	// per run: 1 domain × 4 page-load prefixes plus 10 sampled third-party
	require.Len(t, res.RawResults, 2*(4+10))
}

func TestRunner_RunNXDomain(t *testing.T) {
	s := NewServer("udp", nil, rcodeHandler(dns.RcodeNameError))
	defer s.Close()

	r := testRunner(s.Addr)
	r.NXDomainCount = 5
	defer r.Close()

	res, err := r.RunNXDomain(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ModeNXDomain, res.TestMode)
	require.Len(t, res.RawResults, 2*5)

	require.Len(t, res.ResolverStats, 1)
	stats := res.ResolverStats[0]
	assert.Equal(t, 10, stats.NxdomainCount)
	assert.Zero(t, stats.SuccessfulQueries)
}

func TestRunner_RunComprehensive(t *testing.T) {
	s := NewServer("udp", nil, successHandler)
	defer s.Close()

	r := testRunner(s.Addr)
	r.Runs = 1
	r.WarmupBatches = 1
	r.NXDomainCount = 2
	defer r.Close()

	results, err := r.RunComprehensive(context.Background())

	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, mode := range []string{ModeCold, ModeWarm, ModeBurst, ModeNXDomain} {
		require.Contains(t, results, mode)
		assert.Equal(t, mode, results[mode].TestMode)
		assert.NotEmpty(t, results[mode].RawResults)
	}
}

func TestRunner_progress(t *testing.T) {
	s := NewServer("udp", nil, successHandler)
	defer s.Close()

	r := testRunner(s.Addr)
	defer r.Close()

	var messages []string
	var lastCurrent, lastTotal int
	r.OnProgress = func(message string, current, total int) {
		messages = append(messages, message)
		lastCurrent, lastTotal = current, total
	}

	_, err := r.RunCold(context.Background())

	require.NoError(t, err)
	// 2 runs × 1 resolver×transport pair
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0], "Run 1/2: test (udp)")
	assert.Equal(t, 2, lastCurrent)
	assert.Equal(t, 2, lastTotal)
}

func TestRunner_skipsUnsupportedPairs(t *testing.T) {
	s := NewServer("udp", nil, successHandler)
	defer s.Close()

	r := testRunner(s.Addr)
	// the test resolver has no DoT hostname, the pair must be skipped
	r.Transports = []Transport{UDP, DOT}
	defer r.Close()

	res, err := r.RunCold(context.Background())

	require.NoError(t, err)
	require.Len(t, res.ResolverStats, 1)
	assert.Equal(t, UDP, res.ResolverStats[0].Transport)
}

func TestRunner_Close(t *testing.T) {
	s := NewServer("udp", nil, successHandler)
	defer s.Close()

	r := testRunner(s.Addr)
	_, err := r.RunNXDomain(context.Background())
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "close is idempotent")
}
