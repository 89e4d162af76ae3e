package cmd

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tantalor93/dnscompare/pkg/dnsbench"
)

func TestBenchmark_Run(t *testing.T) {
	s := NewServer("udp", nil, func(w dns.ResponseWriter, r *dns.Msg) {
		ret := new(dns.Msg)
		ret.SetReply(r)
		ret.Answer = append(ret.Answer, A(r.Question[0].Name+" 300 IN A 127.0.0.1"))
		w.WriteMsg(ret)
	})
	defer s.Close()

	domainsFile := t.TempDir() + "/domains.txt"
	require.NoError(t, os.WriteFile(domainsFile, []byte("# comment\nexample.com\n"), 0o644))

	bench := Benchmark{
		Mode:        dnsbench.ModeCold,
		Resolvers:   []string{"local=" + s.Addr},
		Transports:  []string{"udp"},
		Types:       []string{"A"},
		Runs:        1,
		Timeout:     time.Second,
		DomainsFile: domainsFile,
		Silent:      true,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	results, err := bench.Run(ctx)

	require.NoError(t, err)
	require.Contains(t, results, dnsbench.ModeCold)
	res := results[dnsbench.ModeCold]
	assert.NotEmpty(t, res.RawResults)
	require.Len(t, res.ResolverStats, 1)
	assert.Equal(t, res.ResolverStats[0].TotalQueries, res.ResolverStats[0].SuccessfulQueries)
}

func TestBenchmark_Run_unknownResolver(t *testing.T) {
	bench := Benchmark{Mode: dnsbench.ModeCold, Resolvers: []string{"nonexistent"}, Silent: true}

	_, err := bench.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resolver")
}

func TestBenchmark_resolverConfigs(t *testing.T) {
	tests := []struct {
		name      string
		selection string
		wantName  string
		wantIPv4  string
		wantErr   bool
	}{
		{
			name:      "well-known name",
			selection: "cloudflare",
			wantName:  "Cloudflare",
			wantIPv4:  "1.1.1.1",
		},
		{
			name:      "bare IP",
			selection: "10.0.0.53",
			wantName:  "10.0.0.53",
			wantIPv4:  "10.0.0.53",
		},
		{
			name:      "named custom resolver",
			selection: "lab=10.0.0.53",
			wantName:  "lab",
			wantIPv4:  "10.0.0.53",
		},
		{
			name:      "named custom resolver with invalid IP",
			selection: "lab=not-an-ip",
			wantErr:   true,
		},
		{
			name:      "unknown name",
			selection: "nonexistent",
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bench := Benchmark{Resolvers: []string{tt.selection}}

			configs, err := bench.resolverConfigs()

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, configs, 1)
			assert.Equal(t, tt.wantName, configs[0].Name)
			assert.Equal(t, tt.wantIPv4, configs[0].IPv4)
		})
	}
}

func TestBenchmark_resolverConfigs_duplicateNames(t *testing.T) {
	tests := []struct {
		name       string
		selections []string
	}{
		{
			name:       "same custom name twice",
			selections: []string{"lab=10.0.0.53", "lab=10.0.0.54"},
		},
		{
			name:       "well-known name differing only in case",
			selections: []string{"cloudflare", "Cloudflare"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bench := Benchmark{Resolvers: tt.selections}

			_, err := bench.resolverConfigs()

			require.ErrorContains(t, err, "more than once")
		})
	}
}

func TestBenchmark_resolverConfigs_defaults(t *testing.T) {
	bench := Benchmark{}

	configs, err := bench.resolverConfigs()

	require.NoError(t, err)
	require.Len(t, configs, 3)
	assert.Equal(t, "Cloudflare", configs[0].Name)
	assert.Equal(t, "Google", configs[1].Name)
	assert.Equal(t, "Quad9", configs[2].Name)
}

func TestBenchmark_domains(t *testing.T) {
	domainsFile := t.TempDir() + "/domains.txt"
	require.NoError(t, os.WriteFile(domainsFile, []byte("# top domains\nexample.com\n\nexample.org\n"), 0o644))

	bench := Benchmark{DomainsFile: domainsFile}

	domains, err := bench.domains()

	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "example.org"}, domains)
}

func TestBenchmark_domains_empty(t *testing.T) {
	domainsFile := t.TempDir() + "/domains.txt"
	require.NoError(t, os.WriteFile(domainsFile, []byte("# only comments\n"), 0o644))

	bench := Benchmark{DomainsFile: domainsFile}

	_, err := bench.domains()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "contains no domains")
}

func TestBenchmark_domains_unset(t *testing.T) {
	bench := Benchmark{}

	domains, err := bench.domains()

	require.NoError(t, err)
	assert.Nil(t, domains, "the embedded list is used when no file is given")
}

func TestCsvFileForMode(t *testing.T) {
	assert.Equal(t, "/tmp/out-cold.csv", csvFileForMode("/tmp/out.csv", "cold"))
	assert.Equal(t, "results-warm", csvFileForMode("results", "warm"))
}

func TestSortedModes(t *testing.T) {
	results := map[string]*dnsbench.BenchmarkResult{
		dnsbench.ModeNXDomain: {},
		dnsbench.ModeCold:     {},
		dnsbench.ModeBurst:    {},
		dnsbench.ModeWarm:     {},
	}

	assert.Equal(t, []string{dnsbench.ModeCold, dnsbench.ModeWarm, dnsbench.ModeBurst, dnsbench.ModeNXDomain}, sortedModes(results))
}
