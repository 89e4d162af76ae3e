package dnsbench

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator_defaultDomains(t *testing.T) {
	g := NewGenerator(nil)

	assert.NotEmpty(t, g.Domains)
	assert.Contains(t, g.Domains, "google.com")
	for _, domain := range g.Domains {
		assert.False(t, strings.HasPrefix(domain, "#"), "comments are stripped from the embedded list")
		assert.NotEmpty(t, domain)
	}
}

func TestGenerator_ColdQueries(t *testing.T) {
	g := NewGenerator([]string{"example.com", "example.org"})
	g.IncludeThirdParty = false
	g.SubdomainExpansion = false

	queries := g.ColdQueries(0, []RecordType{TypeA, TypeAAAA})

	require.Len(t, queries, 4)
	seen := make(map[string]bool)
	for _, q := range queries {
		parts := strings.SplitN(q.Domain, ".", 2)
		require.Len(t, parts, 2)
		assert.Len(t, parts[0], 8, "cache-busting prefix is 8 characters")
		assert.Contains(t, []string{"example.com", "example.org"}, parts[1])
		seen[q.Domain] = true
	}
	assert.Len(t, seen, 4, "every query gets a fresh cache-busting prefix")
}

func TestGenerator_ColdQueries_noCacheBypass(t *testing.T) {
	g := NewGenerator([]string{"example.com"})
	g.IncludeThirdParty = false
	g.SubdomainExpansion = false
	g.CacheBypass = false

	queries := g.ColdQueries(0, []RecordType{TypeA})

	require.Len(t, queries, 1)
	assert.Equal(t, "example.com", queries[0].Domain)
}

func TestGenerator_ColdQueries_thirdPartyUnprefixed(t *testing.T) {
	g := NewGenerator([]string{"example.com"})
	g.SubdomainExpansion = false

	queries := g.ColdQueries(0, []RecordType{TypeA})

	var thirdParty []Query
	for _, q := range queries {
		if !strings.HasSuffix(q.Domain, "example.com") {
			thirdParty = append(thirdParty, q)
		}
	}
	require.NotEmpty(t, thirdParty)
	for _, q := range thirdParty {
		assert.Contains(t, commonThirdParty, q.Domain, "third-party domains are queried as-is")
	}
}

func TestGenerator_ColdQueries_countLimitsDomains(t *testing.T) {
	g := NewGenerator([]string{"a.com", "b.com", "c.com"})
	g.IncludeThirdParty = false
	g.SubdomainExpansion = false

	queries := g.ColdQueries(2, []RecordType{TypeA})

	require.Len(t, queries, 2)
	assert.True(t, strings.HasSuffix(queries[0].Domain, "a.com"))
	assert.True(t, strings.HasSuffix(queries[1].Domain, "b.com"))
}

func TestGenerator_ColdQueries_subdomainExpansion(t *testing.T) {
	g := NewGenerator([]string{"example.com"})
	g.IncludeThirdParty = false

	queries := g.ColdQueries(0, []RecordType{TypeA})

	// base domain plus 3 subdomain expansions
	assert.Len(t, queries, 4)
}

func TestGenerator_WarmQueries(t *testing.T) {
	g := NewGenerator([]string{"example.com"})
	g.IncludeThirdParty = false

	first := g.WarmQueries(0, []RecordType{TypeA})
	second := g.WarmQueries(0, []RecordType{TypeA})

	require.Len(t, first, 1)
	assert.Equal(t, "www.example.com", first[0].Domain)
	assert.Equal(t, first, second, "warm workload is deterministic, repeats hit the cache")
}

func TestGenerator_WarmQueries_defaultRecordTypes(t *testing.T) {
	g := NewGenerator([]string{"example.com"})
	g.IncludeThirdParty = false

	queries := g.WarmQueries(0, nil)

	require.Len(t, queries, 2)
	assert.Equal(t, TypeA, queries[0].Type)
	assert.Equal(t, TypeAAAA, queries[1].Type)
}

func TestGenerator_BurstQueries(t *testing.T) {
	g := NewGenerator([]string{"example.com", "example.org", "example.net"})

	queries := g.BurstQueries(2, []RecordType{TypeA})

	// 2 domains × 4 page-load prefixes + 10 third-party
	require.Len(t, queries, 18)
	prefixed := 0
	for _, q := range queries {
		for _, prefix := range []string{"www.", "cdn.", "api.", "static."} {
			if strings.HasPrefix(q.Domain, prefix) && strings.HasSuffix(q.Domain, ".example.com") ||
				strings.HasPrefix(q.Domain, prefix) && strings.HasSuffix(q.Domain, ".example.org") ||
				strings.HasPrefix(q.Domain, prefix) && strings.HasSuffix(q.Domain, ".example.net") {
				prefixed++
				break
			}
		}
	}
	assert.Equal(t, 8, prefixed)
}

func TestGenerator_BurstQueries_sizeClampedToDomains(t *testing.T) {
	g := NewGenerator([]string{"example.com"})

	queries := g.BurstQueries(50, []RecordType{TypeA})

	assert.Len(t, queries, 14)
}

func TestGenerator_NXDomainQueries(t *testing.T) {
	g := NewGenerator([]string{"example.com"})

	queries := g.NXDomainQueries(5)

	require.Len(t, queries, 5)
	seen := make(map[string]bool)
	for _, q := range queries {
		assert.True(t, strings.HasSuffix(q.Domain, ".invalid-domain-test.example"))
		assert.Equal(t, TypeA, q.Type)
		seen[q.Domain] = true
	}
	assert.Len(t, seen, 5, "every probe domain is unique")
}

func TestGenerator_CNAMEChainQueries(t *testing.T) {
	g := NewGenerator([]string{"example.com"})

	queries := g.CNAMEChainQueries()

	require.Len(t, queries, 2*len(cnameChainDomains))
	assert.Equal(t, TypeCNAME, queries[0].Type)
	assert.Equal(t, TypeA, queries[1].Type)
	assert.Equal(t, queries[0].Domain, queries[1].Domain)
}
