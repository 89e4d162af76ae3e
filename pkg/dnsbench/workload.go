package dnsbench

import (
	"bufio"
	_ "embed"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

//go:embed data/top100.txt
var top100Domains string

// commonThirdParty lists third-party domains typically resolved while loading
// a web page: CDNs, fonts, analytics, payment and media endpoints.
var commonThirdParty = []string{
	"cdn.jsdelivr.net",
	"cdnjs.cloudflare.com",
	"unpkg.com",
	"ajax.googleapis.com",
	"code.jquery.com",
	"stackpath.bootstrapcdn.com",
	"maxcdn.bootstrapcdn.com",
	"fonts.googleapis.com",
	"fonts.gstatic.com",
	"use.fontawesome.com",
	"use.typekit.net",
	"www.google-analytics.com",
	"www.googletagmanager.com",
	"connect.facebook.net",
	"platform.twitter.com",
	"snap.licdn.com",
	"s.pinimg.com",
	"static.ads-twitter.com",
	"api.stripe.com",
	"js.stripe.com",
	"www.paypal.com",
	"apis.google.com",
	"maps.googleapis.com",
	"www.gstatic.com",
	"ssl.gstatic.com",
	"images.unsplash.com",
	"i.imgur.com",
	"pbs.twimg.com",
	"scontent.xx.fbcdn.net",
	"www.google.com",
	"challenges.cloudflare.com",
	"static.cloudflareinsights.com",
}

var commonSubdomains = []string{
	"www", "api", "cdn", "static", "assets", "media", "img", "images",
	"m", "mobile", "app", "login", "auth", "secure", "mail",
}

// cnameChainDomains are domains known to sit behind CNAME chains.
var cnameChainDomains = []string{
	"www.github.com",
	"www.cloudflare.com",
	"www.aws.amazon.com",
	"www.azure.microsoft.com",
	"www.heroku.com",
	"www.netlify.com",
	"www.vercel.com",
	"www.pages.github.io",
}

// Generator produces ordered (domain, record type) query lists for the
// benchmark test modes. It is not safe for concurrent use.
type Generator struct {
	// Domains is the base domain set.
	Domains []string
	// IncludeThirdParty adds common third-party domains to workloads.
	IncludeThirdParty bool
	// CacheBypass prepends unique random subdomain prefixes in cold mode so
	// every resolver has to resolve upstream.
	CacheBypass bool
	// SubdomainExpansion expands base domains with common prefixes.
	SubdomainExpansion bool

	rand *rand.Rand
}

// NewGenerator creates a workload generator over the given domain set, or the
// embedded top-domain list when domains is empty.
func NewGenerator(domains []string) *Generator {
	if len(domains) == 0 {
		domains = defaultDomains()
	}
	return &Generator{
		Domains:            domains,
		IncludeThirdParty:  true,
		CacheBypass:        true,
		SubdomainExpansion: true,
		// nolint:gosec
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func defaultDomains() []string {
	var domains []string
	scanner := bufio.NewScanner(strings.NewReader(top100Domains))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	return domains
}

const prefixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func (g *Generator) randomPrefix(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = prefixAlphabet[g.rand.Intn(len(prefixAlphabet))]
	}
	return string(b)
}

func (g *Generator) expandDomain(domain string) []string {
	expanded := []string{domain}
	if !g.SubdomainExpansion {
		return expanded
	}
	for _, i := range g.rand.Perm(len(commonSubdomains))[:3] {
		expanded = append(expanded, commonSubdomains[i]+"."+domain)
	}
	return expanded
}

func defaultRecordTypes(types []RecordType) []RecordType {
	if len(types) == 0 {
		return []RecordType{TypeA, TypeAAAA}
	}
	return types
}

// ColdQueries generates cache-busting queries. Each base domain is expanded
// and prefixed with a fresh random subdomain so resolver caches cannot serve
// the answer. Third-party domains are used as-is since random prefixes under
// them would not resolve.
func (g *Generator) ColdQueries(count int, types []RecordType) []Query {
	types = defaultRecordTypes(types)

	domains := g.Domains
	if count > 0 && count < len(domains) {
		domains = domains[:count]
	}

	var queries []Query
	for _, domain := range domains {
		for _, subdomain := range g.expandDomain(domain) {
			for _, rt := range types {
				queryDomain := subdomain
				if g.CacheBypass {
					queryDomain = g.randomPrefix(8) + "." + subdomain
				}
				queries = append(queries, Query{Domain: queryDomain, Type: rt})
			}
		}
	}
	if g.IncludeThirdParty {
		for _, domain := range commonThirdParty {
			for _, rt := range types {
				queries = append(queries, Query{Domain: domain, Type: rt})
			}
		}
	}
	return queries
}

// WarmQueries generates a fixed query set without randomization, using www
// prefixes for maximum cache hit probability.
func (g *Generator) WarmQueries(count int, types []RecordType) []Query {
	types = defaultRecordTypes(types)

	domains := g.Domains
	if count > 0 && count < len(domains) {
		domains = domains[:count]
	}

	var queries []Query
	for _, domain := range domains {
		for _, rt := range types {
			queries = append(queries, Query{Domain: "www." + domain, Type: rt})
		}
	}
	if g.IncludeThirdParty {
		for _, domain := range commonThirdParty {
			for _, rt := range types {
				queries = append(queries, Query{Domain: domain, Type: rt})
			}
		}
	}
	return queries
}

// BurstQueries samples a random subset of domains and expands each into a
// simulated page-load set plus a sample of third-party domains.
func (g *Generator) BurstQueries(burstSize int, types []RecordType) []Query {
	types = defaultRecordTypes(types)

	if burstSize > len(g.Domains) {
		burstSize = len(g.Domains)
	}

	var queries []Query
	for _, i := range g.rand.Perm(len(g.Domains))[:burstSize] {
		domain := g.Domains[i]
		pageDomains := []string{
			"www." + domain,
			"cdn." + domain,
			"api." + domain,
			"static." + domain,
		}
		for _, pageDomain := range pageDomains {
			for _, rt := range types {
				queries = append(queries, Query{Domain: pageDomain, Type: rt})
			}
		}
	}

	thirdPartyCount := 10
	if thirdPartyCount > len(commonThirdParty) {
		thirdPartyCount = len(commonThirdParty)
	}
	for _, i := range g.rand.Perm(len(commonThirdParty))[:thirdPartyCount] {
		queries = append(queries, Query{Domain: commonThirdParty[i], Type: TypeA})
	}
	return queries
}

// NXDomainQueries generates queries for synthetically-constructed
// non-existent domains.
func (g *Generator) NXDomainQueries(count int) []Query {
	queries := make([]Query, 0, count)
	for i := 0; i < count; i++ {
		domain := fmt.Sprintf("%s.invalid-domain-test.example", g.randomPrefix(16))
		queries = append(queries, Query{Domain: domain, Type: TypeA})
	}
	return queries
}

// CNAMEChainQueries generates queries likely to involve CNAME chains.
func (g *Generator) CNAMEChainQueries() []Query {
	queries := make([]Query, 0, 2*len(cnameChainDomains))
	for _, domain := range cnameChainDomains {
		queries = append(queries, Query{Domain: domain, Type: TypeCNAME})
		queries = append(queries, Query{Domain: domain, Type: TypeA})
	}
	return queries
}
