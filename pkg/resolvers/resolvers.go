// Package resolvers provides the built-in registry of public DNS resolver
// configurations and a constructor for ad-hoc custom resolvers.
package resolvers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tantalor93/dnscompare/pkg/dnsbench"
)

var registry = map[string]dnsbench.ResolverConfig{
	"cloudflare": {
		Name:        "Cloudflare",
		IPv4:        "1.1.1.1",
		IPv6:        "2606:4700:4700::1111",
		DotHostname: "cloudflare-dns.com",
		DohURL:      "https://cloudflare-dns.com/dns-query",
		Description: "Cloudflare's privacy-focused DNS resolver",
	},
	"cloudflare-secondary": {
		Name:        "Cloudflare Secondary",
		IPv4:        "1.0.0.1",
		IPv6:        "2606:4700:4700::1001",
		DotHostname: "cloudflare-dns.com",
		DohURL:      "https://cloudflare-dns.com/dns-query",
		Description: "Cloudflare's secondary DNS resolver",
	},
	"google": {
		Name:        "Google",
		IPv4:        "8.8.8.8",
		IPv6:        "2001:4860:4860::8888",
		DotHostname: "dns.google",
		DohURL:      "https://dns.google/dns-query",
		Description: "Google Public DNS",
	},
	"google-secondary": {
		Name:        "Google Secondary",
		IPv4:        "8.8.4.4",
		IPv6:        "2001:4860:4860::8844",
		DotHostname: "dns.google",
		DohURL:      "https://dns.google/dns-query",
		Description: "Google Public DNS secondary",
	},
	"quad9": {
		Name:        "Quad9",
		IPv4:        "9.9.9.9",
		IPv6:        "2620:fe::fe",
		DotHostname: "dns.quad9.net",
		DohURL:      "https://dns.quad9.net/dns-query",
		Description: "Quad9 with malware blocking",
	},
	"quad9-unsecured": {
		Name:        "Quad9 Unsecured",
		IPv4:        "9.9.9.10",
		IPv6:        "2620:fe::10",
		DotHostname: "dns10.quad9.net",
		DohURL:      "https://dns10.quad9.net/dns-query",
		Description: "Quad9 without malware blocking",
	},
	"nextdns": {
		Name:        "NextDNS",
		IPv4:        "45.90.28.0",
		IPv6:        "2a07:a8c0::",
		DotHostname: "dns.nextdns.io",
		DohURL:      "https://dns.nextdns.io/dns-query",
		Description: "NextDNS (requires configuration ID for full features)",
	},
	"nextdns-secondary": {
		Name:        "NextDNS Secondary",
		IPv4:        "45.90.30.0",
		IPv6:        "2a07:a8c1::",
		DotHostname: "dns.nextdns.io",
		DohURL:      "https://dns.nextdns.io/dns-query",
		Description: "NextDNS secondary resolver",
	},
	"controld": {
		Name:        "Control D",
		IPv4:        "76.76.2.0",
		IPv6:        "2606:1a40::",
		DotHostname: "p0.freedns.controld.com",
		DohURL:      "https://freedns.controld.com/p0",
		Description: "Control D free unfiltered DNS",
	},
	"controld-malware": {
		Name:        "Control D Malware",
		IPv4:        "76.76.2.1",
		IPv6:        "2606:1a40::1",
		DotHostname: "p1.freedns.controld.com",
		DohURL:      "https://freedns.controld.com/p1",
		Description: "Control D with malware blocking",
	},
	"opendns": {
		Name: "OpenDNS",
		IPv4: "208.67.222.222",
		IPv6: "2620:119:35::35",
		// OpenDNS does not support DoT
		DohURL:      "https://doh.opendns.com/dns-query",
		Description: "Cisco OpenDNS",
	},
	"adguard": {
		Name:        "AdGuard",
		IPv4:        "94.140.14.14",
		IPv6:        "2a10:50c0::ad1:ff",
		DotHostname: "dns.adguard-dns.com",
		DohURL:      "https://dns.adguard-dns.com/dns-query",
		Description: "AdGuard DNS with ad blocking",
	},
	"cleanbrowsing": {
		Name:        "CleanBrowsing Security",
		IPv4:        "185.228.168.9",
		IPv6:        "2a0d:2a00:1::2",
		DotHostname: "security-filter-dns.cleanbrowsing.org",
		DohURL:      "https://doh.cleanbrowsing.org/doh/security-filter/",
		Description: "CleanBrowsing security filter",
	},
}

// DefaultResolvers are the registry keys used when no resolver is selected.
var DefaultResolvers = []string{"cloudflare", "google", "quad9"}

// Get looks up a built-in resolver by name, case-insensitively.
func Get(name string) (dnsbench.ResolverConfig, error) {
	if r, ok := registry[strings.ToLower(name)]; ok {
		return r, nil
	}
	return dnsbench.ResolverConfig{}, fmt.Errorf("unknown resolver %q, available: %s", name, strings.Join(List(), ", "))
}

// Custom creates an ad-hoc resolver configuration from a bare IP address.
func Custom(name, ip string) dnsbench.ResolverConfig {
	if name == "" {
		name = "Custom"
	}
	return dnsbench.ResolverConfig{
		Name:        name,
		IPv4:        ip,
		Description: fmt.Sprintf("Custom resolver at %s", ip),
	}
}

// List returns all built-in resolver names in sorted order.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
