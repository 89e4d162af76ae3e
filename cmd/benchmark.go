package cmd

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/tantalor93/dnscompare/internal/sysutil"
	"github.com/tantalor93/dnscompare/pkg/dnsbench"
	"github.com/tantalor93/dnscompare/pkg/printutils"
	"github.com/tantalor93/dnscompare/pkg/resolvers"
)

// Benchmark is representation of a resolver comparison scenario.
type Benchmark struct {
	Mode       string
	Resolvers  []string
	Transports []string
	Types      []string

	DomainCount int
	Runs        int
	Concurrency int

	Timeout time.Duration
	Retries int
	DNSSEC  bool
	Rate    int

	WarmupBatches    int
	BurstSize        int
	BurstConcurrency int
	NXDomainCount    int
	CNAMEChains      bool

	DomainsFile string

	DohProtocol string

	RequestLogEnabled bool
	RequestLogPath    string

	FlushCache bool

	JSON        bool
	Silent      bool
	Color       bool
	Csv         string
	PlotDir     string
	PlotFormat  string
	HistDisplay bool

	requestLogFile *os.File
}

// Run executes the selected test mode against all selected resolvers and
// returns the benchmark results keyed by test mode. If the benchmark is
// unable to start, an error is returned.
func (b *Benchmark) Run(ctx context.Context) (map[string]*dnsbench.BenchmarkResult, error) {
	color.NoColor = !b.Color

	configs, err := b.resolverConfigs()
	if err != nil {
		return nil, err
	}
	domains, err := b.domains()
	if err != nil {
		return nil, err
	}

	if b.RequestLogEnabled {
		if err := b.initRequestLogging(); err != nil {
			return nil, err
		}
		defer b.closeRequestLogging()
	}

	if b.FlushCache {
		msg, err := sysutil.FlushDNSCache()
		if err != nil {
			printutils.ErrFprintf(os.Stderr, "Failed to flush OS DNS cache: %s\n", err.Error())
		} else if !b.Silent && !b.JSON {
			fmt.Printf("%s\n", msg)
		}
	}

	runner := &dnsbench.Runner{
		Resolvers:        configs,
		Transports:       b.transports(),
		Timeout:          b.Timeout,
		Retries:          b.Retries,
		DNSSEC:           b.DNSSEC,
		Rate:             b.Rate,
		DohProtocol:      b.DohProtocol,
		LogRequests:      b.RequestLogEnabled,
		DomainCount:      b.DomainCount,
		Runs:             b.Runs,
		Concurrency:      b.Concurrency,
		WarmupBatches:    b.WarmupBatches,
		BurstSize:        b.BurstSize,
		BurstConcurrency: b.BurstConcurrency,
		NXDomainCount:    b.NXDomainCount,
		CNAMEChains:      b.CNAMEChains,
		RecordTypes:      b.recordTypes(),
		Domains:          domains,
	}
	defer runner.Close()

	if !b.Silent && !b.JSON {
		fmt.Printf("Benchmarking %s resolvers over %s using %s mode\n",
			printutils.HighlightSprint(len(configs)),
			printutils.HighlightSprint(strings.Join(b.Transports, ", ")),
			printutils.HighlightSprint(b.Mode))
		runner.OnProgress = progressSink()
	}

	results := make(map[string]*dnsbench.BenchmarkResult)
	switch b.Mode {
	case dnsbench.ModeCold:
		res, err := runner.RunCold(ctx)
		if err != nil {
			return nil, err
		}
		results[dnsbench.ModeCold] = res
	case dnsbench.ModeWarm:
		res, err := runner.RunWarm(ctx)
		if err != nil {
			return nil, err
		}
		results[dnsbench.ModeWarm] = res
	case dnsbench.ModeBurst:
		res, err := runner.RunBurst(ctx)
		if err != nil {
			return nil, err
		}
		results[dnsbench.ModeBurst] = res
	case dnsbench.ModeNXDomain:
		res, err := runner.RunNXDomain(ctx)
		if err != nil {
			return nil, err
		}
		results[dnsbench.ModeNXDomain] = res
	case dnsbench.ModeComprehensive:
		all, err := runner.RunComprehensive(ctx)
		if err != nil {
			return nil, err
		}
		results = all
	default:
		return nil, fmt.Errorf("unknown test mode '%s'", b.Mode)
	}
	return results, nil
}

// resolverConfigs maps the --resolver selections to resolver configurations.
// A selection is either a well-known resolver name, a bare IP address or a
// 'name=IP' pair. Names must be unique because results are partitioned by
// resolver name.
func (b *Benchmark) resolverConfigs() ([]dnsbench.ResolverConfig, error) {
	selections := b.Resolvers
	if len(selections) == 0 {
		selections = resolvers.DefaultResolvers
	}
	configs := make([]dnsbench.ResolverConfig, 0, len(selections))
	for _, sel := range selections {
		if name, ip, ok := strings.Cut(sel, "="); ok {
			if !isResolverAddr(ip) {
				return nil, fmt.Errorf("'%s' is not a valid IP address", ip)
			}
			configs = append(configs, resolvers.Custom(name, ip))
			continue
		}
		if isResolverAddr(sel) {
			configs = append(configs, resolvers.Custom(sel, sel))
			continue
		}
		config, err := resolvers.Get(sel)
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}
	seen := make(map[string]bool, len(configs))
	for _, config := range configs {
		name := strings.ToLower(config.Name)
		if seen[name] {
			return nil, fmt.Errorf("resolver name '%s' is selected more than once", config.Name)
		}
		seen[name] = true
	}
	return configs, nil
}

// isResolverAddr accepts a bare IP address or an IP:port pair.
func isResolverAddr(s string) bool {
	if net.ParseIP(s) != nil {
		return true
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		return net.ParseIP(host) != nil
	}
	return false
}

func (b *Benchmark) transports() []dnsbench.Transport {
	if len(b.Transports) == 0 {
		return []dnsbench.Transport{dnsbench.UDP}
	}
	transports := make([]dnsbench.Transport, 0, len(b.Transports))
	for _, t := range b.Transports {
		transports = append(transports, dnsbench.Transport(strings.ToLower(t)))
	}
	return transports
}

func (b *Benchmark) recordTypes() []dnsbench.RecordType {
	types := make([]dnsbench.RecordType, 0, len(b.Types))
	for _, t := range b.Types {
		types = append(types, dnsbench.RecordType(strings.ToUpper(t)))
	}
	return types
}

// domains loads the base domain list from --domains-file, one domain per
// line, '#' comments and blank lines ignored. An empty return value makes
// the workload generator fall back to the embedded list.
func (b *Benchmark) domains() ([]string, error) {
	if b.DomainsFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(b.DomainsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read domains file: %w", err)
	}
	var domains []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	if len(domains) == 0 {
		return nil, fmt.Errorf("domains file '%s' contains no domains", b.DomainsFile)
	}
	return domains, nil
}

func (b *Benchmark) initRequestLogging() error {
	path := b.RequestLogPath
	if path == "" {
		path = dnsbench.DefaultRequestLogPath
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open request log file: %w", err)
	}
	b.requestLogFile = file
	log.SetOutput(file)
	return nil
}

func (b *Benchmark) closeRequestLogging() {
	if b.requestLogFile != nil {
		log.SetOutput(os.Stderr)
		b.requestLogFile.Close()
		b.requestLogFile = nil
	}
}

// progressSink adapts the runner progress notifications to a console
// progress bar.
func progressSink() dnsbench.ProgressFunc {
	var bar *progressbar.ProgressBar
	barTotal := -1
	return func(message string, current, total int) {
		if bar == nil || total != barTotal {
			barTotal = total
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Describe(message)
		_ = bar.Set(current)
	}
}
