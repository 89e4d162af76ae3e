package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/tantalor93/dnscompare/pkg/dnsbench"
	"github.com/tantalor93/dnscompare/pkg/printutils"
	"github.com/tantalor93/dnscompare/pkg/reporter"
	"github.com/tantalor93/dnscompare/pkg/resolvers"
)

var (
	// Version is set during release of project during build process.
	Version = "development"

	author = "Ondrej Benkovsky <obenky@gmail.com>"
)

var (
	pApp = kingpin.New("dnscompare", "A real-world DNS resolver benchmark.").Author(author)

	benchmark Benchmark
)

// modeOrder fixes the report order when multiple test modes produce results.
var modeOrder = []string{dnsbench.ModeCold, dnsbench.ModeWarm, dnsbench.ModeBurst, dnsbench.ModeNXDomain}

func init() {
	pApp.Flag("mode", "Test mode. 'cold' bypasses resolver caches with randomized prefixes, 'warm' measures cached lookups, "+
		"'burst' simulates the DNS fan-out of page loads, 'nxdomain' probes handling of non-existent domains and 'comprehensive' runs all of them.").
		Short('m').Default(dnsbench.ModeCold).
		EnumVar(&benchmark.Mode, dnsbench.ModeCold, dnsbench.ModeWarm, dnsbench.ModeBurst, dnsbench.ModeNXDomain, dnsbench.ModeComprehensive)

	pApp.Flag("resolver", "Resolver to test. Repeatable flag. Either a well-known resolver name ("+strings.Join(resolvers.List(), ", ")+"), "+
		"a bare IP address, or a 'name=IP' pair for a named custom resolver. Defaults to "+strings.Join(resolvers.DefaultResolvers, ", ")+".").
		Short('r').StringsVar(&benchmark.Resolvers)

	pApp.Flag("transport", "Transport protocol to use. Repeatable flag. Resolvers that do not support a selected transport are skipped for it.").
		Short('t').Default(string(dnsbench.UDP)).
		EnumsVar(&benchmark.Transports, string(dnsbench.UDP), string(dnsbench.TCP), string(dnsbench.DOT), string(dnsbench.DOH))

	pApp.Flag("type", "Record type to query. Repeatable flag. Defaults depend on the test mode.").
		EnumsVar(&benchmark.Types, "A", "AAAA", "CNAME", "MX", "TXT", "NS")

	pApp.Flag("domains", "Number of base domains per workload.").
		Short('d').Default("50").IntVar(&benchmark.DomainCount)

	pApp.Flag("domains-file", "File with base domains to test, one per line. When not provided, an embedded top-domains list is used.").
		PlaceHolder("/path/to/domains.txt").StringVar(&benchmark.DomainsFile)

	pApp.Flag("runs", "Number of measured iterations per test mode.").
		Short('n').Default("3").IntVar(&benchmark.Runs)

	pApp.Flag("concurrency", "Maximum number of in-flight queries per batch.").
		Short('c').Default("10").IntVar(&benchmark.Concurrency)

	pApp.Flag("timeout", "Per-attempt query timeout.").
		Default("5s").DurationVar(&benchmark.Timeout)

	pApp.Flag("retries", "Number of retries on transport failure, 1 retry means 2 attempts in total.").
		Default("1").IntVar(&benchmark.Retries)

	pApp.Flag("dnssec", "Request DNSSEC records via the EDNS0 DO bit. Enabled by default.").
		Default("true").BoolVar(&benchmark.DNSSEC)

	pApp.Flag("rate-limit", "Apply a global queries / second rate limit.").
		Short('l').Default("0").IntVar(&benchmark.Rate)

	pApp.Flag("warmup", "Number of discarded warm-up batches in warm mode.").
		Default("2").IntVar(&benchmark.WarmupBatches)

	pApp.Flag("burst-size", "Number of domains per burst in burst mode.").
		Default("20").IntVar(&benchmark.BurstSize)

	pApp.Flag("burst-concurrency", "Maximum number of in-flight queries in burst mode.").
		Default("30").IntVar(&benchmark.BurstConcurrency)

	pApp.Flag("nxdomain-count", "Number of non-existent domain probes per run in nxdomain mode.").
		Default("20").IntVar(&benchmark.NXDomainCount)

	pApp.Flag("cname-chains", "Add queries for domains known to sit behind CNAME chains to the cold workload.").
		Default("false").BoolVar(&benchmark.CNAMEChains)

	pApp.Flag("doh-protocol", "HTTP protocol to use for DoH requests. Supported values: 1.1, 2 and 3.").
		Default(dnsbench.HTTP1Proto).EnumVar(&benchmark.DohProtocol, dnsbench.HTTP1Proto, dnsbench.HTTP2Proto, dnsbench.HTTP3Proto)

	pApp.Flag("request-log", "Log every request to a file.").
		Default("false").BoolVar(&benchmark.RequestLogEnabled)

	pApp.Flag("request-log-path", "Path to the request log file.").
		Default(dnsbench.DefaultRequestLogPath).StringVar(&benchmark.RequestLogPath)

	pApp.Flag("flush-cache", "Attempt to flush the OS DNS cache before testing. Typically requires elevated privileges.").
		Default("false").BoolVar(&benchmark.FlushCache)

	pApp.Flag("json", "Report benchmark results as JSON.").BoolVar(&benchmark.JSON)

	pApp.Flag("silent", "Disable stdout.").Default("false").BoolVar(&benchmark.Silent)

	pApp.Flag("color", "ANSI Color output. Enabled by default.").
		Default("true").BoolVar(&benchmark.Color)

	pApp.Flag("csv", "Export raw query results to CSV.").
		Default("").PlaceHolder("/path/to/file.csv").StringVar(&benchmark.Csv)

	pApp.Flag("plot", "Plot benchmark results and export them to the directory.").
		Default("").PlaceHolder("/path/to/folder").StringVar(&benchmark.PlotDir)

	pApp.Flag("plotf", "Format of graphs. Supported formats: png, jpg, svg.").
		Default("svg").EnumVar(&benchmark.PlotFormat, "png", "jpg", "svg")

	pApp.Flag("distribution", "Display distribution histogram of timings to stdout. Enabled by default.").
		Default("true").BoolVar(&benchmark.HistDisplay)
}

// Execute starts main logic of command.
func Execute() {
	pApp.Version(Version)
	kingpin.MustParse(pApp.Parse(os.Args[1:]))

	sigsInt := make(chan os.Signal, 8)
	signal.Notify(sigsInt, syscall.SIGINT)

	defer close(sigsInt)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		_, ok := <-sigsInt
		if !ok {
			// standard exit based on channel close
			return
		}
		fmt.Fprintf(os.Stderr, "\nCancelling benchmark ^C, again to terminate now.\n")
		cancel()
		<-sigsInt
		os.Exit(1)
	}()

	results, err := benchmark.Run(ctx)
	if err != nil {
		printutils.ErrFprintf(os.Stderr, "There was an error while starting benchmark: %s\n", err.Error())
		return
	}

	opts := reporter.Options{
		JSON:        benchmark.JSON,
		CSVPath:     benchmark.Csv,
		PlotDir:     benchmark.PlotDir,
		PlotFormat:  benchmark.PlotFormat,
		HistDisplay: benchmark.HistDisplay,
		Silent:      benchmark.Silent,
	}
	for _, mode := range sortedModes(results) {
		// CSV export of multiple modes into one file would overwrite itself
		if len(results) > 1 && opts.CSVPath != "" {
			opts.CSVPath = csvFileForMode(benchmark.Csv, mode)
		}
		if err := reporter.PrintReport(os.Stdout, results[mode], opts); err != nil {
			printutils.ErrFprintf(os.Stderr, "There was an error while printing report: %s\n", err.Error())
		}
	}
}

func sortedModes(results map[string]*dnsbench.BenchmarkResult) []string {
	modes := make([]string, 0, len(results))
	for mode := range results {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool {
		return modeIndex(modes[i]) < modeIndex(modes[j])
	})
	return modes
}

func modeIndex(mode string) int {
	for i, m := range modeOrder {
		if m == mode {
			return i
		}
	}
	return len(modeOrder)
}

func csvFileForMode(path, mode string) string {
	if ext := strings.LastIndex(path, "."); ext > 0 {
		return path[:ext] + "-" + mode + path[ext:]
	}
	return path + "-" + mode
}
