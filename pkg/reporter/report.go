// Package reporter renders dnsbench.BenchmarkResult values to the console,
// JSON, CSV and plot files. It only consumes results, the benchmark core
// never depends on it.
package reporter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/tantalor93/dnscompare/pkg/dnsbench"
)

// Options control which renderings of a benchmark result are produced.
type Options struct {
	// JSON renders the result as a JSON document instead of the standard
	// console report.
	JSON bool
	// CSVPath, when set, exports the raw query results as CSV to that file.
	CSVPath string
	// PlotDir, when set, exports latency and response plots to that
	// directory.
	PlotDir string
	// PlotFormat is the graph file format, defaults to svg.
	PlotFormat string
	// HistDisplay enables the latency distribution histogram in the console
	// report.
	HistDisplay bool
	// Silent suppresses all console output (file exports still happen).
	Silent bool
}

type reportParameters struct {
	result       *dnsbench.BenchmarkResult
	comparison   dnsbench.Comparison
	outputWriter io.Writer
	hist         *hdrhistogram.Histogram
	histDisplay  bool
}

type reportPrinter interface {
	print(params reportParameters) error
}

// PrintReport renders the benchmark result to w and produces the configured
// exports. If there is a fatal error while rendering, an error is returned.
func PrintReport(w io.Writer, res *dnsbench.BenchmarkResult, opts Options) error {
	if opts.PlotDir != "" {
		if err := directoryExists(opts.PlotDir); err != nil {
			return fmt.Errorf("unable to plot results: %w", err)
		}
		now := time.Now().Format(time.RFC3339)
		dir := fmt.Sprintf("%s/graphs-%s-%s", opts.PlotDir, res.TestMode, now)
		if err := os.Mkdir(dir, os.ModePerm); err != nil {
			return fmt.Errorf("unable to plot results: %w", err)
		}
		format := opts.PlotFormat
		if format == "" {
			format = "svg"
		}
		plotHistogramLatency(fileName(dir, "latency-histogram", format), res.RawResults)
		plotBoxPlotLatency(fileName(dir, "latency-boxplot", format), res.RawResults)
		plotStatuses(fileName(dir, "statuses-barchart", format), res.RawResults)
	}

	if opts.CSVPath != "" {
		f, err := os.Create(opts.CSVPath)
		if err != nil {
			return fmt.Errorf("failed to create file for CSV export due to '%v'", err)
		}
		defer f.Close()
		if err := writeResultsCSV(f, res.RawResults); err != nil {
			return fmt.Errorf("failed to export CSV: %w", err)
		}
	}

	if opts.Silent {
		return nil
	}

	params := reportParameters{
		result:       res,
		comparison:   dnsbench.CompareResolvers(res.ResolverStats),
		outputWriter: w,
		hist:         buildHistogram(res.RawResults),
		histDisplay:  opts.HistDisplay,
	}
	var printer reportPrinter = &standardReporter{}
	if opts.JSON {
		printer = &jsonReporter{}
	}
	return printer.print(params)
}

// buildHistogram records all successful latencies into an HDR histogram used
// for the distribution display.
func buildHistogram(results []dnsbench.QueryResult) *hdrhistogram.Histogram {
	hist := hdrhistogram.New(time.Microsecond.Nanoseconds(), time.Minute.Nanoseconds(), 1)
	for _, r := range results {
		if r.IsSuccess() {
			_ = hist.RecordValue(r.Timing.Total.Nanoseconds())
		}
	}
	return hist
}

func directoryExists(plotDir string) error {
	stat, err := os.Stat(plotDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' path does not point to an existing directory", plotDir)
		}
		return err
	}
	if !stat.IsDir() {
		return fmt.Errorf("'%s' does not point to a directory", plotDir)
	}
	return nil
}

func fileName(dir, name, format string) string {
	return dir + "/" + name + "." + format
}

// roundDuration trims wall-clock durations to a precision readable in the
// report header.
func roundDuration(dur time.Duration) time.Duration {
	switch {
	case dur > time.Minute:
		return dur.Round(10 * time.Second)
	case dur > time.Second:
		return dur.Round(10 * time.Millisecond)
	case dur > time.Millisecond:
		return dur.Round(10 * time.Microsecond)
	case dur > time.Microsecond:
		return dur.Round(10 * time.Nanosecond)
	default:
		return dur
	}
}
