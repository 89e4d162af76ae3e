package reporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/olekukonko/tablewriter"
	"github.com/tantalor93/dnscompare/pkg/dnsbench"
	"github.com/tantalor93/dnscompare/pkg/printutils"
)

type standardReporter struct{}

func (s *standardReporter) print(params reportParameters) error {
	res := params.result
	w := params.outputWriter

	printutils.NeutralFprintf(w, "\nBenchmark %s finished in %s\n",
		printutils.HighlightSprint(res.TestMode), printutils.HighlightSprint(roundDuration(res.Duration())))
	printutils.NeutralFprintf(w, "Domains: %s, runs: %s, parallel queries: %s, total queries: %s\n",
		printutils.HighlightSprint(res.DomainsTested), printutils.HighlightSprint(res.Runs),
		printutils.HighlightSprint(res.ParallelQueries), printutils.HighlightSprint(len(res.RawResults)))

	if len(res.ResolverStats) > 0 {
		printutils.NeutralFprintf(w, "\nPer-resolver results:\n")
		printStatsTable(w, res.ResolverStats)
	}

	printComparison(w, params.comparison)

	if tc := params.hist.TotalCount(); params.histDisplay && tc > 1 {
		printutils.NeutralFprintf(w, "\nLatency distribution, %s datapoints\n", printutils.HighlightSprint(tc))
		printBars(w, params.hist.Distribution())
	}

	printErrors(w, res.RawResults)
	return nil
}

func printStatsTable(w io.Writer, stats []dnsbench.ResolverStats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Resolver", "Transport", "Queries", "Success", "Avg", "Median", "P95", "P99", "Jitter", "Timeouts", "Errors"})
	table.SetBorder(false)
	for _, s := range stats {
		table.Append([]string{
			s.Resolver.Name,
			string(s.Transport),
			strconv.Itoa(s.TotalQueries),
			fmt.Sprintf("%.1f%%", s.SuccessRate()),
			formatMs(s.AvgLatency),
			formatMs(s.MedianLatency),
			formatMs(s.P95Latency),
			formatMs(s.P99Latency),
			formatMs(s.Jitter),
			strconv.Itoa(s.TimeoutCount),
			strconv.Itoa(s.ErrorCount),
		})
	}
	table.Render()
}

func printComparison(w io.Writer, cmp dnsbench.Comparison) {
	if cmp.Winner == nil {
		return
	}
	printutils.NeutralFprintf(w, "\nFastest resolver: ")
	printutils.SuccessFprintf(w, "%s (%s)", cmp.Winner.Resolver.Name, cmp.Winner.Transport)
	printutils.NeutralFprintf(w, " with %s avg latency and %s success rate\n",
		printutils.HighlightSprint(formatMs(cmp.Winner.AvgLatency)),
		printutils.HighlightSprintf("%.1f%%", cmp.Winner.SuccessRate()))

	for _, ranking := range cmp.ByComposite[1:] {
		line := fmt.Sprintf("\t%s (score %.2f)", ranking.Resolver, ranking.Value)
		if improvement, ok := cmp.Improvements[ranking.Resolver]; ok {
			line += fmt.Sprintf(", winner is %.1f%% faster", improvement)
		}
		printutils.NeutralFprintf(w, "%s\n", line)
	}
}

func printErrors(w io.Writer, results []dnsbench.QueryResult) {
	grouped := make(map[string]int)
	order := make([]string, 0)
	for _, r := range results {
		if r.Error == "" {
			continue
		}
		if _, ok := grouped[r.Error]; !ok {
			order = append(order, r.Error)
		}
		grouped[r.Error]++
	}
	if len(grouped) == 0 {
		return
	}
	total := 0
	for _, v := range grouped {
		total += v
	}
	printutils.ErrFprintf(w, "\nTotal errors: %d\n", total)
	for _, err := range order {
		printutils.ErrFprintf(w, "\t%s\t%d (%.2f%%)\n", err, grouped[err], float64(grouped[err])/float64(total)*100)
	}
}

func printBars(w io.Writer, bars []hdrhistogram.Bar) {
	counts := make([]int64, 0, len(bars))
	lines := make([][]string, 0, len(bars))
	added := false
	var max int64

	for _, b := range bars {
		if b.Count == 0 && !added {
			// trim the start
			continue
		}
		if b.Count > max {
			max = b.Count
		}
		added = true

		line := make([]string, 3)
		lines = append(lines, line)
		counts = append(counts, b.Count)

		line[0] = roundDuration(time.Duration(b.To/2 + b.From/2)).String()
		line[2] = strconv.FormatInt(b.Count, 10)
	}

	for i, l := range lines {
		l[1] = makeBar(counts[i], max)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Latency", "", "Count"})
	table.SetBorder(false)
	table.AppendBulk(lines)
	table.Render()
}

func makeBar(c int64, max int64) string {
	if c == 0 {
		return ""
	}
	t := int((43 * float64(c) / float64(max)) + 0.5)
	return strings.Repeat("▄", t)
}

func formatMs(ms float64) string {
	return fmt.Sprintf("%.2fms", ms)
}
