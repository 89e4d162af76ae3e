package reporter

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"

	"github.com/tantalor93/dnscompare/pkg/dnsbench"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

func successLatencies(results []dnsbench.QueryResult) plotter.Values {
	var values plotter.Values
	for _, r := range results {
		if r.IsSuccess() {
			values = append(values, r.LatencyMs())
		}
	}
	return values
}

func plotHistogramLatency(file string, results []dnsbench.QueryResult) {
	values := successLatencies(results)
	if len(values) == 0 {
		// nothing to plot
		return
	}
	p := plot.New()
	p.Title.Text = "Latencies distribution"

	hist, err := plotter.NewHist(values, numBins(values))
	if err != nil {
		panic(err)
	}
	p.X.Label.Text = "Latencies (ms)"
	p.X.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}
	p.Y.Label.Text = "Number of requests"
	p.Y.Tick.Marker = hplot.Ticks{N: 5, Format: "%.0f"}
	hist.FillColor = color.RGBA{R: 175, G: 238, B: 238, A: 255}
	p.Add(hist)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, file); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to save plot.", err)
	}
}

// numBins calculates number of bins for histogram.
func numBins(values plotter.Values) int {
	n := float64(len(values))

	// small dataset
	if n < 100 {
		sqrt := math.Sqrt(n)
		return int(math.Min(15, sqrt))
	}

	// medium dataset - use Rice's rule
	if n < 1000 {
		rice := 2 * math.Cbrt(n)
		return int(math.Min(30, rice))
	}

	// large dataset - use Doane's rule
	skewness := stat.Skew(values, nil)
	sigmaG := math.Sqrt(6 * (n - 2) / ((n + 1) * (n + 3)))
	doane := 1 + math.Log2(n) + math.Log2(1+math.Abs(skewness)/sigmaG)
	return int(math.Min(50, doane))
}

func plotBoxPlotLatency(file string, results []dnsbench.QueryResult) {
	groups := make(map[string]plotter.Values)
	for _, r := range results {
		if !r.IsSuccess() {
			continue
		}
		key := r.Resolver.Name + " (" + string(r.Transport) + ")"
		groups[key] = append(groups[key], r.LatencyMs())
	}
	if len(groups) == 0 {
		// nothing to plot
		return
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	p := plot.New()
	p.Title.Text = "Latencies distribution"
	p.Y.Label.Text = "Latencies (ms)"
	p.Y.Tick.Marker = hplot.Ticks{N: 3, Format: "%.0f"}
	p.NominalX(names...)

	for i, name := range names {
		boxplot, err := plotter.NewBoxPlot(vg.Length(40), float64(i), groups[name])
		if err != nil {
			panic(err)
		}
		boxplot.FillColor = color.RGBA{R: 127, G: 188, B: 165, A: 255}
		p.Add(boxplot)
	}

	if err := p.Save(6*vg.Inch, 6*vg.Inch, file); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to save plot.", err)
	}
}

func plotStatuses(file string, results []dnsbench.QueryResult) {
	statuses := make(map[dnsbench.QueryStatus]int64)
	for _, r := range results {
		statuses[r.Status]++
	}
	if len(statuses) == 0 {
		// nothing to plot
		return
	}
	sortedKeys := make([]string, 0, len(statuses))
	for k := range statuses {
		sortedKeys = append(sortedKeys, string(k))
	}
	sort.Strings(sortedKeys)

	colors := []color.Color{
		color.RGBA{R: 122, G: 195, B: 106, A: 255},
		color.RGBA{R: 241, G: 90, B: 96, A: 255},
		color.RGBA{R: 90, G: 155, B: 212, A: 255},
		color.RGBA{R: 250, G: 167, B: 91, A: 255},
		color.RGBA{R: 158, G: 103, B: 171, A: 255},
		color.RGBA{R: 206, G: 112, B: 88, A: 255},
	}
	colors = append(colors, plotutil.DarkColors...)

	p := plot.New()
	p.Title.Text = "Query status distribution"
	p.NominalX("Statuses")

	width := vg.Points(40)

	c := 0
	off := -vg.Length(len(statuses)/2) * width
	for _, v := range sortedKeys {
		bar, err := plotter.NewBarChart(plotter.Values{float64(statuses[dnsbench.QueryStatus(v)])}, width)
		if err != nil {
			panic(err)
		}
		p.Legend.Add(v, bar)
		bar.Color = colors[c%len(colors)]
		bar.Offset = off
		p.Add(bar)
		c++
		off += width
	}

	p.Y.Label.Text = "Number of queries"
	p.Y.Tick.Marker = hplot.Ticks{N: 3, Format: "%.0f"}
	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 6*vg.Inch, file); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to save plot.", err)
	}
}
