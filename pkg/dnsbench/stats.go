package dnsbench

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// CalculateResolverStats reduces raw results of one resolver×transport pair
// into aggregated statistics. Latency statistics, including jitter, are
// computed exclusively over the successful subset, in the original
// execution-submission order of the input. With zero successes every latency
// field is exactly 0.
func CalculateResolverStats(results []QueryResult, resolver ResolverConfig, transportType Transport) ResolverStats {
	s := ResolverStats{Resolver: resolver, Transport: transportType}

	var latencies []float64
	for _, r := range results {
		s.TotalQueries++
		if r.IsSuccess() {
			s.SuccessfulQueries++
			latencies = append(latencies, r.LatencyMs())
		} else {
			s.FailedQueries++
		}
		switch r.Status {
		case StatusTimeout:
			s.TimeoutCount++
		case StatusNXDomain:
			s.NxdomainCount++
		case StatusError, StatusServfail, StatusRefused:
			s.ErrorCount++
		}
	}

	if len(latencies) == 0 {
		return s
	}

	s.MinLatency, _ = stats.Min(latencies)
	s.MaxLatency, _ = stats.Max(latencies)
	s.AvgLatency, _ = stats.Mean(latencies)
	s.MedianLatency, _ = stats.Median(latencies)
	s.StddevLatency, _ = stats.StandardDeviation(latencies)

	sorted := append([]float64(nil), latencies...)
	sort.Float64s(sorted)
	s.P95Latency = percentile(sorted, 95)
	s.P99Latency = percentile(sorted, 99)

	if len(latencies) > 1 {
		var sum float64
		for i := 1; i < len(latencies); i++ {
			sum += math.Abs(latencies[i] - latencies[i-1])
		}
		s.Jitter = sum / float64(len(latencies)-1)
	}
	return s
}

// percentile computes the p-th percentile of sorted values using
// linear-interpolated rank. The stats library implements the exclusive
// nearest-rank method, which differs for small samples.
func percentile(sorted []float64, p float64) float64 {
	switch len(sorted) {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo])
}

// CalculateRecordTypeStats breaks the result set down per record type.
// The returned slice is ordered by record type for determinism.
func CalculateRecordTypeStats(results []QueryResult) []RecordTypeStats {
	byType := make(map[RecordType][]QueryResult)
	for _, r := range results {
		byType[r.Type] = append(byType[r.Type], r)
	}

	types := make([]RecordType, 0, len(byType))
	for rt := range byType {
		types = append(types, rt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	recordStats := make([]RecordTypeStats, 0, len(types))
	for _, rt := range types {
		typeResults := byType[rt]
		var latencySum float64
		successful := 0
		for _, r := range typeResults {
			if r.IsSuccess() {
				successful++
				latencySum += r.LatencyMs()
			}
		}
		avg := 0.0
		if successful > 0 {
			avg = latencySum / float64(successful)
		}
		recordStats = append(recordStats, RecordTypeStats{
			Type:        rt,
			Count:       len(typeResults),
			AvgLatency:  avg,
			SuccessRate: float64(successful) / float64(len(typeResults)) * 100,
		})
	}
	return recordStats
}

// Ranking is one entry of a resolver ranking, Value carries the ranked
// quantity (average latency, success rate or composite score).
type Ranking struct {
	Resolver string  `json:"resolver"`
	Value    float64 `json:"value"`
}

// Comparison ranks resolvers against each other. Only resolvers with at
// least one successful query participate; when none qualifies the rankings
// are empty and Winner is nil.
type Comparison struct {
	ByLatency     []Ranking `json:"byLatency"`
	ByReliability []Ranking `json:"byReliability"`
	ByComposite   []Ranking `json:"byComposite"`

	Winner *ResolverStats `json:"winner,omitempty"`
	// Improvements maps every non-winner to the percentage by which the
	// winner's average latency improves on it. Entries with a zero average
	// are omitted.
	Improvements map[string]float64 `json:"improvements,omitempty"`
}

// CompareResolvers ranks the given per-resolver aggregates by latency, by
// reliability and by a composite score of 0.6×normalized latency +
// 0.4×success rate. Latency normalization rescales averages into [0,1] with
// 1.0 for the fastest and 0.0 for the slowest; when every candidate has the
// same average all latency scores collapse to 1.0.
func CompareResolvers(statsList []ResolverStats) Comparison {
	var valid []ResolverStats
	for _, s := range statsList {
		if s.SuccessfulQueries > 0 {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return Comparison{}
	}

	minAvg, maxAvg := valid[0].AvgLatency, valid[0].AvgLatency
	for _, s := range valid[1:] {
		minAvg = math.Min(minAvg, s.AvgLatency)
		maxAvg = math.Max(maxAvg, s.AvgLatency)
	}
	composite := func(s ResolverStats) float64 {
		latScore := 1.0
		if maxAvg != minAvg {
			latScore = 1 - (s.AvgLatency-minAvg)/(maxAvg-minAvg)
		}
		return latScore*0.6 + s.SuccessRate()/100*0.4
	}

	byLatency := append([]ResolverStats(nil), valid...)
	sort.SliceStable(byLatency, func(i, j int) bool { return byLatency[i].AvgLatency < byLatency[j].AvgLatency })

	byReliability := append([]ResolverStats(nil), valid...)
	sort.SliceStable(byReliability, func(i, j int) bool { return byReliability[i].SuccessRate() > byReliability[j].SuccessRate() })

	byComposite := append([]ResolverStats(nil), valid...)
	sort.SliceStable(byComposite, func(i, j int) bool { return composite(byComposite[i]) > composite(byComposite[j]) })

	winner := byComposite[0]

	improvements := make(map[string]float64)
	for _, s := range byComposite[1:] {
		if s.AvgLatency > 0 {
			improvements[s.Resolver.Name] = (s.AvgLatency - winner.AvgLatency) / s.AvgLatency * 100
		}
	}

	cmp := Comparison{
		Winner:       &winner,
		Improvements: improvements,
	}
	for _, s := range byLatency {
		cmp.ByLatency = append(cmp.ByLatency, Ranking{Resolver: s.Resolver.Name, Value: s.AvgLatency})
	}
	for _, s := range byReliability {
		cmp.ByReliability = append(cmp.ByReliability, Ranking{Resolver: s.Resolver.Name, Value: s.SuccessRate()})
	}
	for _, s := range byComposite {
		cmp.ByComposite = append(cmp.ByComposite, Ranking{Resolver: s.Resolver.Name, Value: composite(s)})
	}
	return cmp
}
