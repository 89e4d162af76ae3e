package reporter

import (
	"encoding/json"
	"time"

	"github.com/tantalor93/dnscompare/pkg/dnsbench"
)

type jsonReporter struct{}

type resolverStatsRow struct {
	dnsbench.ResolverStats
	SuccessRate    float64 `json:"successRate"`
	PacketLossRate float64 `json:"packetLossRate"`
}

type jsonResult struct {
	TestMode        string    `json:"testMode"`
	StartedAt       time.Time `json:"startedAt"`
	CompletedAt     time.Time `json:"completedAt"`
	DurationSeconds float64   `json:"durationSeconds"`

	DomainsTested      int `json:"domainsTested"`
	QueriesPerResolver int `json:"queriesPerResolver"`
	Runs               int `json:"runs"`
	ParallelQueries    int `json:"parallelQueries"`
	TotalQueries       int `json:"totalQueries"`

	ResolverStats   []resolverStatsRow                    `json:"resolverStats"`
	Comparison      dnsbench.Comparison                   `json:"comparison"`
	RecordTypeStats map[string][]dnsbench.RecordTypeStats `json:"recordTypeStats,omitempty"`
	RawResults      []dnsbench.QueryResult                `json:"rawResults"`
}

func (j *jsonReporter) print(params reportParameters) error {
	res := params.result

	rows := make([]resolverStatsRow, 0, len(res.ResolverStats))
	for _, s := range res.ResolverStats {
		rows = append(rows, resolverStatsRow{
			ResolverStats:  s,
			SuccessRate:    s.SuccessRate(),
			PacketLossRate: s.PacketLossRate(),
		})
	}

	out := jsonResult{
		TestMode:           res.TestMode,
		StartedAt:          res.StartedAt,
		CompletedAt:        res.CompletedAt,
		DurationSeconds:    roundDuration(res.Duration()).Seconds(),
		DomainsTested:      res.DomainsTested,
		QueriesPerResolver: res.QueriesPerResolver,
		Runs:               res.Runs,
		ParallelQueries:    res.ParallelQueries,
		TotalQueries:       len(res.RawResults),
		ResolverStats:      rows,
		Comparison:         params.comparison,
		RecordTypeStats:    res.RecordTypeStats,
		RawResults:         res.RawResults,
	}
	return json.NewEncoder(params.outputWriter).Encode(out)
}
