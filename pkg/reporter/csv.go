package reporter

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tantalor93/dnscompare/pkg/dnsbench"
)

var csvHeader = []string{
	"timestamp", "domain", "type", "resolver", "transport", "status",
	"total_ms", "connection_ms", "query_ms", "ttl", "cached", "answers", "error",
}

// writeResultsCSV exports raw query results, one row per query in
// submission order.
func writeResultsCSV(w io.Writer, results []dnsbench.QueryResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		ttl := ""
		if r.TTL != nil {
			ttl = strconv.FormatUint(uint64(*r.TTL), 10)
		}
		row := []string{
			r.Timestamp.Format(time.RFC3339Nano),
			r.Domain,
			string(r.Type),
			r.Resolver.Name,
			string(r.Transport),
			string(r.Status),
			strconv.FormatFloat(r.Timing.TotalMs(), 'f', 3, 64),
			strconv.FormatFloat(r.Timing.Connection.Seconds()*1000, 'f', 3, 64),
			strconv.FormatFloat(r.Timing.Query.Seconds()*1000, 'f', 3, 64),
			ttl,
			strconv.FormatBool(r.Cached),
			strings.Join(r.Answers, "|"),
			r.Error,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
