package reporter

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tantalor93/dnscompare/pkg/dnsbench"
)

func TestWriteResultsCSV(t *testing.T) {
	results := []dnsbench.QueryResult{
		testQueryResult("Cloudflare", 10*time.Millisecond, dnsbench.StatusSuccess),
		testQueryResult("Cloudflare", 0, dnsbench.StatusTimeout),
	}
	results[0].Answers = []string{"a1", "a2"}

	var buf bytes.Buffer
	require.NoError(t, writeResultsCSV(&buf, results))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, csvHeader, rows[0])

	success := rows[1]
	assert.Equal(t, "example.org", success[1])
	assert.Equal(t, "A", success[2])
	assert.Equal(t, "Cloudflare", success[3])
	assert.Equal(t, "udp", success[4])
	assert.Equal(t, "success", success[5])
	assert.Equal(t, "10.000", success[6])
	assert.Equal(t, "300", success[9])
	assert.Equal(t, "false", success[10])
	assert.Equal(t, "a1|a2", success[11])
	assert.Empty(t, success[12])

	timeout := rows[2]
	assert.Equal(t, "timeout", timeout[5])
	assert.Empty(t, timeout[9], "no TTL without answers")
	assert.Equal(t, "read udp: i/o timeout", timeout[12])
}

func TestWriteResultsCSV_empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResultsCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "only the header is written")
}
