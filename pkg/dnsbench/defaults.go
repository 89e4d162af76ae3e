package dnsbench

import (
	"time"
)

const (
	// DefaultEdns0BufferSize default EDNS0 buffer size according to the http://www.dnsflagday.net/2020/
	DefaultEdns0BufferSize = 1232

	// DefaultTimeout is the default per-attempt query timeout.
	DefaultTimeout = 5 * time.Second

	// DefaultRetries is the default number of retries on transport failure,
	// 1 retry means 2 attempts in total.
	DefaultRetries = 1

	// DefaultConcurrency is the default cap on in-flight queries per batch.
	DefaultConcurrency = 10

	// DefaultDomainCount is the default number of base domains per workload.
	DefaultDomainCount = 50

	// DefaultRuns is the default number of measured iterations per mode.
	DefaultRuns = 3

	// DefaultWarmupBatches is the default number of discarded warm-up
	// batches in warm mode.
	DefaultWarmupBatches = 2

	// DefaultBurstSize is the default number of domains per burst.
	DefaultBurstSize = 20

	// DefaultBurstConcurrency is the default in-flight cap for burst mode.
	DefaultBurstConcurrency = 30

	// DefaultNXDomainCount is the default number of NXDOMAIN probes per run.
	DefaultNXDomainCount = 20

	// DefaultRequestLogPath is a default path to the file, where the
	// requests will be logged.
	DefaultRequestLogPath = "requests.log"

	// retryDelay is the fixed pause between query attempts.
	retryDelay = 100 * time.Millisecond
)

const (
	// HTTP1Proto is the HTTP/1.1 protocol version for DoH.
	HTTP1Proto = "1.1"
	// HTTP2Proto is the HTTP/2 protocol version for DoH.
	HTTP2Proto = "2"
	// HTTP3Proto is the HTTP/3 protocol version for DoH.
	HTTP3Proto = "3"
)
