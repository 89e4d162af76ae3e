package dnsbench

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dnsRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dnscompare",
		Name:      "dns_requests_duration_seconds",
		Help:      "DNS request duration in seconds",
	}, []string{"transport"})

	dnsResponseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dnscompare",
		Name:      "dns_response_total",
		Help:      "The total number of DNS responses",
	}, []string{"transport", "status"})

	dnsErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dnscompare",
		Name:      "errors_total",
		Help:      "The total number of failed query attempts",
	}, []string{"transport"})
)
