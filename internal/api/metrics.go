package api

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	labelMethod   = "method"
	labelEndpoint = "endpoint"
	labelStatus   = "status"
	labelCode     = "code"
)

var apiLatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// PrometheusObserver records call counts and latencies.
type PrometheusObserver struct {
	calls    *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewPrometheusObserver registers the API metrics on reg.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	f := promauto.With(reg)
	return &PrometheusObserver{
		calls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landminer_api_calls_total",
			Help: "Total number of mining API calls by endpoint and HTTP status",
		}, []string{labelMethod, labelEndpoint, labelStatus}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landminer_api_failures_total",
			Help: "Total number of failed mining API calls by error code",
		}, []string{labelEndpoint, labelCode}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "landminer_api_call_duration_seconds",
			Help:    "Mining API call latency including retries",
			Buckets: apiLatencyBuckets,
		}, []string{labelMethod, labelEndpoint}),
	}
}

func (o *PrometheusObserver) OnCallComplete(event CallEvent) {
	o.calls.WithLabelValues(event.Method, event.Endpoint, strconv.Itoa(event.Status)).Inc()
	o.latency.WithLabelValues(event.Method, event.Endpoint).Observe(float64(event.LatencyMs) / 1000)
	if !event.Success {
		o.failures.WithLabelValues(event.Endpoint, event.ErrorCode).Inc()
	}
}
