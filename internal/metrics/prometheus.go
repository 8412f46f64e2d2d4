package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	// DetectionCount counts duplicate detection runs
	DetectionCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplink_detections_total",
			Help: "Total number of duplicate detection runs",
		},
		[]string{"status"},
	)

	// DetectionDuration measures detection run duration
	DetectionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "duplink_detection_duration_seconds",
			Help:    "Duplicate detection duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	// PairCount counts source/segment pairs by prefilter outcome
	PairCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplink_pairs_total",
			Help: "Source/segment pairs seen by the linker, by outcome",
		},
		[]string{"outcome"},
	)

	// LinkCount counts duplicate links found
	LinkCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duplink_links_total",
			Help: "Total number of duplicate links found",
		},
	)

	// DiffCount counts diffs attached to links
	DiffCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplink_diffs_total",
			Help: "Total number of diffs attached to links, by kind",
		},
		[]string{"kind"},
	)

	registerOnce sync.Once
)

// InitPrometheus registers all metrics with the default registry. Safe to
// call more than once.
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCount)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(DetectionCount)
		prometheus.MustRegister(DetectionDuration)
		prometheus.MustRegister(PairCount)
		prometheus.MustRegister(LinkCount)
		prometheus.MustRegister(DiffCount)
	})
}

// MetricsHandler returns Prometheus metrics handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// GinMiddleware records request count and latency per route
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestCount.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// ObserveDetection records the outcome and duration of a detection run
func ObserveDetection(status string, elapsed time.Duration) {
	DetectionCount.WithLabelValues(status).Inc()
	DetectionDuration.Observe(elapsed.Seconds())
}
