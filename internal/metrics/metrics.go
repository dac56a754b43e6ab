package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	scans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docscan_scans_total",
		Help: "Scan attempts by result.",
	}, []string{"result"})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docscan_scan_duration_seconds",
		Help:    "Time spent comparing a document against the corpus.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	creditResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docscan_credit_resets_total",
		Help: "User balances restored by the daily reset.",
	})
)

// Scan results.
const (
	ScanOK           = "ok"
	ScanNoCredits    = "no_credits"
	ScanInvalid      = "invalid"
	ScanTimeout      = "timeout"
	ScanStorageError = "error"
)

// ObserveScan records one scan attempt.
func ObserveScan(result string, elapsed time.Duration) {
	scans.WithLabelValues(result).Inc()
	if result == ScanOK {
		scanDuration.Observe(elapsed.Seconds())
	}
}

// AddCreditResets counts balances restored by a sweep.
func AddCreditResets(n int64) {
	if n > 0 {
		creditResets.Add(float64(n))
	}
}

// Middleware records request counts and latency labelled by route pattern.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method

			httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
