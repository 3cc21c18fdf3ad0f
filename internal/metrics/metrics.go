package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "studynotes"

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Resource uploads by outcome.",
	}, []string{"outcome"})

	compensations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_compensations_total",
		Help:      "Compensating object removals after failed uploads, by result.",
	}, []string{"result"})

	objectStoreRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "object_store_retries_total",
		Help:      "Retried object store calls by operation.",
	}, []string{"operation"})

	registerOnce sync.Once
)

// InitMetrics registers collectors with the default registry. Safe to call
// more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, uploads, compensations, objectStoreRetries)
	})
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Upload outcomes.
const (
	UploadSucceeded = "succeeded"
	UploadRejected  = "rejected"
	UploadFailed    = "failed"
)

// ObserveUpload counts one upload attempt by outcome.
func ObserveUpload(outcome string) {
	uploads.WithLabelValues(outcome).Inc()
}

// Compensation results.
const (
	CompensationRemoved     = "removed"
	CompensationLeftPending = "left_pending"
	CompensationPromoted    = "promoted"
)

// ObserveCompensation counts one compensation of a failed upload by result.
func ObserveCompensation(result string) {
	compensations.WithLabelValues(result).Inc()
}

// ObserveObjectStoreRetry counts one retried object store call.
func ObserveObjectStoreRetry(operation string) {
	objectStoreRetries.WithLabelValues(operation).Inc()
}
