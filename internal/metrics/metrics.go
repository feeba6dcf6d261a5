// Package metrics exposes prometheus counters for the contract lifecycle.
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
	registerOnce sync.Once

	contractTransitions *prometheus.CounterVec
	rejectedTransitions *prometheus.CounterVec
	sweeperExpired      prometheus.Counter
	sweeperRuns         *prometheus.CounterVec
	notificationsSent   *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
)

func init() {
	contractTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_transitions_total",
		Help: "Committed contract status transitions",
	}, []string{"from", "to"})

	rejectedTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_transitions_rejected_total",
		Help: "Contract operations rejected by the lifecycle engine",
	}, []string{"operation", "kind"})

	sweeperExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contract_sweeper_expired_total",
		Help: "Contracts expired by the deadline sweeper",
	})

	sweeperRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_sweeper_runs_total",
		Help: "Sweeper ticks by result",
	}, []string{"result"})

	notificationsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Notifications delivered by channel and result",
	}, []string{"channel", "result"})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Processed HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
}

// Register adds the collectors to the registerer once and returns the
// /metrics handler. A nil registerer means the default one.
func Register(registry prometheus.Registerer) (http.Handler, error) {
	var err error
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{
			contractTransitions, rejectedTransitions, sweeperExpired, sweeperRuns,
			notificationsSent, httpRequestsTotal, httpRequestDuration,
		} {
			if err = registry.Register(c); err != nil {
				return
			}
		}
	})

	if gatherer, ok := registry.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}), err
	}
	return promhttp.Handler(), err
}

func ContractTransition(from, to string) {
	contractTransitions.WithLabelValues(from, to).Inc()
}

func TransitionRejected(operation, kind string) {
	rejectedTransitions.WithLabelValues(operation, kind).Inc()
}

func SweeperRun(expired int, err error) {
	if err != nil {
		sweeperRuns.WithLabelValues("error").Inc()
		return
	}
	sweeperRuns.WithLabelValues("ok").Inc()
	sweeperExpired.Add(float64(expired))
}

func NotificationSent(channel string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notificationsSent.WithLabelValues(channel, result).Inc()
}

// GinMiddleware records request counts and latency keyed by route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
