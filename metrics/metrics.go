// Package metrics exposes Prometheus instruments for the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrderTransitions counts lifecycle transitions by outcome (ok, rejected, conflict, error)
	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ducali",
		Name:      "order_transitions_total",
		Help:      "Order lifecycle transitions attempted, by transition and outcome.",
	}, []string{"transition", "outcome"})

	// Notifications counts notification deliveries by driver and outcome
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ducali",
		Name:      "notifications_total",
		Help:      "Notification deliveries, by driver and outcome.",
	}, []string{"driver", "outcome"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ducali",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware records request latency per route template
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry in the Prometheus text format
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
