// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type chatMetrics struct {
	messages       *prometheus.CounterVec
	feedback       *prometheus.CounterVec
	closureActions *prometheus.CounterVec
	requestTimes   *prometheus.HistogramVec
}

var (
	once sync.Once
	inst *chatMetrics
)

func global() *chatMetrics {
	once.Do(func() {
		inst = &chatMetrics{
			messages: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "goatchat",
				Name:      "messages_total",
				Help:      "Chat messages persisted, labeled by sender",
			}, []string{"sender"}),
			feedback: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "goatchat",
				Name:      "feedback_submissions_total",
				Help:      "Feedback submissions, labeled by result",
			}, []string{"result"}),
			closureActions: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "goatchat",
				Name:      "closure_actions_total",
				Help:      "Closure prompts emitted by silence checks, labeled by action",
			}, []string{"action"}),
			requestTimes: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "goatchat",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request durations, labeled by method and status",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method", "status"}),
		}
	})
	return inst
}

// RecordMessage counts a persisted chat message.
func RecordMessage(sender string) {
	global().messages.WithLabelValues(sender).Inc()
}

// RecordFeedback counts a feedback submission attempt by result
// ("accepted", "duplicate", "invalid_rating", "error").
func RecordFeedback(result string) {
	global().feedback.WithLabelValues(result).Inc()
}

// RecordClosureAction counts an emitted closure prompt.
func RecordClosureAction(action string) {
	global().closureActions.WithLabelValues(action).Inc()
}

// RequestTimer is a gin middleware recording request durations.
func RequestTimer() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		global().requestTimes.
			WithLabelValues(c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
