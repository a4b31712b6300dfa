package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
	httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crm",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
	painScans = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Subsystem: "pain_radar",
		Name:      "scans_total",
		Help:      "Pain Radar scans by platform and outcome.",
	}, []string{"platform", "status"})
	painPosts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Subsystem: "pain_radar",
		Name:      "posts_fetched_total",
		Help:      "Posts fetched from external platforms.",
	}, []string{"platform"})
	telegramSends = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crm",
		Subsystem: "telegram",
		Name:      "messages_total",
		Help:      "Telegram sendMessage calls by kind and outcome.",
	}, []string{"kind", "status"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpLatency, painScans, painPosts, telegramSends)
}

// RecordScan counts a finished Pain Radar scan.
func RecordScan(platform, status string) {
	painScans.WithLabelValues(platform, status).Inc()
}

// RecordPostsFetched counts posts returned by a platform.
func RecordPostsFetched(platform string, n int) {
	if n <= 0 {
		return
	}
	painPosts.WithLabelValues(platform).Add(float64(n))
}

// RecordTelegramSend counts a Telegram delivery attempt.
func RecordTelegramSend(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	telegramSends.WithLabelValues(kind, status).Inc()
}

// RequestLogger logs every request with zap and feeds the HTTP metrics.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		httpLatency.WithLabelValues(route, c.Request.Method).Observe(elapsed.Seconds())

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
		}
		if ws, ok := c.Get("workspace_id"); ok {
			fields = append(fields, zap.Any("workspace", ws))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}
