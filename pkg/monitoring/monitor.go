package monitoring

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"curriculum_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// CurriculumMutations 课程树写操作，按操作名与结果分类
	CurriculumMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curriculum_mutations_total",
			Help: "Curriculum tree mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// ReorderSiblings 每次重排涉及的兄弟节点数
	ReorderSiblings = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curriculum_reorder_siblings",
			Help:    "Number of siblings rewritten by a reorder",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"level"},
	)

	TreeCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curriculum_tree_cache_lookups_total",
			Help: "Course tree cache lookups by result",
		},
		[]string{"result"},
	)

	initOnce sync.Once
)

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(CurriculumMutations)
		prometheus.MustRegister(ReorderSiblings)
		prometheus.MustRegister(TreeCacheLookups)
	})
}

// Outcome 将错误归类为指标标签
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, util.ErrValidation):
		return "validation"
	case errors.Is(err, util.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, util.ErrNotFound):
		return "not_found"
	case errors.Is(err, util.ErrInvariantViolation):
		return "invariant"
	}
	return "error"
}

func ObserveMutation(operation string, err error) {
	CurriculumMutations.WithLabelValues(operation, Outcome(err)).Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
