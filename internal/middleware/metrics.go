package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command errors by operation name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fluss_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// FameCasts counts vote mutations by outcome (created, flipped, noop).
	FameCasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fluss_fame_casts_total",
		Help: "Total number of fame casts by outcome",
	}, []string{"outcome"})

	// FeedPages counts served feed pages by viewer kind.
	FeedPages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fluss_feed_pages_total",
		Help: "Total number of feed pages served",
	}, []string{"viewer"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
