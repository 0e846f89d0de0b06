package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesCastTotal counts votes recorded through the upvote endpoint.
	VotesCastTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newswire_votes_cast_total",
		Help: "Total number of votes recorded",
	})

	// LoginAttemptsTotal counts login attempts by result.
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newswire_login_attempts_total",
		Help: "Total number of login attempts by result",
	}, []string{"result"})
)

// InitMetrics creates the Prometheus middleware for HTTP request metrics.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler that records HTTP metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
