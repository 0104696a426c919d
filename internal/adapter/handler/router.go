package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rl1809/shareit/internal/metrics"
)

type RouterConfig struct {
	Logger            *zap.Logger
	Metrics           *metrics.Metrics
	Gatherer          prometheus.Gatherer
	MaxRequestsPerMin int
}

// NewRouter builds the gin engine with middleware, booking routes, /health
// and /metrics.
func NewRouter(h *HTTPHandler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery(cfg.Logger))
	r.Use(RequestLogger(cfg.Logger, cfg.Metrics))
	r.Use(CORS())
	if cfg.MaxRequestsPerMin > 0 {
		r.Use(RateLimit(cfg.MaxRequestsPerMin, cfg.Logger))
	}

	r.GET("/health", h.HealthCheck)
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	h.Register(r)

	return r
}
