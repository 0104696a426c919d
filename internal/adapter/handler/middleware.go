package handler

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rl1809/shareit/internal/clock"
	"github.com/rl1809/shareit/internal/metrics"
)

const (
	requestIDKey    = "request_id"
	RequestIDHeader = "X-Request-Id"
)

// RequestID tags each request with an id, reusing the caller's if present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs every request and records its latency.
func RequestLogger(logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(status), latency.Seconds())

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

// Recovery answers a panicking request with 500.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.Error("panic recovered",
			zap.Any("panic", rec),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: http.StatusText(http.StatusInternalServerError),
		})
	})
}

// CORS allows any origin to call the API with the sharer header.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", UserIDHeader, RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	})
}

// limiterIdleTTL is how long a client's limiter survives without requests.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	perMin    int
	idleTTL   time.Duration
	clock     clock.Clock
	lastSweep time.Time
}

func newRateLimiterStore(perMin int, idleTTL time.Duration, c clock.Clock) *rateLimiterStore {
	return &rateLimiterStore{
		limiters:  make(map[string]*clientLimiter),
		perMin:    perMin,
		idleTTL:   idleTTL,
		clock:     c,
		lastSweep: c.Now(),
	}
}

func (s *rateLimiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if now.Sub(s.lastSweep) >= s.idleTTL {
		s.sweep(now)
	}

	entry, ok := s.limiters[ip]
	if !ok {
		entry = &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin),
		}
		s.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweep drops limiters idle for at least idleTTL. Caller holds mu.
func (s *rateLimiterStore) sweep(now time.Time) {
	for ip, entry := range s.limiters {
		if now.Sub(entry.lastSeen) >= s.idleTTL {
			delete(s.limiters, ip)
		}
	}
	s.lastSweep = now
}

func (s *rateLimiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// RateLimit allows perMin requests per minute from each client IP.
func RateLimit(perMin int, logger *zap.Logger) gin.HandlerFunc {
	store := newRateLimiterStore(perMin, limiterIdleTTL, clock.Real())

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !store.get(ip).Allow() {
			logger.Warn("rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   http.StatusText(http.StatusTooManyRequests),
				Message: "rate limit exceeded, try again later",
			})
			return
		}
		c.Next()
	}
}
