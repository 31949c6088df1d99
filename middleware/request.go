package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/cache"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/metrics"
	"github.com/terragrow/storefront/responses"
)

const RequestIDHeader = "X-Request-Id"

// RequestID reuses the caller's request id or mints one, echoes it back and
// attaches it to the request logger.
func RequestID(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)
		if log != nil {
			c.Request = c.Request.WithContext(log.WithRequestID(c.Request.Context(), reqID))
		}
		c.Next()
	}
}

func Logging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if log == nil {
			c.Next()
			return
		}
		start := time.Now()
		ctx := log.WithFields(c.Request.Context(), map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		// Auth may have added the user to the request context.
		ctx = log.WithFields(c.Request.Context(), map[string]any{
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		log.Info(ctx, "request.complete")
	}
}

func Recoverer(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err := fmt.Errorf("panic: %v", rec)
				if log != nil {
					log.Error(log.WithField(c.Request.Context(), "panic", rec), "panic.recovered", err)
				}
				responses.Error(c, nil, apperrors.Wrap(apperrors.CodeInternal, err, "panic"))
			}
		}()
		c.Next()
	}
}

// Metrics records one observation per request, labelled by route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// RateLimit caps requests per client IP in fixed windows. Limiter failures
// let the request through.
func RateLimit(name string, limiter cache.RateLimiter, limit int64, window time.Duration, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 || window <= 0 {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		allowed, err := limiter.Allow(ctx, name+":ip:"+c.ClientIP(), limit, window)
		if err != nil {
			if log != nil {
				log.Error(ctx, "rate_limit.unavailable", err)
			}
			c.Next()
			return
		}
		if !allowed {
			if log != nil {
				log.Warn(log.WithFields(ctx, map[string]any{"policy": name, "ip": c.ClientIP()}), "rate_limit.blocked")
			}
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			responses.Error(c, log, apperrors.New(apperrors.CodeRateLimit, "too many requests, try again later"))
			return
		}
		c.Next()
	}
}

// NoRoute answers unknown paths with the standard error body.
func NoRoute(c *gin.Context) {
	responses.Error(c, nil, apperrors.New(apperrors.CodeNotFound, http.StatusText(http.StatusNotFound)))
}
