package app

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xuanlung-gov/tthc-assistant/internal/chat"
	"github.com/xuanlung-gov/tthc-assistant/internal/ctxutil"
	domerrors "github.com/xuanlung-gov/tthc-assistant/internal/errors"
	"github.com/xuanlung-gov/tthc-assistant/internal/logger"
	"github.com/xuanlung-gov/tthc-assistant/internal/metrics"
	"github.com/xuanlung-gov/tthc-assistant/internal/ratelimit"
)

// ErrMsgRateLimited is the 429 body text.
const ErrMsgRateLimited = "Too many requests"

// requestIDHeaders are checked in order for an upstream request id.
var requestIDHeaders = []string{"X-Request-Id", "X-Correlation-Id"}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// corsMiddleware lets the chat widget call the API from the office website.
// "*" in origins allows any origin. Preflight requests end here with 204.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowAny := slices.Contains(origins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAny:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, X-Request-Id")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// loggingMiddleware attaches a request id and the client IP to the request
// context and logs every request with a status-based level:
// 5xx=Error, 4xx=Warn (404=Debug), else Debug.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := ""
		for _, h := range requestIDHeaders {
			if requestID = strings.TrimSpace(c.GetHeader(h)); requestID != "" {
				break
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-Id", requestID)

		ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
		ctx = ctxutil.WithClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		entry := log.WithRequestID(requestID).
			WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("client_ip", c.ClientIP())

		switch {
		case status >= 500:
			entry.Error("HTTP request failed")
		case status == http.StatusNotFound:
			entry.Debug("HTTP request not found")
		case status >= 400:
			entry.Warn("HTTP request rejected")
		default:
			entry.Debug("HTTP request completed")
		}
	}
}

// rateLimitMiddleware throttles chat requests per client IP. A nil limiter
// disables it.
func rateLimitMiddleware(limiter *ratelimit.ClientLimiter, m *metrics.Metrics, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		ip := c.ClientIP()
		ok, reason := limiter.Allow(ip)
		if ok {
			c.Next()
			return
		}

		retryAfter := 5 * time.Second
		if reason == ratelimit.ReasonDaily {
			retryAfter = time.Hour
		}
		m.RecordHTTPError("rate_limited", "chat")
		log.WithError(domerrors.ErrRateLimitExceeded).
			WithField("client_ip", ip).WithField("reason", string(reason)).
			WarnContext(c.Request.Context(), "Chat request rate limited")
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, chat.ErrorResponse{Error: ErrMsgRateLimited})
	}
}
