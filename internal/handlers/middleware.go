package handlers

import (
	"net/http"
	"strings"
	"time"

	"portfolio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const identityKey = "identity"

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// identityMiddleware rejects requests without a valid bearer token.
func (h *Handler) identityMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	token, ok := bearerToken(header)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	id, err := h.services.Authenticate(c.Request.Context(), token)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.respondError(c, "auth_lookup_failed", err)
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	// store in Gin context
	c.Set(identityKey, id)
	c.Next()
}

// optionalIdentity resolves a bearer token when present and valid; anonymous otherwise.
func (h *Handler) optionalIdentity(c *gin.Context) {
	if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
		if id, err := h.services.Authenticate(c.Request.Context(), token); err == nil {
			c.Set(identityKey, id)
		}
	}
	c.Next()
}

// requireIdentity is used after optionalIdentity on routes that need a caller.
func (h *Handler) requireIdentity(c *gin.Context) {
	if !identityFrom(c).Authenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.Next()
}

func (h *Handler) adminOnly(c *gin.Context) {
	if !identityFrom(c).IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}
	c.Next()
}

func identityFrom(c *gin.Context) service.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return service.Identity{}
	}
	id, _ := v.(service.Identity)
	return id
}

// publicRateLimit limits anonymous write endpoints per client IP.
func (h *Handler) publicRateLimit() gin.HandlerFunc {
	if h.opts.PublicRate == "" {
		return func(c *gin.Context) { c.Next() }
	}
	rate, err := limiter.NewRateFromFormatted(h.opts.PublicRate)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("rate_limit_config_invalid", "rate", h.opts.PublicRate, "err", err)
		}
		return func(c *gin.Context) { c.Next() }
	}
	return mgin.NewMiddleware(
		limiter.New(memory.NewStore(), rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		}),
	)
}

// requestLogger writes one structured line per request.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if h.log == nil {
			return
		}
		h.log.Infow("http_request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
