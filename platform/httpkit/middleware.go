// Package httpkit provides HTTP middleware infrastructure.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"handylink_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"
)

const (
	// ContextSubjectKey is the gin context key for the verified external subject id.
	ContextSubjectKey = "subject"

	// DemoSubjectHeader carries a caller-supplied subject in demo auth mode.
	DemoSubjectHeader = "X-Demo-Subject"

	errMissingToken = "missing token"
	errInvalidToken = "invalid token"
)

// SubjectResolver extracts the external identity subject from an inbound
// request. The strategy is selected once at startup (verified-token vs
// demo), never per request.
type SubjectResolver interface {
	Resolve(c *gin.Context) (string, error)
}

// TokenSubjectResolver verifies an HMAC-signed identity-provider token from
// the Authorization header and returns its subject claim.
type TokenSubjectResolver struct {
	secret []byte
}

// NewTokenSubjectResolver creates the verified-token resolution strategy.
func NewTokenSubjectResolver(secret string) *TokenSubjectResolver {
	return &TokenSubjectResolver{secret: []byte(secret)}
}

// Resolve implements SubjectResolver.
func (r *TokenSubjectResolver) Resolve(c *gin.Context) (string, error) {
	rawToken, ok := extractBearerToken(c.GetHeader("Authorization"))
	if !ok {
		// Fallback to query param for SSE connections
		rawToken = c.Query("token")
		if rawToken == "" {
			return "", errors.New(errMissingToken)
		}
	}

	parsed, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return r.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New(errInvalidToken)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New(errInvalidToken)
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", errors.New(errInvalidToken)
	}
	return subject, nil
}

// DemoSubjectResolver accepts a caller-supplied subject header, falling back
// to the verified-token strategy when the header is absent. It must only be
// installed when demo auth is enabled process-wide.
type DemoSubjectResolver struct {
	fallback SubjectResolver
}

// NewDemoSubjectResolver creates the demo resolution strategy.
func NewDemoSubjectResolver(fallback SubjectResolver) *DemoSubjectResolver {
	return &DemoSubjectResolver{fallback: fallback}
}

// Resolve implements SubjectResolver.
func (r *DemoSubjectResolver) Resolve(c *gin.Context) (string, error) {
	if subject := strings.TrimSpace(c.GetHeader(DemoSubjectHeader)); subject != "" {
		return subject, nil
	}
	if r.fallback == nil {
		return "", errors.New(errMissingToken)
	}
	return r.fallback.Resolve(c)
}

// AuthRequired returns middleware that resolves the caller's subject via the
// configured strategy and stores it on the gin context.
func AuthRequired(resolver SubjectResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := resolver.Resolve(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(ContextSubjectKey, subject)
		c.Next()
	}
}

// RequestLogger logs HTTP requests with timing.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()

		log.HTTPRequest(c.Request.Method, path, status, float64(latency.Milliseconds()), clientIP)
	}
}

// SecurityHeaders adds security headers to responses.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		// Only add HSTS when serving TLS
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// IPRateLimiter manages per-IP rate limiters.
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
	log      *logger.Logger
}

// NewIPRateLimiter creates a new IP-based rate limiter.
func NewIPRateLimiter(r rate.Limit, burst int, log *logger.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		rate:  r,
		burst: burst,
		log:   log,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	limiter, exists := i.limiters.Load(ip)
	if !exists {
		newLimiter := rate.NewLimiter(i.rate, i.burst)
		i.limiters.Store(ip, newLimiter)
		return newLimiter
	}
	return limiter.(*rate.Limiter)
}

// RateLimit returns a middleware that rate limits by IP.
func (i *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := i.getLimiter(ip)

		if !limiter.Allow() {
			if i.log != nil {
				i.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}

func extractBearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}

	rawToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if rawToken == "" {
		return "", false
	}

	return rawToken, true
}
