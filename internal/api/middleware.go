package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/CodeMonkeyCybersecurity/crumbs/internal/config"
	"github.com/CodeMonkeyCybersecurity/crumbs/internal/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RequestLogging logs every request with latency and client IP.
func RequestLogging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Infow("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		)
	}
}

// extensionOrigin reports whether the Origin header belongs to a browser
// extension or a local dev frontend. Anything else gets no CORS headers.
func extensionOrigin(origin string) bool {
	for _, prefix := range []string{
		"chrome-extension://",
		"moz-extension://",
		"http://localhost",
		"http://127.0.0.1",
		"https://localhost",
		"https://127.0.0.1",
	} {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

// ExtensionCORS allows the browser extension popup to call the API directly.
func ExtensionCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if extensionOrigin(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// BearerAuth validates the Authorization header against the configured API
// key. The health check stays open so load balancers can probe it.
func BearerAuth(apiKey string, log *logger.Logger) gin.HandlerFunc {
	if apiKey == "" {
		log.Fatalw("API key cannot be empty",
			"hint", "Set CRUMBS_API_KEY or security.api_key in the config file",
		)
	}

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || authHeader == "" {
			log.Warnw("Missing or malformed Authorization header",
				"path", c.Request.URL.Path,
				"ip", c.ClientIP(),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Expected: Authorization: Bearer <token>",
			})
			return
		}

		if token != apiKey {
			log.Warnw("Invalid API key",
				"path", c.Request.URL.Path,
				"ip", c.ClientIP(),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid API key",
			})
			return
		}

		c.Next()
	}
}

// RateLimit applies a per-IP token bucket. Stale client entries are swept in
// the background so the map cannot grow without bound.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			mu.Lock()
			for ip, cl := range clients {
				if time.Since(cl.lastSeen) > 10*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		cl, ok := clients[ip]
		if !ok {
			cl = &client{
				limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
			}
			clients[ip] = cl
		}
		cl.lastSeen = time.Now()
		mu.Unlock()

		if !cl.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
