package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CodeMonkeyCybersecurity/crumbs/internal/config"
	"github.com/CodeMonkeyCybersecurity/crumbs/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(config.LoggerConfig{Level: "error", Format: "json"})
	require.NoError(t, err)
	return log
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func TestExtensionCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name          string
		origin        string
		expectAllowed bool
	}{
		{"chrome extension", "chrome-extension://abcdef", true},
		{"firefox extension", "moz-extension://abcdef", true},
		{"localhost dev server", "http://localhost:3000", true},
		{"arbitrary website", "https://evil.com", false},
		{"no origin", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ExtensionCORS())
			router.GET("/x", okHandler)

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			allowed := w.Header().Get("Access-Control-Allow-Origin")
			if tt.expectAllowed {
				assert.Equal(t, tt.origin, allowed)
			} else {
				assert.Empty(t, allowed)
			}
		})
	}
}

func TestExtensionCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ExtensionCORS())
	router.POST("/x", okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "chrome-extension://abcdef")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBearerAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(BearerAuth("secret-key", testLogger(t)))
	router.GET("/x", okHandler)
	router.GET("/health", okHandler)

	tests := []struct {
		name         string
		path         string
		header       string
		expectedCode int
	}{
		{"valid token", "/x", "Bearer secret-key", http.StatusOK},
		{"missing header", "/x", "", http.StatusUnauthorized},
		{"wrong scheme", "/x", "Basic secret-key", http.StatusUnauthorized},
		{"wrong token", "/x", "Bearer nope", http.StatusUnauthorized},
		{"health bypasses auth", "/health", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimit(config.RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2}))
	router.GET("/x", okHandler)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	// Burst of 2 passes, the rest are throttled.
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[3])
}
