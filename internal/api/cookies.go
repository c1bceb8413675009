// Cookie analysis API for the browser extension. All analysis is stateless:
// the extension ships its cookie jar in the request and nothing is persisted
// server side.
package api

import (
	"errors"
	"net/http"

	"github.com/CodeMonkeyCybersecurity/crumbs/internal/logger"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/analyzer"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/cookie"
	"github.com/gin-gonic/gin"
)

// AnalyzeRequest is the batch analysis payload. Cookies arrive as raw
// collector records; key aliases and sloppy flag encodings are normalized
// before analysis.
type AnalyzeRequest struct {
	Cookies  []map[string]interface{} `json:"cookies"`
	Context  *cookie.Context          `json:"context,omitempty"`
	SiteHost string                   `json:"site_host,omitempty"`
}

// ReportRequest asks for a plain-text rendering of an earlier batch result.
type ReportRequest struct {
	Batch analyzer.BatchReport `json:"batch"`
}

// RegisterCookieRoutes adds the analysis endpoints to the API group.
func RegisterCookieRoutes(r *gin.RouterGroup, a *analyzer.Analyzer, log *logger.Logger) {
	cookies := r.Group("/cookies")
	{
		cookies.POST("/analyze", func(c *gin.Context) {
			handleAnalyze(c, a, log)
		})
		cookies.GET("/demo", handleDemo)
		cookies.POST("/report", handleReport)
	}
}

func handleAnalyze(c *gin.Context, a *analyzer.Analyzer, log *logger.Logger) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	records := make([]cookie.Cookie, 0, len(req.Cookies))
	for _, raw := range req.Cookies {
		records = append(records, cookie.FromMap(raw))
	}

	batch, err := a.ForHost(req.SiteHost).AnalyzeBatch(c.Request.Context(), records, req.Context)
	if err != nil {
		if errors.Is(err, analyzer.ErrEmptyBatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No cookies provided"})
			return
		}
		log.LogError(c.Request.Context(), err, "analyze_batch", "cookies", len(records))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
		return
	}

	c.JSON(http.StatusOK, batch)
}

func handleDemo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cookies": analyzer.DemoCookies()})
}

func handleReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": analyzer.RenderText(&req.Batch)})
}
