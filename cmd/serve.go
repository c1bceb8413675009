package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CodeMonkeyCybersecurity/crumbs/internal/api"
	"github.com/CodeMonkeyCybersecurity/crumbs/pkg/analyzer"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the crumbs HTTP API server",
	Long: `Start the HTTP API server for the browser extension.

Endpoints:
  GET  /health                      - Health check (no auth)
  POST /api/v1/cookies/analyze      - Analyze a batch of cookies
  GET  /api/v1/cookies/demo         - Example cookies for testing
  POST /api/v1/cookies/report       - Render a plain-text report

Example:
  crumbs serve --port 8080
  crumbs serve --tls-cert cert.pem --tls-key key.pem
`,
	RunE: runServe,
}

var (
	serverPort int
	serverHost string
	enableCORS bool
	tlsCert    string
	tlsKey     string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serverHost, "host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().BoolVar(&enableCORS, "cors", true, "Enable CORS for browser extensions")
	serveCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to TLS certificate (optional)")
	serveCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to TLS private key (optional)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if tlsCert != "" || tlsKey != "" {
		if tlsCert == "" || tlsKey == "" {
			return fmt.Errorf("both --tls-cert and --tls-key must be provided for TLS")
		}
		if _, err := os.Stat(tlsCert); err != nil {
			return fmt.Errorf("TLS cert file not found or not readable: %w", err)
		}
		if _, err := os.Stat(tlsKey); err != nil {
			return fmt.Errorf("TLS key file not found or not readable: %w", err)
		}
	}

	serverLog := log.WithComponent("api-server")

	apiKey := cfg.Security.APIKey
	if cfg.Security.EnableAuth && apiKey == "" {
		return fmt.Errorf("API key not configured: set CRUMBS_API_KEY or security.api_key in config file")
	}

	serverLog.Infow("Starting crumbs API server",
		"host", serverHost,
		"port", serverPort,
		"cors_enabled", enableCORS,
		"auth_enabled", cfg.Security.EnableAuth,
		"tls_enabled", tlsCert != "",
	)

	a := analyzer.New(
		analyzer.WithWorkers(cfg.Analyzer.Workers),
		analyzer.WithSiteHost(cfg.Analyzer.SiteHost),
		analyzer.WithLogger(serverLog),
	)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestLogging(serverLog))
	if enableCORS {
		router.Use(api.ExtensionCORS())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"healthy":   true,
			"timestamp": time.Now().Unix(),
			"version":   "0.1.0",
		})
	})

	v1 := router.Group("/api/v1")
	{
		if cfg.Security.EnableAuth {
			v1.Use(api.BearerAuth(apiKey, serverLog))
		}
		v1.Use(api.RateLimit(cfg.Security.RateLimit))

		api.RegisterCookieRoutes(v1, a, serverLog)
	}

	addr := fmt.Sprintf("%s:%d", serverHost, serverPort)
	server := &http.Server{
		Addr:           addr,
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverLog.Infow("HTTP server listening",
			"address", addr,
			"tls", tlsCert != "",
		)

		if tlsCert != "" && tlsKey != "" {
			serverErrors <- server.ListenAndServeTLS(tlsCert, tlsKey)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		serverLog.Infow("Received shutdown signal",
			"signal", sig.String(),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			serverLog.Errorw("Failed to shutdown gracefully", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		serverLog.Infow("Server shutdown complete")
	}

	return nil
}
