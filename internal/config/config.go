package config

import (
	"time"
)

type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	Server   ServerConfig   `mapstructure:"server"`
	Security SecurityConfig `mapstructure:"security"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
}

type LoggerConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"`
	OutputPaths []string `mapstructure:"output_paths"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	EnableCORS   bool          `mapstructure:"enable_cors"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type SecurityConfig struct {
	APIKey     string          `mapstructure:"api_key"`
	EnableAuth bool            `mapstructure:"enable_auth"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `mapstructure:"requests_per_second"`
	BurstSize         int `mapstructure:"burst_size"`
}

type AnalyzerConfig struct {
	// Workers bounds concurrent per-cookie analysis within a batch.
	Workers int `mapstructure:"workers"`
	// SiteHost is the host being scanned; used to judge Domain-attribute scope.
	SiteHost string `mapstructure:"site_host"`
	// ModelPath points at a trained classifier artifact. Empty means the
	// rule-based fallback classifier is used.
	ModelPath string `mapstructure:"model_path"`
}

func DefaultConfig() *Config {
	return &Config{
		Logger: LoggerConfig{
			Level:       "info",
			Format:      "console",
			OutputPaths: []string{"stdout"},
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			EnableCORS:   true,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Security: SecurityConfig{
			EnableAuth: false,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 10,
				BurstSize:         20,
			},
		},
		Analyzer: AnalyzerConfig{
			Workers: 8,
		},
	}
}
