package cmd

import (
	"fmt"
	"os"

	"github.com/CodeMonkeyCybersecurity/crumbs/internal/config"
	"github.com/CodeMonkeyCybersecurity/crumbs/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "crumbs",
	Short: "Browser cookie security analyzer",
	Long: `Crumbs - Browser Cookie Security Analyzer

Classifies browser cookies by purpose, scores their security
misconfigurations, and explains every finding in plain language.

USAGE:
  crumbs analyze cookies.json        # Analyze a cookie export offline
  crumbs analyze --demo              # Analyze the built-in example set
  crumbs serve --port 8080           # Start the browser-extension API

Cookies are analyzed locally. Nothing is uploaded and nothing is stored.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		var err error
		log, err = logger.New(cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			// Sync errors on stdout/stderr are expected on Linux.
			if err := log.Sync(); err != nil {
				if err.Error() != "sync /dev/stdout: invalid argument" && err.Error() != "sync /dev/stderr: invalid argument" {
					fmt.Fprintf(os.Stderr, "Warning: failed to sync logger: %v\n", err)
				}
			}
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .crumbs.yaml)")

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (json, console)")
	viper.BindPFlag("logger.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logger.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindEnv("logger.level", "CRUMBS_LOG_LEVEL")
	viper.BindEnv("logger.format", "CRUMBS_LOG_FORMAT")

	rootCmd.PersistentFlags().Int("workers", 8, "Concurrent cookie analyses per batch")
	rootCmd.PersistentFlags().String("site-host", "", "Host the cookies were collected from")
	viper.BindPFlag("analyzer.workers", rootCmd.PersistentFlags().Lookup("workers"))
	viper.BindPFlag("analyzer.site_host", rootCmd.PersistentFlags().Lookup("site-host"))
	viper.BindEnv("analyzer.workers", "CRUMBS_WORKERS")

	rootCmd.PersistentFlags().Int("rate-limit", 10, "Requests per second rate limit")
	rootCmd.PersistentFlags().Int("rate-burst", 20, "Rate limit burst size")
	viper.BindPFlag("security.rate_limit.requests_per_second", rootCmd.PersistentFlags().Lookup("rate-limit"))
	viper.BindPFlag("security.rate_limit.burst_size", rootCmd.PersistentFlags().Lookup("rate-burst"))
	viper.BindEnv("security.rate_limit.requests_per_second", "CRUMBS_RATE_LIMIT")

	// API key comes from environment or config file, never a flag.
	viper.BindEnv("security.api_key", "CRUMBS_API_KEY")

	viper.SetDefault("logger.output_paths", []string{"stdout"})
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".crumbs")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CRUMBS")

	// A missing config file is fine; flags and env cover everything.
	_ = viper.ReadInConfig()

	cfg = config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "console"
	}
	if cfg.Analyzer.Workers <= 0 {
		cfg.Analyzer.Workers = 8
	}
	if cfg.Security.RateLimit.RequestsPerSecond == 0 {
		cfg.Security.RateLimit.RequestsPerSecond = 10
	}

	return nil
}

func GetConfig() *config.Config {
	return cfg
}

func GetLogger() *logger.Logger {
	return log
}
