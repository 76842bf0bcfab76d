package main

import (
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/hupe1980/hireflow"
	"github.com/hupe1980/hireflow/config"
	"github.com/hupe1980/hireflow/logging"
	"github.com/hupe1980/hireflow/model"
	anthropicmodel "github.com/hupe1980/hireflow/model/anthropic"
	openaimodel "github.com/hupe1980/hireflow/model/openai"
	"github.com/hupe1980/hireflow/store"
	"github.com/hupe1980/hireflow/store/sqlite"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hireflow",
	Short: "LLM-backed hiring assistant",
	Long: `HireFlow turns natural-language hiring requests into executed workflows:
it routes each request to the right capability (job descriptions, resume
screening, interview scheduling, analytics), decomposes multi-step requests
into dependency-aware plans and executes them against your hiring data.

With no arguments, launches an interactive chat session.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/hireflow/config.yaml)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the effective configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

// buildFlow assembles a HireFlow instance from configuration. The returned
// cleanup closes the sqlite store when one was opened.
func buildFlow(cfg *config.Config) (*hireflow.HireFlow, func(), error) {
	var m model.Model
	switch cfg.Provider.Name {
	case "anthropic":
		m = anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Provider.Model != "" {
				o.Model = anthropic.Model(cfg.Provider.Model)
			}
			o.APIKey = cfg.Provider.APIKey
		})
	default:
		m = openaimodel.NewModel(func(o *openaimodel.Options) {
			if cfg.Provider.Model != "" {
				o.Model = cfg.Provider.Model
			}
			o.APIKey = cfg.Provider.APIKey
		})
	}

	if cfg.Provider.RequestsPerSecond > 0 {
		m = model.NewRateLimitedModel(m, cfg.Provider.RequestsPerSecond, 1)
	}

	cleanup := func() {}

	var st store.Store = store.NewInMemoryStore()
	if cfg.Store.Backend == "sqlite" {
		db, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		st = db
		cleanup = func() { _ = db.Close() }
	}

	logger := logging.NewSlogLogger(logLevel(cfg.Logging.Level), cfg.Logging.Format, false)

	flow, err := hireflow.New(m, func(o *hireflow.Options) {
		o.Store = st
		o.RouterThreshold = cfg.Router.ConfidenceThreshold
		o.MaxConcurrency = cfg.Orchestrator.Concurrency
		o.Retry = model.RetryPolicy{
			MaxAttempts:    cfg.Retry.MaxAttempts,
			InitialBackoff: cfg.Retry.BaseBackoff,
			MaxBackoff:     cfg.Retry.MaxBackoff,
		}
		o.Logger = logger
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return flow, cleanup, nil
}

func logLevel(s string) logging.LogLevel {
	switch s {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
