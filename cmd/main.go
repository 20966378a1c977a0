package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/downbeats/internal/services"
	"github.com/desertthunder/downbeats/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		logger.Fatalf("invalid environment: %v", err)
	}
	if err := config.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	if level, err := shared.ParseLogLevel(config.Logging.Level); err != nil {
		logger.Warn("invalid log level, using info", "error", err)
	} else {
		shared.SetLogLevel(logger, level)
	}

	httpClient := &http.Client{Timeout: time.Duration(config.API.Timeout) * time.Second}
	apiService := services.NewAPIService(config.API.APIBaseURL, httpClient)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Service:    services.NewDownbeatsService(apiService, config.API.BaseURL),
		API:        apiService,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrAborted) {
			logger.Warn("aborted")
			return
		}
		logger.Fatalf("application error: %v", err)
	}
}

// newApp builds the root command.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "downbeats",
		Usage:    "Browse and manage Dungeons & Downbeats soundtracks",
		Version:  "0.1.0",
		Writer:   r.output,
		Commands: r.register(),
	}
}
