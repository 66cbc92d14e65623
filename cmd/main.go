package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/hardbound/stacks/internal/services"
	"github.com/hardbound/stacks/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	httpClient := &http.Client{Timeout: time.Duration(config.API.TimeoutSeconds) * time.Second}
	library := services.NewLibraryService(config.API.BaseURL, httpClient, config.API.RateLimit)
	apiService := services.NewAPIService(config.API.BaseURL, httpClient)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Library:    library,
		API:        apiService,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "stacks",
		Usage:    "Terminal client for the library management service",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Error("not signed in; run `stacks auth login` first")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
