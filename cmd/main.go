package main

import (
	"context"
	"os"

	"github.com/desertthunder/spotwidget/internal/shared"
	"github.com/urfave/cli/v3"
)

// configPath returns the config file location, overridable with SPOTWIDGET_CONFIG.
func configPath() string {
	if p := os.Getenv("SPOTWIDGET_CONFIG"); p != "" {
		return p
	}
	return "config.toml"
}

func main() {
	logger := shared.NewLogger(nil)

	config, err := shared.Load(configPath())
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if err := shared.ConfigureLogger(logger, config.Log); err != nil {
		logger.Fatalf("failed to configure logger: %v", err)
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "spotwidget",
		Usage:    "Spotify widget install backend for dashboard hosts",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
