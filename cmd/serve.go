package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/spotwidget/internal/metrics"
	"github.com/desertthunder/spotwidget/internal/server"
	"github.com/desertthunder/spotwidget/internal/shared"
	"github.com/urfave/cli/v3"
)

// serverConfig applies serve flags over the loaded server config.
func (r *Runner) serverConfig(cmd *cli.Command) (shared.ServerConfig, error) {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("mount") {
		cfg.Mount = cmd.String("mount")
	}
	if cmd.IsSet("fallback-url") {
		cfg.FallbackURL = cmd.String("fallback-url")
	}
	if cmd.IsSet("metrics") {
		cfg.Metrics = cmd.Bool("metrics")
	}

	check := *r.config
	check.Server = cfg
	if err := check.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return cfg, nil
}

// Serve starts the HTTP server and blocks until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.serverConfig(cmd)
	if err != nil {
		return err
	}

	var prom *metrics.Prom
	if cfg.Metrics {
		prom = r.metrics
	}

	srv, err := server.NewServer(server.ServerOpts{
		Config:  cfg,
		Router:  r.router(cfg.Mount),
		Logger:  shared.WithLogger(r.logger, "component", "server"),
		Metrics: prom,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
