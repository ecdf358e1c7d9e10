package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotwidget/internal/formatter"
	"github.com/desertthunder/spotwidget/internal/metrics"
	"github.com/desertthunder/spotwidget/internal/server"
	"github.com/desertthunder/spotwidget/internal/services"
	"github.com/desertthunder/spotwidget/internal/shared"
	"github.com/desertthunder/spotwidget/internal/tasks"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	spotify    services.SpotifyClient
	api        *services.APIService
	engine     tasks.Engine
	metrics    *metrics.Prom
	httpClient *http.Client
	logger     *log.Logger
	input      io.Reader
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Spotify    services.SpotifyClient
	API        *services.APIService
	Engine     tasks.Engine
	Metrics    *metrics.Prom
	HTTPClient *http.Client
	Logger     *log.Logger
	Input      io.Reader
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Spotify.Timeout}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewProm()
	}
	if opts.Spotify == nil {
		opts.Spotify = services.NewSpotifyService(services.SpotifyOpts{
			BaseURL:   opts.Config.Spotify.BaseURL,
			Timeout:   opts.Config.Spotify.Timeout,
			RateLimit: opts.Config.Spotify.RateLimit,
			Observer:  opts.Metrics,
		})
	}
	if opts.Engine == nil {
		opts.Engine = tasks.NewInstallEngine(opts.Spotify, shared.WithLogger(opts.Logger, "component", "engine"))
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(localURL(opts.Config.Server), opts.HTTPClient)
	}

	return &Runner{
		config:     opts.Config,
		spotify:    opts.Spotify,
		api:        opts.API,
		engine:     opts.Engine,
		metrics:    opts.Metrics,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		input:      opts.Input,
		output:     opts.Output,
	}
}

// localURL is the address of a server started from the same config.
func localURL(cfg shared.ServerConfig) string {
	return fmt.Sprintf("http://localhost:%d%s", cfg.Port, cfg.Mount)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, handleCommand, previewCommand, statusCommand, installCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// router builds the widget route table for a deployment mounted at mount.
func (r *Runner) router(mount string) *server.Router {
	h := server.NewHandlers(r.engine, r.spotify, shared.WithLogger(r.logger, "component", "handlers"))
	return server.NewRouter(mount, h.Routes()...)
}

// styled reports whether output is a terminal that can render colors.
func (r *Runner) styled() bool {
	f, ok := r.output.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := formatter.ToJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
