// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the long-lived HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the widget endpoints over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
			&cli.StringFlag{
				Name:  "mount",
				Usage: "Mount root, e.g. /spotify (overrides server.mount)",
			},
			&cli.StringFlag{
				Name:  "fallback-url",
				Usage: "Forward unmatched requests to this URL (overrides server.fallback_url)",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Expose Prometheus metrics on /metrics (overrides server.metrics)",
			},
		},
		Action: r.Serve,
	}
}

// handleCommand handles a single request event, as a one-shot runtime would
func handleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "handle",
		Usage: "Handle one request event read from a file or stdin and print the response",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "event",
				Aliases: []string{"e"},
				Usage:   "Path to event JSON ({method, url, headers, body}); - reads stdin",
				Value:   "-",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Handle,
	}
}

// previewCommand fetches and renders the choices an install would get
func previewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Preview the playlist and artist choices for an access token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "token",
				Aliases:  []string{"t"},
				Usage:    "Spotify access token",
				Sources:  cli.EnvVars("SPOTWIDGET_TOKEN"),
				Required: true,
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Token type",
				Value: "Bearer",
			},
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "Choices to show: playlist, artist or all",
				Value:   "all",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, markdown or json",
				Value:   "text",
			},
		},
		Action: r.Preview,
	}
}

// statusCommand probes a running server
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Check the health of a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Server URL including the mount (defaults to the local server from config)",
			},
		},
		Action: r.Status,
	}
}

// installCommand posts an install request to a running server
func installCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Send an install request body to a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Server URL including the mount (defaults to the local server from config)",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the request JSON; - reads stdin",
				Value:   "-",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the raw result JSON",
			},
		},
		Action: r.Install,
	}
}

// setupCommand writes configuration files
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize local files",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write the default config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}
