package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/spotwidget/internal/server"
	"github.com/desertthunder/spotwidget/internal/shared"
	"github.com/urfave/cli/v3"
)

// openInput returns the reader for path, where "" and "-" mean the runner's input.
func (r *Runner) openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(r.input), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return f, nil
}

// Handle dispatches one event through the edge binding and prints the response envelope.
func (r *Runner) Handle(ctx context.Context, cmd *cli.Command) error {
	in, err := r.openInput(cmd.String("event"))
	if err != nil {
		return err
	}
	defer in.Close()

	ev, err := server.ReadEvent(in)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	r.logger.Debug("handling event", "method", ev.Method, "url", ev.URL)

	edge := server.NewEdge(r.router(r.config.Server.Mount), shared.WithLogger(r.logger, "component", "edge"))
	resp := edge.Handle(ctx, ev)
	return r.writeJSON(resp.Encode(), cmd.Bool("pretty"))
}
