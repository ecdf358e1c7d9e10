package main

import (
	"context"
	"fmt"
	"io"

	"github.com/desertthunder/spotwidget/internal/formatter"
	"github.com/desertthunder/spotwidget/internal/services"
	"github.com/desertthunder/spotwidget/internal/shared"
	"github.com/urfave/cli/v3"
)

// apiFor returns the probe client for --url, or the runner's default.
func (r *Runner) apiFor(cmd *cli.Command) *services.APIService {
	if u := cmd.String("url"); u != "" {
		return services.NewAPIService(u, r.httpClient)
	}
	return r.api
}

// Status checks GET /healthcheck on a running server.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	if err := r.apiFor(cmd).Healthcheck(ctx); err != nil {
		return err
	}
	return r.writePlain("%s\n", formatter.OK("healthy"))
}

// Install posts an install request to a running server and reports the result.
func (r *Runner) Install(ctx context.Context, cmd *cli.Command) error {
	in, err := r.openInput(cmd.String("data"))
	if err != nil {
		return err
	}
	defer in.Close()

	body, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("%w: failed to read request: %v", shared.ErrInvalidInput, err)
	}

	result, err := r.apiFor(cmd).Install(ctx, body)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	if err := formatter.RenderResult(r.output, *result); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !result.Proceed {
		return fmt.Errorf("%w: install rejected", shared.ErrAPIRequest)
	}
	return nil
}
