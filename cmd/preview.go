package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotwidget/internal/formatter"
	"github.com/desertthunder/spotwidget/internal/models"
	"github.com/desertthunder/spotwidget/internal/services"
	"github.com/desertthunder/spotwidget/internal/shared"
	"github.com/desertthunder/spotwidget/internal/tasks"
	"github.com/urfave/cli/v3"
)

func parseKinds(s string) ([]models.Kind, error) {
	switch s {
	case "", "all":
		return models.Kinds, nil
	case string(models.KindPlaylist):
		return []models.Kind{models.KindPlaylist}, nil
	case string(models.KindArtist):
		return []models.Kind{models.KindArtist}, nil
	default:
		return nil, fmt.Errorf("%w: --kind must be playlist, artist or all, got %q", shared.ErrInvalidArgument, s)
	}
}

// Preview fetches both choice lists for a token and renders the requested ones.
func (r *Runner) Preview(ctx context.Context, cmd *cli.Command) error {
	kinds, err := parseKinds(cmd.String("kind"))
	if err != nil {
		return err
	}

	format := cmd.String("format")
	switch format {
	case "text", "markdown", "json":
	default:
		return fmt.Errorf("%w: --format must be text, markdown or json, got %q", shared.ErrInvalidArgument, format)
	}

	token := models.Token{Type: cmd.String("type"), Token: cmd.String("token")}
	if token.Token == "" {
		return fmt.Errorf("%w: --token is required", shared.ErrMissingArgument)
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Debug(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	schemas, err := r.engine.Schemas(ctx, token, progress)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, services.ErrorMessage(err))
	}

	switch format {
	case "json":
		out := make(map[models.Kind]models.ChoiceSchema, len(kinds))
		for _, k := range kinds {
			out[k] = schemas[k]
		}
		return r.writeJSON(out, true)
	case "markdown":
		for _, k := range kinds {
			if err := r.writePlain("%s\n", formatter.SchemaToMarkdown(k, schemas[k])); err != nil {
				return err
			}
		}
	default:
		styled := r.styled()
		for i, k := range kinds {
			if i > 0 {
				if err := r.writePlain("\n"); err != nil {
					return err
				}
			}
			if err := formatter.RenderSchema(r.output, k, schemas[k], styled); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}
