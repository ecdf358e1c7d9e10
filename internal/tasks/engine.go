package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotwidget/internal/models"
	"github.com/desertthunder/spotwidget/internal/services"
	"github.com/desertthunder/spotwidget/internal/shared"
	"github.com/sourcegraph/conc/pool"
)

// Engine defines the install hook operations.
type Engine interface {
	// Configure applies a login or logout to a copy of the request's install document.
	Configure(ctx context.Context, req *models.InstallRequest, progress chan<- ProgressUpdate) models.Result

	// Schemas fetches and builds both choice schemas for token.
	Schemas(ctx context.Context, token models.Token, progress chan<- ProgressUpdate) (map[models.Kind]models.ChoiceSchema, error)
}

// InstallEngine implements [Engine] against a Spotify client.
type InstallEngine struct {
	spotify services.SpotifyClient
	logger  *log.Logger
	limit   int
}

var _ Engine = (*InstallEngine)(nil)

// NewInstallEngine creates an engine. A nil logger discards output.
func NewInstallEngine(spotify services.SpotifyClient, logger *log.Logger) *InstallEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &InstallEngine{spotify: spotify, logger: logger, limit: services.MaxPageSize}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *InstallEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Configure handles POST / for the dashboard host.
func (e *InstallEngine) Configure(ctx context.Context, req *models.InstallRequest, progress chan<- ProgressUpdate) models.Result {
	if req == nil || req.Install == nil {
		return models.Failure(models.ErrorTypeInvalidRequest, "install document is required")
	}

	doc, err := req.Install.Clone()
	if err != nil {
		e.logger.Error("failed to clone install document", "error", err)
		return models.Failure(models.ErrorTypeInternal, err.Error())
	}

	if !req.LoggingIn() {
		e.Reset(doc, progress)
		e.logger.Debug("reset install document")
		return models.Success(doc)
	}

	token, err := req.Token()
	if err != nil {
		e.logger.Warn("install without usable token", "error", err)
		return models.Failure(models.ErrorTypeMissingCredentials, err.Error())
	}

	doc.AppendLink(models.SpotifyLink)

	schemas, err := e.Schemas(ctx, token, progress)
	if err != nil {
		e.logger.Error("failed to populate install document", "error", err)
		return models.Failure(models.ErrorTypeUpstream, services.ErrorMessage(err))
	}

	for _, k := range models.Kinds {
		cs := schemas[k]
		doc.SetChoiceSchema(k, cs)

		key, ok := cs.Default()
		if ok {
			doc.SetWidgetChoice(k, key)
		}
		e.sendProgress(progress, applyUpdate(k, key))
	}

	e.logger.Info("populated install document",
		"playlists", schemas[models.KindPlaylist].Len()-1,
		"artists", schemas[models.KindArtist].Len()-1,
	)
	return models.Success(doc)
}

// Reset restores both choice schemas to their defaults and points every widget at "custom".
//
// Reset is idempotent.
func (e *InstallEngine) Reset(doc *models.InstallDocument, progress chan<- ProgressUpdate) {
	e.sendProgress(progress, resetUpdate())
	for _, k := range models.Kinds {
		doc.SetChoiceSchema(k, models.DefaultChoiceSchema(k))
		doc.SetWidgetChoice(k, models.CustomChoice)
	}
}

// Schemas runs the playlist and followed-artist fetches concurrently and joins them.
//
// Both fetches run to completion; the first error observed is returned.
func (e *InstallEngine) Schemas(ctx context.Context, token models.Token, progress chan<- ProgressUpdate) (map[models.Kind]models.ChoiceSchema, error) {
	if e.spotify == nil {
		return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	auth := services.BearerToken(token)
	var playlists, artists []models.Item

	p := pool.New().WithErrors().WithFirstError().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		e.sendProgress(progress, fetchingUpdate(models.KindPlaylist))
		page, err := e.spotify.UserPlaylists(ctx, auth, e.limit)
		if err != nil {
			return fmt.Errorf("failed to fetch playlists: %w", err)
		}
		playlists = page.ChoiceItems()
		e.sendProgress(progress, fetchedUpdate(models.KindPlaylist, len(playlists)))
		return nil
	})
	p.Go(func(ctx context.Context) error {
		e.sendProgress(progress, fetchingUpdate(models.KindArtist))
		page, err := e.spotify.FollowedArtists(ctx, auth, e.limit)
		if err != nil {
			return fmt.Errorf("failed to fetch followed artists: %w", err)
		}
		artists = page.ChoiceItems()
		e.sendProgress(progress, fetchedUpdate(models.KindArtist, len(artists)))
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	schemas := map[models.Kind]models.ChoiceSchema{
		models.KindPlaylist: models.BuildChoiceSchema(models.KindPlaylist, playlists),
		models.KindArtist:   models.BuildChoiceSchema(models.KindArtist, artists),
	}
	for i, k := range models.Kinds {
		e.sendProgress(progress, buildUpdate(i+1, len(models.Kinds), k, schemas[k]))
	}
	return schemas, nil
}
