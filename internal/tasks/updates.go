package tasks

import (
	"fmt"

	"github.com/desertthunder/spotwidget/internal/models"
)

// ProgressUpdate represents a progress event during an install operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	ResetSchemas Phase = iota
	FetchPlaylists
	FetchArtists
	BuildSchemas
	ApplySchemas
)

func (p Phase) String() string {
	switch p {
	case ResetSchemas:
		return "reset_schemas"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchArtists:
		return "fetch_artists"
	case BuildSchemas:
		return "build_schemas"
	case ApplySchemas:
		return "apply_schemas"
	default:
		return ""
	}
}

func fetchPhase(k models.Kind) Phase {
	if k == models.KindArtist {
		return FetchArtists
	}
	return FetchPlaylists
}

func resetUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResetSchemas,
		Step:    1,
		Total:   1,
		Message: "Resetting choices to custom...",
	}
}

func fetchingUpdate(k models.Kind) ProgressUpdate {
	return ProgressUpdate{
		Phase:   fetchPhase(k),
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching %ss from Spotify...", k),
	}
}

func fetchedUpdate(k models.Kind, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   fetchPhase(k),
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d %ss", count, k),
		Data:    count,
	}
}

func buildUpdate(step, total int, k models.Kind, cs models.ChoiceSchema) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildSchemas,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Built %s choices (%d entries)", k, cs.Len()),
		Data:    cs,
	}
}

func applyUpdate(k models.Kind, key string) ProgressUpdate {
	msg := fmt.Sprintf("Leaving %s widget choices unchanged", k)
	if key != "" {
		msg = fmt.Sprintf("Defaulting %s widgets to %s", k, key)
	}
	return ProgressUpdate{
		Phase:   ApplySchemas,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    key,
	}
}
