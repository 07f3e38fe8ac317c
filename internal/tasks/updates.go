package tasks

import (
	"fmt"

	"github.com/desertthunder/songlist/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
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
	ClearData Phase = iota
	SeedSongs
	ImportSongs
)

func (p Phase) String() string {
	switch p {
	case ClearData:
		return "clear_data"
	case SeedSongs:
		return "seed_songs"
	case ImportSongs:
		return "import_songs"
	default:
		return ""
	}
}

// sendProgress delivers an update without blocking; it is dropped when nobody is listening.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func clearedUpdate(c models.Collection, n int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClearData,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Cleared %d records from %s", n, c.Table()),
	}
}

func seedingUpdate(c models.Collection, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SeedSongs,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Inserting %d songs into %s...", total, c.Table()),
	}
}

func seededUpdate(step, total int, song models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SeedSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, song.Name),
		Data:    song,
	}
}

func importedUpdate(step, total int, song *models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, song.Name),
		Data:    song,
	}
}

func importFailedUpdate(step, total int, failure ImportFailure) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, failure.Name, failure.Error),
	}
}
