package tasks

import (
	"fmt"
	"path/filepath"

	"github.com/desertthunder/vidshelf/internal/models"
)

// ProgressUpdate represents a progress event during an import run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
	Err     error  // Set when the step failed
}

// Operation phase enumeration
type Phase int

const (
	Discover Phase = iota
	Import
	Complete
)

func (p Phase) String() string {
	switch p {
	case Discover:
		return "discover"
	case Import:
		return "import"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

// Fraction reports Step/Total in [0, 1].
func (u ProgressUpdate) Fraction() float64 {
	if u.Total <= 0 {
		if u.Phase == Complete {
			return 1
		}
		return 0
	}
	f := float64(u.Step) / float64(u.Total)
	if f > 1 {
		return 1
	}
	return f
}

func discoverUpdate(args int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Discover,
		Step:    0,
		Total:   args,
		Message: "Finding video files...",
	}
}

func discoveredUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Discover,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Found %d files to import", total),
	}
}

func importingUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Import,
		Step:    step - 1,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Importing %s...", step, total, filepath.Base(path)),
		Data:    path,
	}
}

func importedUpdate(step, total int, record *models.VideoRecord) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Import,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, record.Name()),
		Data:    record,
	}
}

func importFailedUpdate(step, total int, path string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Import,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, filepath.Base(path), err),
		Data:    path,
		Err:     err,
	}
}

func completeUpdate(result *ImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    result.Total,
		Total:   result.Total,
		Message: fmt.Sprintf("Imported %d of %d files (%d failed)", result.Imported, result.Total, result.Failed),
		Data:    result,
	}
}
