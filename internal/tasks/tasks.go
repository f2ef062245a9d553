// package tasks implements the batch import loop.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidshelf/internal/library"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

// Importer copies one file into the library and registers it.
type Importer interface {
	Import(ctx context.Context, src string) (*models.VideoRecord, error)
	Extensions() []string
}

// ImportFailure records why one file in a batch was not imported.
type ImportFailure struct {
	Path string
	Err  error
}

// ImportResult contains all data from one run of the import loop.
type ImportResult struct {
	BatchID  string                // Identifier for this run
	Total    int                   // Files considered after discovery
	Imported int                   // Files copied and registered
	Failed   int                   // Files that failed
	Records  []*models.VideoRecord // New records in import order
	Failures []ImportFailure       // Failures in encounter order
	Duration time.Duration         // Wall time of the run
}

// ImportOpts controls discovery for a run.
type ImportOpts struct {
	Recursive bool // Walk subdirectories of directory arguments
}

// ImportEngine runs batches of imports sequentially.
type ImportEngine struct {
	importer Importer
	batches  models.BatchStore
	logger   *log.Logger
	now      func() time.Time
}

// NewImportEngine creates a new ImportEngine. batches may be nil.
func NewImportEngine(importer Importer, batches models.BatchStore, logger *log.Logger) *ImportEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ImportEngine{
		importer: importer,
		batches:  batches,
		logger:   shared.WithLogger(logger, "component", "import"),
		now:      time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ImportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run imports every file named by paths, one at a time.
//
// A failing file is recorded in [ImportResult.Failures] and the loop moves on.
// If ctx is cancelled the remaining files are reported as failed and the partial result is returned with [shared.ErrCancelled].
func (e *ImportEngine) Run(ctx context.Context, paths []string, opts ImportOpts, progress chan<- ProgressUpdate) (*ImportResult, error) {
	if e.importer == nil {
		return nil, fmt.Errorf("%w: importer not initialized", shared.ErrInvalidConfig)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files to import", shared.ErrMissingArgument)
	}

	started := e.now()
	result := &ImportResult{BatchID: shared.GenerateID()}
	logger := shared.WithLogger(e.logger, "batch", result.BatchID)

	e.sendProgress(progress, discoverUpdate(len(paths)))

	files, err := library.Discover(paths, e.importer.Extensions(), opts.Recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	total := len(files)
	result.Total = total
	e.sendProgress(progress, discoveredUpdate(total))

	var runErr error
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			for _, rest := range files[i:] {
				result.Failures = append(result.Failures, ImportFailure{Path: rest, Err: err})
			}
			runErr = fmt.Errorf("%w: %d of %d files not imported: %w", shared.ErrCancelled, total-i, total, err)
			break
		}

		e.sendProgress(progress, importingUpdate(i+1, total, path))

		record, err := e.importer.Import(ctx, path)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				for _, rest := range files[i:] {
					result.Failures = append(result.Failures, ImportFailure{Path: rest, Err: err})
				}
				runErr = fmt.Errorf("%w: %d of %d files not imported: %w", shared.ErrCancelled, total-i, total, err)
				break
			}

			logger.Warn("import failed", "path", path, "err", err)
			result.Failures = append(result.Failures, ImportFailure{Path: path, Err: err})
			e.sendProgress(progress, importFailedUpdate(i+1, total, path, err))
			continue
		}

		result.Records = append(result.Records, record)
		e.sendProgress(progress, importedUpdate(i+1, total, record))
	}

	result.Imported = len(result.Records)
	result.Failed = len(result.Failures)
	finished := e.now()
	result.Duration = finished.Sub(started)

	e.record(logger, result, started, finished)
	e.sendProgress(progress, completeUpdate(result))

	logger.Info("import finished", "imported", result.Imported, "failed", result.Failed, "total", result.Total)
	return result, runErr
}

func (e *ImportEngine) record(logger *log.Logger, result *ImportResult, started, finished time.Time) {
	if e.batches == nil {
		return
	}

	batch := &models.ImportBatch{
		ID:         result.BatchID,
		Total:      result.Total,
		Imported:   result.Imported,
		Failed:     result.Failed,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if err := e.batches.Record(batch); err != nil {
		logger.Warn("failed to record import batch", "err", err)
	}
}
