package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/desertthunder/vidshelf/internal/formatter"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
	"github.com/desertthunder/vidshelf/internal/tasks"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// importSummary is the JSON form of [tasks.ImportResult].
type importSummary struct {
	BatchID   string                `json:"batchId"`
	Total     int                   `json:"total"`
	Imported  int                   `json:"imported"`
	Failed    int                   `json:"failed"`
	Cancelled bool                  `json:"cancelled"`
	Duration  string                `json:"duration"`
	Records   []*models.VideoRecord `json:"records"`
	Failures  []failureSummary      `json:"failures"`
}

type failureSummary struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func newImportSummary(result *tasks.ImportResult, err error) importSummary {
	summary := importSummary{
		BatchID:   result.BatchID,
		Total:     result.Total,
		Imported:  result.Imported,
		Failed:    result.Failed,
		Cancelled: errors.Is(err, shared.ErrCancelled),
		Duration:  result.Duration.Round(time.Millisecond).String(),
		Records:   []*models.VideoRecord{},
		Failures:  []failureSummary{},
	}
	summary.Records = append(summary.Records, result.Records...)
	for _, f := range result.Failures {
		summary.Failures = append(summary.Failures, failureSummary{Path: f.Path, Error: f.Err.Error()})
	}
	return summary
}

// Import copies the given files and directories into the library one at a time.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one file or directory is required", shared.ErrMissingArgument)
	}

	if err := r.open(); err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	opts := tasks.ImportOpts{Recursive: cmd.Bool("recursive")}

	r.logger.Info("starting import", "paths", len(paths), "recursive", opts.Recursive)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.renderProgress(progressCh, asJSON)
	}()

	result, err := r.engine.Run(ctx, paths, opts, progressCh)
	close(progressCh)
	<-done

	if result == nil {
		return err
	}

	if asJSON {
		if werr := r.writeJSON(newImportSummary(result, err), cmd.Bool("pretty")); werr != nil {
			return werr
		}
		return err
	}

	if errors.Is(err, shared.ErrCancelled) {
		r.writePlainHeader("Import Cancelled")
	} else {
		r.writePlainHeader("Import Complete!")
	}
	r.writePlain("Imported: %d/%d\n", result.Imported, result.Total)
	r.writePlain("Failed: %d\n", result.Failed)
	r.writePlain("Duration: %s\n", result.Duration.Round(time.Millisecond))

	if len(result.Records) > 0 {
		r.writePlain("\nNew videos:\n")
		for _, record := range result.Records {
			r.writePlain("  ✓ %s (%s) %s\n", record.Name(), formatter.FormatSize(record.Size()), record.ID())
		}
	}

	if len(result.Failures) > 0 {
		r.writePlain("\nFailed to import %d files:\n", len(result.Failures))
		for _, f := range result.Failures {
			r.writePlain("  ✗ %s: %v\n", f.Path, f.Err)
		}
	}

	return err
}

// renderProgress draws a progress bar from the engine's updates until the channel is closed.
func (r *Runner) renderProgress(updates <-chan tasks.ProgressUpdate, quiet bool) {
	var bar *progressbar.ProgressBar

	for update := range updates {
		if quiet {
			continue
		}

		switch update.Phase {
		case tasks.Discover:
			if update.Step == update.Total {
				r.writePlain("%s\n", update.Message)
			}
		case tasks.Import:
			if bar == nil {
				bar = newImportBar(r.output, update.Total)
			}
			if path, ok := update.Data.(string); ok {
				bar.Describe(filepath.Base(path))
			}
			if update.Err != nil {
				_ = bar.Clear()
				r.writePlain("%s\n", update.Message)
			}
			_ = bar.Set(update.Step)
		case tasks.Complete:
			if bar != nil {
				_ = bar.Finish()
				r.writePlain("\n")
			}
		}
	}
}

func newImportBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Importing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionThrottle(65*time.Millisecond),
	)
}

// History lists the most recent import batches.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	if r.batches == nil {
		return fmt.Errorf("%w: import history is not available", shared.ErrStore)
	}

	batches, err := r.batches.Recent(cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to load import history: %w", err)
	}

	if cmd.Bool("json") {
		if batches == nil {
			batches = []*models.ImportBatch{}
		}
		return r.writeJSON(batches, true)
	}

	return r.writePlain("%s\n", formatter.ExportBatches(batches))
}
