package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/vidshelf/internal/formatter"
	"github.com/desertthunder/vidshelf/internal/library"
	"github.com/urfave/cli/v3"
)

// issueSummary is the JSON form of [library.Issue].
type issueSummary struct {
	Kind   string `json:"kind"`
	ID     string `json:"id,omitempty"`
	Path   string `json:"path"`
	Detail string `json:"detail"`
}

// List prints every stored video in the requested format.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	records, err := r.library.List()
	if err != nil {
		return fmt.Errorf("failed to load videos: %w", err)
	}

	format := cmd.String("format")
	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(records, format, path); err != nil {
			return err
		}
		r.logger.Info("list exported", "path", path, "format", format, "videos", len(records))
		return r.writePlain("✓ Wrote %d videos to %s\n", len(records), path)
	}

	data, err := formatter.Render(format, records)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Show prints the details of one video.
func (r *Runner) Show(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	record, err := r.library.Resolve(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(record, true)
	}

	r.writePlainHeader(record.Name())
	r.writePlain("ID:       %s\n", record.ID())
	r.writePlain("Size:     %s (%d bytes)\n", formatter.FormatSize(record.Size()), record.Size())
	r.writePlain("Imported: %s\n", record.CreatedAt().Local().Format(time.RFC1123))
	r.writePlain("Path:     %s\n", record.Path())
	return nil
}

// Play hands the stored file to the configured player.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	record, err := r.library.Resolve(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	r.logger.Debug("starting player", "id", record.ID(), "path", record.Path())
	if err := r.player(record.Path()); err != nil {
		return err
	}

	return r.writePlain("▶ Playing %s\n", record.Name())
}

// Delete removes a video file and its record after confirmation.
func (r *Runner) Delete(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	record, err := r.library.Resolve(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		ok, err := r.confirm(fmt.Sprintf("Delete %s (%s)?", record.Name(), formatter.FormatSize(record.Size())))
		if err != nil {
			return err
		}
		if !ok {
			return r.writePlain("Cancelled\n")
		}
	}

	removed, err := r.library.Delete(record.ID())
	if err != nil {
		return err
	}

	r.logger.Info("video deleted", "id", removed.ID())
	return r.writePlain("✓ Deleted %s\n", removed.Name())
}

// Verify reports records without files, size mismatches and orphan files.
func (r *Runner) Verify(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	issues, err := r.library.Verify()
	if err != nil {
		return fmt.Errorf("failed to verify library: %w", err)
	}

	var pruned int
	if cmd.Bool("prune") {
		removed, err := r.library.Prune()
		if err != nil {
			return err
		}
		pruned = len(removed)
	}

	if cmd.Bool("json") {
		summaries := make([]issueSummary, 0, len(issues))
		for _, issue := range issues {
			summaries = append(summaries, newIssueSummary(issue))
		}
		return r.writeJSON(map[string]any{"issues": summaries, "pruned": pruned}, true)
	}

	if len(issues) == 0 {
		return r.writePlain("✓ Library OK\n")
	}

	r.writePlain("Found %d issues:\n", len(issues))
	for _, issue := range issues {
		s := newIssueSummary(issue)
		if s.ID != "" {
			r.writePlain("  [%s] %s %s: %s\n", s.Kind, s.ID, s.Path, s.Detail)
		} else {
			r.writePlain("  [%s] %s: %s\n", s.Kind, s.Path, s.Detail)
		}
	}

	if pruned > 0 {
		r.writePlain("\n✓ Pruned %d records with missing files\n", pruned)
	}
	return nil
}

func newIssueSummary(issue library.Issue) issueSummary {
	s := issueSummary{Kind: issue.Kind.String(), Path: issue.Path, Detail: issue.Detail}
	if issue.Record != nil {
		s.ID = issue.Record.ID()
	}
	return s
}
