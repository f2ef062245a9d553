package tasks

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/vidshelf/internal/library"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
	tu "github.com/desertthunder/vidshelf/internal/testing"
)

// mockImporter fails for paths listed in failures and records every call.
type mockImporter struct {
	failures map[string]error
	calls    []string
	onImport func(path string)
}

func (m *mockImporter) Extensions() []string { return library.DefaultExtensions }

func (m *mockImporter) Import(ctx context.Context, src string) (*models.VideoRecord, error) {
	m.calls = append(m.calls, src)
	if m.onImport != nil {
		m.onImport(src)
	}
	if err, ok := m.failures[filepath.Base(src)]; ok {
		return nil, err
	}
	created := time.Date(2024, 1, 1, 0, 0, len(m.calls), 0, time.UTC)
	return models.NewVideoRecord(filepath.Base(src), 10, "/lib/"+filepath.Base(src), created), nil
}

func newTestEngine(importer Importer, batches models.BatchStore) *ImportEngine {
	return NewImportEngine(importer, batches, shared.NewLogger(&bytes.Buffer{}))
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestImportEngineRun(t *testing.T) {
	t.Run("imports every file in order", func(t *testing.T) {
		importer := &mockImporter{}
		batches := &tu.MemoryBatchStore{}
		engine := newTestEngine(importer, batches)
		paths := []string{"/in/a.mp4", "/in/b.mp4", "/in/c.mp4"}

		result, err := engine.Run(context.Background(), paths, ImportOpts{}, nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if result.Total != 3 || result.Imported != 3 || result.Failed != 0 {
			t.Errorf("unexpected counts: %+v", result)
		}
		for i, p := range paths {
			if importer.calls[i] != p {
				t.Errorf("call %d = %s, want %s", i, importer.calls[i], p)
			}
			if result.Records[i].Name() != filepath.Base(p) {
				t.Errorf("record %d = %s, want %s", i, result.Records[i].Name(), filepath.Base(p))
			}
		}
		if result.BatchID == "" {
			t.Error("expected batch ID")
		}

		if len(batches.Batches) != 1 || batches.Batches[0].ID != result.BatchID || batches.Batches[0].Imported != 3 {
			t.Errorf("expected batch to be recorded, got %+v", batches.Batches)
		}
	})

	t.Run("continues past failures", func(t *testing.T) {
		importer := &mockImporter{failures: map[string]error{
			"b.mp4": shared.ErrEmptyFile,
			"d.mp4": shared.ErrFileTooLarge,
		}}
		engine := newTestEngine(importer, nil)

		result, err := engine.Run(context.Background(), []string{"/in/a.mp4", "/in/b.mp4", "/in/c.mp4", "/in/d.mp4"}, ImportOpts{}, nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if len(importer.calls) != 4 {
			t.Errorf("expected every file to be attempted, got %d calls", len(importer.calls))
		}
		if result.Imported != 2 || result.Failed != 2 {
			t.Errorf("expected 2 imported and 2 failed, got %+v", result)
		}
		if result.Failures[0].Path != "/in/b.mp4" || !errors.Is(result.Failures[0].Err, shared.ErrEmptyFile) {
			t.Errorf("unexpected first failure: %+v", result.Failures[0])
		}
		if result.Failures[1].Path != "/in/d.mp4" || !errors.Is(result.Failures[1].Err, shared.ErrFileTooLarge) {
			t.Errorf("unexpected second failure: %+v", result.Failures[1])
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		importer := &mockImporter{failures: map[string]error{"b.mp4": shared.ErrEmptyFile}}
		engine := newTestEngine(importer, nil)
		progress := make(chan ProgressUpdate, 50)

		result, err := engine.Run(context.Background(), []string{"/in/a.mp4", "/in/b.mp4"}, ImportOpts{}, progress)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		updates := drain(progress)
		if len(updates) == 0 {
			t.Fatal("expected progress updates")
		}
		if updates[0].Phase != Discover {
			t.Errorf("expected first update in discover phase, got %s", updates[0].Phase)
		}

		last := updates[len(updates)-1]
		if last.Phase != Complete || last.Data != result {
			t.Errorf("expected final complete update carrying result, got %+v", last)
		}
		if last.Fraction() != 1 {
			t.Errorf("expected complete fraction 1, got %f", last.Fraction())
		}

		var failed, succeeded int
		for _, u := range updates {
			if u.Phase != Import {
				continue
			}
			if u.Err != nil {
				failed++
				if !strings.Contains(u.Message, "✗ b.mp4") {
					t.Errorf("unexpected failure message %q", u.Message)
				}
			} else if _, ok := u.Data.(*models.VideoRecord); ok {
				succeeded++
			}
		}
		if failed != 1 || succeeded != 1 {
			t.Errorf("expected 1 success and 1 failure update, got %d and %d", succeeded, failed)
		}
	})

	t.Run("full progress channel does not block", func(t *testing.T) {
		engine := newTestEngine(&mockImporter{}, nil)
		progress := make(chan ProgressUpdate)

		done := make(chan struct{})
		go func() {
			defer close(done)
			if _, err := engine.Run(context.Background(), []string{"/in/a.mp4"}, ImportOpts{}, progress); err != nil {
				t.Errorf("Run() error = %v", err)
			}
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Run blocked on an unread progress channel")
		}
	})

	t.Run("cancellation stops before the next file", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		importer := &mockImporter{onImport: func(path string) {
			if filepath.Base(path) == "b.mp4" {
				cancel()
			}
		}}
		engine := newTestEngine(importer, nil)

		result, err := engine.Run(ctx, []string{"/in/a.mp4", "/in/b.mp4", "/in/c.mp4", "/in/d.mp4"}, ImportOpts{}, nil)
		if !errors.Is(err, shared.ErrCancelled) {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected error to wrap context.Canceled, got %v", err)
		}
		if result == nil {
			t.Fatal("expected partial result")
		}
		if len(importer.calls) != 2 {
			t.Errorf("expected 2 import calls, got %d", len(importer.calls))
		}
		if result.Imported != 2 || result.Failed != 2 {
			t.Errorf("expected 2 imported and 2 cancelled, got %+v", result)
		}
		for _, f := range result.Failures {
			if !errors.Is(f.Err, context.Canceled) {
				t.Errorf("expected context.Canceled for %s, got %v", f.Path, f.Err)
			}
		}
	})

	t.Run("expands directories", func(t *testing.T) {
		dir := t.TempDir()
		tu.WriteVideo(t, dir, "one.mp4", 5)
		tu.WriteVideo(t, dir, "two.mov", 5)
		tu.WriteVideo(t, dir, "skip.txt", 5)
		tu.WriteVideo(t, dir, "deep/three.mkv", 5)

		importer := &mockImporter{}
		engine := newTestEngine(importer, nil)

		result, err := engine.Run(context.Background(), []string{dir}, ImportOpts{Recursive: true}, nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.Total != 3 {
			t.Errorf("expected 3 discovered files, got %d (%v)", result.Total, importer.calls)
		}
	})

	t.Run("no paths", func(t *testing.T) {
		engine := newTestEngine(&mockImporter{}, nil)
		if _, err := engine.Run(context.Background(), nil, ImportOpts{}, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("nil importer", func(t *testing.T) {
		engine := newTestEngine(nil, nil)
		if _, err := engine.Run(context.Background(), []string{"/in/a.mp4"}, ImportOpts{}, nil); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("batch record failure does not fail the run", func(t *testing.T) {
		batches := &tu.MemoryBatchStore{RecordErr: errors.New("db closed")}
		engine := newTestEngine(&mockImporter{}, batches)

		if _, err := engine.Run(context.Background(), []string{"/in/a.mp4"}, ImportOpts{}, nil); err != nil {
			t.Errorf("expected run to succeed, got %v", err)
		}
	})
}

func TestImportEngineWithLibrary(t *testing.T) {
	store := tu.NewMemoryStore()
	lib, err := library.New(library.Options{
		Dir:    filepath.Join(t.TempDir(), "videos"),
		Store:  store,
		Logger: shared.NewLogger(&bytes.Buffer{}),
	})
	if err != nil {
		t.Fatalf("library.New() error = %v", err)
	}

	src := t.TempDir()
	good := tu.WriteVideo(t, src, "good.mp4", 100)
	empty := tu.WriteVideo(t, src, "empty.mp4", 0)
	text := tu.WriteVideo(t, src, "notes.txt", 10)
	missing := filepath.Join(src, "missing.mov")

	engine := newTestEngine(lib, nil)
	result, err := engine.Run(context.Background(), []string{good, empty, text, missing}, ImportOpts{}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Imported != 1 || result.Failed != 3 {
		t.Errorf("expected 1 imported and 3 failed, got %+v", result)
	}
	if !errors.Is(result.Failures[0].Err, shared.ErrEmptyFile) {
		t.Errorf("expected empty file failure, got %v", result.Failures[0].Err)
	}
	if !errors.Is(result.Failures[1].Err, shared.ErrUnsupportedFormat) {
		t.Errorf("expected unsupported format failure, got %v", result.Failures[1].Err)
	}

	records, _ := store.List()
	if len(records) != 1 || records[0].Name() != "good.mp4" {
		t.Errorf("expected only good.mp4 registered, got %v", records)
	}
	if n := tu.CountAllFiles(t, lib.Dir()); n != 1 {
		t.Errorf("expected one file in library, got %d", n)
	}
}

func TestProgressUpdateFraction(t *testing.T) {
	tc := []struct {
		name   string
		update ProgressUpdate
		want   float64
	}{
		{name: "halfway", update: ProgressUpdate{Phase: Import, Step: 2, Total: 4}, want: 0.5},
		{name: "zero total", update: ProgressUpdate{Phase: Import}, want: 0},
		{name: "complete with zero total", update: ProgressUpdate{Phase: Complete}, want: 1},
		{name: "clamped", update: ProgressUpdate{Phase: Import, Step: 5, Total: 4}, want: 1},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.update.Fraction(); got != tt.want {
				t.Errorf("Fraction() = %f, want %f", got, tt.want)
			}
		})
	}
}
