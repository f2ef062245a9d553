package library

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/vidshelf/internal/shared"
	tu "github.com/desertthunder/vidshelf/internal/testing"
)

func TestCopyInto(t *testing.T) {
	t.Run("copies content and leaves no temp files", func(t *testing.T) {
		src := tu.WriteVideo(t, t.TempDir(), "clip.mp4", 3*copyBufferSize+17)
		dir := filepath.Join(t.TempDir(), "videos")

		written, err := CopyInto(context.Background(), src, dir, "video_1_clip.mp4", nil)
		if err != nil {
			t.Fatalf("CopyInto() error = %v", err)
		}
		if written != int64(3*copyBufferSize+17) {
			t.Errorf("expected %d bytes written, got %d", 3*copyBufferSize+17, written)
		}

		want := tu.MustReadFile(t, src)
		got := tu.MustReadFile(t, filepath.Join(dir, "video_1_clip.mp4"))
		if !bytes.Equal([]byte(want), []byte(got)) {
			t.Error("copied content differs from source")
		}

		if n := tu.CountAllFiles(t, dir); n != 1 {
			t.Errorf("expected exactly one file in library dir, got %d", n)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		src := tu.WriteVideo(t, t.TempDir(), "clip.mp4", 10)
		dir := t.TempDir()
		tu.WriteVideo(t, dir, "taken.mp4", 3)

		_, err := CopyInto(context.Background(), src, dir, "taken.mp4", nil)
		if !errors.Is(err, os.ErrExist) || !errors.Is(err, shared.ErrCopyFailed) {
			t.Errorf("expected ErrCopyFailed wrapping ErrExist, got %v", err)
		}
	})

	t.Run("missing source", func(t *testing.T) {
		dir := t.TempDir()
		_, err := CopyInto(context.Background(), filepath.Join(dir, "nope.mp4"), dir, "out.mp4", nil)
		if !errors.Is(err, shared.ErrCopyFailed) {
			t.Errorf("expected ErrCopyFailed, got %v", err)
		}
	})

	t.Run("cancelled context removes temp file", func(t *testing.T) {
		src := tu.WriteVideo(t, t.TempDir(), "clip.mp4", 64)
		dir := t.TempDir()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := CopyInto(ctx, src, dir, "out.mp4", nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if n := tu.CountAllFiles(t, dir); n != 0 {
			t.Errorf("expected no files left behind, got %d", n)
		}
	})

	t.Run("rename failure removes temp file", func(t *testing.T) {
		original := renameFunc
		renameFunc = func(string, string) error { return errors.New("cross-device link") }
		t.Cleanup(func() { renameFunc = original })

		src := tu.WriteVideo(t, t.TempDir(), "clip.mp4", 64)
		dir := t.TempDir()

		_, err := CopyInto(context.Background(), src, dir, "out.mp4", nil)
		if !errors.Is(err, shared.ErrCopyFailed) {
			t.Errorf("expected ErrCopyFailed, got %v", err)
		}
		if n := tu.CountAllFiles(t, dir); n != 0 {
			t.Errorf("expected no files left behind, got %d", n)
		}
	})

	t.Run("rate limited copy", func(t *testing.T) {
		src := tu.WriteVideo(t, t.TempDir(), "clip.mp4", 4096)
		dir := t.TempDir()

		limiter := NewCopyLimiter(1 << 20)
		start := time.Now()
		written, err := CopyInto(context.Background(), src, dir, "out.mp4", limiter)
		if err != nil {
			t.Fatalf("CopyInto() error = %v", err)
		}
		if written != 4096 {
			t.Errorf("expected 4096 bytes, got %d", written)
		}
		if time.Since(start) > 5*time.Second {
			t.Error("rate limited copy took unexpectedly long")
		}
	})
}

func TestNewCopyLimiter(t *testing.T) {
	if NewCopyLimiter(0) != nil {
		t.Error("expected nil limiter for zero rate")
	}
	if NewCopyLimiter(-5) != nil {
		t.Error("expected nil limiter for negative rate")
	}

	small := NewCopyLimiter(1024)
	if small.Burst() != 1024 {
		t.Errorf("expected burst 1024, got %d", small.Burst())
	}

	large := NewCopyLimiter(10 << 20)
	if large.Burst() != copyBufferSize {
		t.Errorf("expected burst capped at %d, got %d", copyBufferSize, large.Burst())
	}
}
