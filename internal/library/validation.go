package library

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/desertthunder/vidshelf/internal/shared"
)

// Validator checks a candidate file before it is copied into the library.
type Validator struct {
	Extensions  []string
	MinSize     int64 // Smallest accepted size in bytes
	MaxSize     int64 // Largest accepted size in bytes; 0 disables the check
	Probe       bool  // Run ffprobe against the copied file
	FFProbePath string
}

// NewValidator builds a [Validator] from the library and validation config sections.
func NewValidator(lib shared.LibraryConfig, val shared.ValidationConfig) *Validator {
	return &Validator{
		Extensions:  lib.Extensions,
		MinSize:     lib.MinSize,
		MaxSize:     lib.MaxSize,
		Probe:       val.Probe,
		FFProbePath: val.FFProbePath,
	}
}

// Check validates the source file and returns its [os.FileInfo].
func (v *Validator) Check(path string) (os.FileInfo, error) {
	if !IsVideoFile(path, v.Extensions) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedFormat, filepath.Base(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file not accessible: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotRegularFile, path)
	}

	if err := v.CheckSize(info.Size()); err != nil {
		return nil, err
	}

	return info, nil
}

// CheckSize applies the size thresholds to size.
func (v *Validator) CheckSize(size int64) error {
	if size == 0 {
		return shared.ErrEmptyFile
	}
	if size < v.MinSize {
		return fmt.Errorf("%w: %d bytes (minimum %d)", shared.ErrFileTooSmall, size, v.MinSize)
	}
	if v.MaxSize > 0 && size > v.MaxSize {
		return fmt.Errorf("%w: %d bytes (maximum %d)", shared.ErrFileTooLarge, size, v.MaxSize)
	}
	return nil
}

// VerifyCopy confirms the copied file has the same size as the source.
func (v *Validator) VerifyCopy(path string, want int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: copied file not accessible: %v", shared.ErrCopyFailed, err)
	}
	if info.Size() != want {
		return fmt.Errorf("%w: expected %d bytes, found %d", shared.ErrSizeMismatch, want, info.Size())
	}
	return nil
}

// ProbeIntegrity runs ffprobe on path when probing is enabled.
//
// Returns an error if the file is corrupted or cannot be read.
func (v *Validator) ProbeIntegrity(ctx context.Context, path string) error {
	if !v.Probe {
		return nil
	}

	bin := v.FFProbePath
	if bin == "" {
		bin = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, bin, "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrProbeFailed, firstLine(string(output), err))
	}

	if strings.TrimSpace(string(output)) == "" {
		return fmt.Errorf("%w: no duration reported", shared.ErrProbeFailed)
	}

	return nil
}

func firstLine(output string, err error) string {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	if line == "" {
		return err.Error()
	}
	return line
}
