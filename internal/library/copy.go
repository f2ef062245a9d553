package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/desertthunder/vidshelf/internal/shared"
	"golang.org/x/time/rate"
)

const copyBufferSize = 256 * 1024

// renameFunc is swapped in tests to simulate rename failures.
var renameFunc = os.Rename

// NewCopyLimiter returns a byte-rate limiter for [CopyInto], or nil when bytesPerSec is not positive.
func NewCopyLimiter(bytesPerSec int64) *rate.Limiter {
	if bytesPerSec <= 0 {
		return nil
	}
	burst := int(bytesPerSec)
	if bytesPerSec > copyBufferSize {
		burst = copyBufferSize
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// CopyInto streams src into dir/name and returns the number of bytes written.
//
// The data goes to a hidden temp file in dir which is synced and renamed into place, so a partial copy never shows up under name.
// An existing dir/name is never overwritten. The copy stops with the context error if ctx is cancelled.
func CopyInto(ctx context.Context, src, dir, name string, limiter *rate.Limiter) (int64, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("%w: failed to create library directory: %v", shared.ErrCopyFailed, err)
	}

	dst := filepath.Join(dir, name)
	if _, err := os.Lstat(dst); err == nil {
		return 0, fmt.Errorf("%w: %s: %w", shared.ErrCopyFailed, dst, os.ErrExist)
	} else if !os.IsNotExist(err) {
		return 0, fmt.Errorf("%w: %v", shared.ErrCopyFailed, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to open source: %v", shared.ErrCopyFailed, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create temp file: %v", shared.ErrCopyFailed, err)
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		_ = tmp.Close()
		if !renamed {
			_ = os.Remove(tmpName)
		}
	}()

	written, err := copyChunks(ctx, tmp, in, limiter)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return written, err
		}
		return written, fmt.Errorf("%w: %v", shared.ErrCopyFailed, err)
	}

	if err := tmp.Chmod(0644); err != nil {
		return written, fmt.Errorf("%w: %v", shared.ErrCopyFailed, err)
	}
	if err := tmp.Sync(); err != nil {
		return written, fmt.Errorf("%w: %v", shared.ErrCopyFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return written, fmt.Errorf("%w: %v", shared.ErrCopyFailed, err)
	}

	if err := renameFunc(tmpName, dst); err != nil {
		return written, fmt.Errorf("%w: failed to move into place: %v", shared.ErrCopyFailed, err)
	}
	renamed = true

	return written, nil
}

// copyChunks copies r to w one buffer at a time, checking ctx and the limiter between chunks.
func copyChunks(ctx context.Context, w io.Writer, r io.Reader, limiter *rate.Limiter) (int64, error) {
	size := copyBufferSize
	if limiter != nil && limiter.Burst() < size {
		size = limiter.Burst()
	}
	buf := make([]byte, size)

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			if limiter != nil {
				if err := limiter.WaitN(ctx, n); err != nil {
					if ctxErr := ctx.Err(); ctxErr != nil {
						return written, ctxErr
					}
					return written, err
				}
			}

			m, err := w.Write(buf[:n])
			written += int64(m)
			if err != nil {
				return written, err
			}
			if m != n {
				return written, io.ErrShortWrite
			}
		}

		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
