// package library copies video files into the app-private directory and keeps the record list in step with it
package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
	"golang.org/x/time/rate"
)

// Library owns the private video directory and the [models.VideoStore] describing it.
type Library struct {
	dir       string
	store     models.VideoStore
	validator *Validator
	limiter   *rate.Limiter
	logger    *log.Logger
	now       func() time.Time
	copyFile  func(ctx context.Context, src, dir, name string, limiter *rate.Limiter) (int64, error)
}

// Options contains configuration for creating a [Library].
type Options struct {
	Dir       string
	Store     models.VideoStore
	Validator *Validator
	Limiter   *rate.Limiter
	Logger    *log.Logger
	Now       func() time.Time
}

// New creates a Library rooted at opts.Dir.
func New(opts Options) (*Library, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("%w: library directory is required", shared.ErrInvalidConfig)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: video store is required", shared.ErrInvalidConfig)
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library directory: %w", err)
	}

	if opts.Validator == nil {
		opts.Validator = &Validator{Extensions: DefaultExtensions, MinSize: 1}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Library{
		dir:       dir,
		store:     opts.Store,
		validator: opts.Validator,
		limiter:   opts.Limiter,
		logger:    shared.WithLogger(opts.Logger, "component", "library"),
		now:       opts.Now,
		copyFile:  CopyInto,
	}, nil
}

// Dir returns the absolute path of the private video directory.
func (l *Library) Dir() string { return l.dir }

// Extensions returns the accepted video extensions.
func (l *Library) Extensions() []string { return l.validator.Extensions }

// List returns every record in import order.
func (l *Library) List() ([]*models.VideoRecord, error) {
	return l.store.List()
}

// Import validates src, copies it into the library directory and registers a record for it.
//
// If any step after the copy fails the copied file is removed again, so a returned error never leaves an unregistered file behind.
func (l *Library) Import(ctx context.Context, src string) (*models.VideoRecord, error) {
	info, err := l.validator.Check(src)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(src)
	createdAt := l.now()
	fileName := models.RecordID(name, createdAt)
	dst := filepath.Join(l.dir, fileName)

	written, err := l.copyFile(ctx, src, l.dir, fileName, l.limiter)
	if err != nil {
		return nil, err
	}

	rollback := func(cause error) error {
		if rmErr := os.Remove(dst); rmErr != nil && !os.IsNotExist(rmErr) {
			l.logger.Warn("failed to remove copied file after import error", "path", dst, "err", rmErr)
		}
		return cause
	}

	if written != info.Size() {
		return nil, rollback(fmt.Errorf("%w: expected %d bytes, copied %d", shared.ErrSizeMismatch, info.Size(), written))
	}
	if err := l.validator.VerifyCopy(dst, info.Size()); err != nil {
		return nil, rollback(err)
	}
	if err := l.validator.ProbeIntegrity(ctx, dst); err != nil {
		return nil, rollback(err)
	}

	record := models.NewVideoRecord(name, written, dst, createdAt)
	if err := l.store.Add(record); err != nil {
		return nil, rollback(fmt.Errorf("failed to save video record: %w", err))
	}

	l.logger.Debug("imported video", "id", record.ID(), "size", record.Size())
	return record, nil
}

// Delete unlinks the video file and removes its record.
//
// A file that is already gone is not an error. Any other unlink failure is logged and the record is removed anyway.
func (l *Library) Delete(id string) (*models.VideoRecord, error) {
	record, err := l.store.Get(id)
	if err != nil {
		return nil, err
	}

	if err := os.Remove(record.Path()); err != nil && !os.IsNotExist(err) {
		l.logger.Warn("failed to remove video file", "id", id, "path", record.Path(), "err", err)
	}

	removed, err := l.store.Remove(id)
	if err != nil {
		return nil, fmt.Errorf("failed to remove video record: %w", err)
	}

	return removed, nil
}

// Resolve finds a record by exact ID, unique ID prefix or exact display name.
func (l *Library) Resolve(ref string) (*models.VideoRecord, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}

	records, err := l.store.List()
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		if r.ID() == ref {
			return r, nil
		}
	}

	for _, match := range []func(*models.VideoRecord) bool{
		func(r *models.VideoRecord) bool { return strings.HasPrefix(r.ID(), ref) },
		func(r *models.VideoRecord) bool { return r.Name() == ref },
	} {
		var found []*models.VideoRecord
		for _, r := range records {
			if match(r) {
				found = append(found, r)
			}
		}

		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil
		default:
			return nil, fmt.Errorf("%w: %q matches %d videos", shared.ErrAmbiguousID, ref, len(found))
		}
	}

	return nil, fmt.Errorf("%w: %s", shared.ErrVideoNotFound, ref)
}

// IssueKind classifies a mismatch between the record list and the directory.
type IssueKind int

const (
	MissingFile IssueKind = iota
	SizeMismatch
	OrphanFile
)

func (k IssueKind) String() string {
	switch k {
	case MissingFile:
		return "missing_file"
	case SizeMismatch:
		return "size_mismatch"
	case OrphanFile:
		return "orphan_file"
	default:
		return ""
	}
}

// Issue is one problem found by [Library.Verify]. Record is nil for orphan files.
type Issue struct {
	Kind   IssueKind
	Record *models.VideoRecord
	Path   string
	Detail string
}

// Verify compares the record list against the files in the library directory.
func (l *Library) Verify() ([]Issue, error) {
	records, err := l.store.List()
	if err != nil {
		return nil, err
	}

	var issues []Issue
	known := make(map[string]bool, len(records))

	for _, r := range records {
		known[filepath.Clean(r.Path())] = true

		info, err := os.Stat(r.Path())
		if err != nil {
			issues = append(issues, Issue{Kind: MissingFile, Record: r, Path: r.Path(), Detail: err.Error()})
			continue
		}
		if info.Size() != r.Size() {
			issues = append(issues, Issue{
				Kind:   SizeMismatch,
				Record: r,
				Path:   r.Path(),
				Detail: fmt.Sprintf("recorded %d bytes, found %d", r.Size(), info.Size()),
			})
		}
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read library directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(l.dir, e.Name())
		if !known[path] {
			issues = append(issues, Issue{Kind: OrphanFile, Path: path, Detail: "no record references this file"})
		}
	}

	return issues, nil
}

// Prune drops records whose file no longer exists and returns them.
func (l *Library) Prune() ([]*models.VideoRecord, error) {
	records, err := l.store.List()
	if err != nil {
		return nil, err
	}

	var kept, removed []*models.VideoRecord
	for _, r := range records {
		if _, err := os.Stat(r.Path()); errors.Is(err, os.ErrNotExist) {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}

	if len(removed) == 0 {
		return nil, nil
	}

	if err := l.store.Replace(kept); err != nil {
		return nil, fmt.Errorf("failed to save pruned video list: %w", err)
	}

	for _, r := range removed {
		l.logger.Info("pruned record with missing file", "id", r.ID())
	}

	return removed, nil
}
