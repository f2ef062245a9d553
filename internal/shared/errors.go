package shared

import "fmt"

var (
	ErrCancelled = fmt.Errorf("operation cancelled")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Storage errors
	ErrStore        = fmt.Errorf("store operation failed")
	ErrCorruptStore = fmt.Errorf("stored video list is corrupt")
	ErrDuplicateID  = fmt.Errorf("video already exists")

	// Video and file errors
	ErrVideoNotFound     = fmt.Errorf("video not found")
	ErrAmbiguousID       = fmt.Errorf("ambiguous video reference")
	ErrUnsupportedFormat = fmt.Errorf("unsupported video format")
	ErrNotRegularFile    = fmt.Errorf("not a regular file")
	ErrEmptyFile         = fmt.Errorf("file is empty")
	ErrFileTooSmall      = fmt.Errorf("file is below the minimum size")
	ErrFileTooLarge      = fmt.Errorf("file exceeds the maximum size")
	ErrCopyFailed        = fmt.Errorf("failed to copy video")
	ErrSizeMismatch      = fmt.Errorf("copied size does not match source")
	ErrProbeFailed       = fmt.Errorf("video probe failed")

	// Player errors
	ErrPlayerUnavailable = fmt.Errorf("no video player available")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
