package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions lists the video file extensions accepted when none are configured.
var DefaultExtensions = []string{".mp4", ".m4v", ".mov", ".mkv", ".webm", ".avi", ".wmv", ".flv", ".mpg", ".mpeg", ".3gp"}

// IsVideoFile checks if the given file extension is one of extensions (case insensitive).
func IsVideoFile(path string, extensions []string) bool {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}

	for _, v := range extensions {
		if strings.ToLower(v) == ext {
			return true
		}
	}
	return false
}

// Discover expands paths into the list of files to import.
//
// Plain files are passed through unchanged, even without a video extension, so validation can report them.
// Directories contribute their video files (sorted); subdirectories are only walked when recursive is set.
// Hidden files and directories are skipped.
func Discover(paths []string, extensions []string, recursive bool) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			// Leave the missing path in place; the import loop reports it as a failure.
			add(p)
			continue
		}

		if !info.IsDir() {
			add(p)
			continue
		}

		found, err := walkDir(p, extensions, recursive)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", p, err)
		}
		for _, f := range found {
			add(f)
		}
	}

	return files, nil
}

func walkDir(root string, extensions []string, recursive bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() && IsVideoFile(path, extensions) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
