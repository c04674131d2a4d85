// Package pathutil provides shared path validation helpers for view sources
// and outputs.
package pathutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Path errors.
var (
	ErrEmptyPath     = errors.New("file path cannot be empty")
	ErrInvalidPath   = errors.New("file path contains invalid characters")
	ErrPathTraversal = errors.New("file path contains path traversal")
)

// ValidateFilePath rejects empty paths, null bytes, and ".." segments.
// Segments are checked before cleaning: "views/../etc/passwd" cleans to
// "etc/passwd" and would otherwise pass.
func ValidateFilePath(filePath string) error {
	if filePath == "" {
		return ErrEmptyPath
	}
	if strings.Contains(filePath, "\x00") {
		return ErrInvalidPath
	}
	for _, segment := range strings.Split(filepath.ToSlash(filePath), "/") {
		if segment == ".." {
			return fmt.Errorf("%w: %q", ErrPathTraversal, filePath)
		}
	}
	return nil
}

// Resolve validates filePath and joins it to baseDir when it is relative.
// An empty baseDir leaves relative paths relative to the working directory.
func Resolve(baseDir, filePath string) (string, error) {
	if err := ValidateFilePath(filePath); err != nil {
		return "", err
	}
	if filepath.IsAbs(filePath) || baseDir == "" {
		return filepath.Clean(filePath), nil
	}
	return filepath.Join(baseDir, filePath), nil
}
