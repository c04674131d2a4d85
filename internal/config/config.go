package config

import (
	"fmt"
	"path/filepath"

	"github.com/canectors/gridfilter/internal/errhandling"
	"github.com/canectors/gridfilter/internal/pathutil"
	"github.com/canectors/gridfilter/pkg/grid"
)

// Loader loads view files. Relative source and output paths in a view are
// resolved against the directory of the view file.
type Loader struct {
	// basePath overrides the directory used to resolve relative paths
	basePath string
}

// NewLoader creates a view loader. An empty basePath resolves relative
// paths against each view file's directory.
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// Load parses, validates and converts a view file.
// Every failure is a config-category errhandling.ClassifiedError.
func (l *Loader) Load(path string) (*grid.View, error) {
	view, _, err := l.LoadResult(path)
	return view, err
}

// LoadResult is Load that also returns the parse result, so callers can
// report each parse and validation error.
func (l *Loader) LoadResult(path string) (*grid.View, *Result, error) {
	result := ParseFile(path)
	if !result.IsValid() {
		return nil, result, errhandling.NewConfigError(fmt.Sprintf("invalid view file %s", path), result.Err())
	}

	view, err := ConvertToView(result.Data)
	if err != nil {
		return nil, result, errhandling.NewConfigError(fmt.Sprintf("invalid view file %s", path), err)
	}

	baseDir := l.basePath
	if baseDir == "" {
		baseDir = filepath.Dir(path)
	}
	if err := ResolvePaths(view, baseDir); err != nil {
		return nil, result, errhandling.NewConfigError(fmt.Sprintf("invalid view file %s", path), err)
	}
	return view, result, nil
}

// ResolvePaths validates the file paths named by the view's source and
// output and joins relative ones to baseDir.
func ResolvePaths(view *grid.View, baseDir string) error {
	if view.Source != nil {
		if raw, has := view.Source.Config["paths"].([]interface{}); has {
			resolved := make([]interface{}, 0, len(raw))
			for i, p := range raw {
				s, ok := p.(string)
				if !ok {
					return fmt.Errorf("source paths[%d] must be a string, got %T", i, p)
				}
				abs, err := pathutil.Resolve(baseDir, s)
				if err != nil {
					return fmt.Errorf("source paths[%d]: %w", i, err)
				}
				resolved = append(resolved, abs)
			}
			view.Source.Config["paths"] = resolved
		}
	}

	if view.Output != nil {
		if p, has := view.Output.Config["path"].(string); has {
			resolved, err := pathutil.Resolve(baseDir, p)
			if err != nil {
				return fmt.Errorf("output path: %w", err)
			}
			view.Output.Config["path"] = resolved
		}
	}
	return nil
}
