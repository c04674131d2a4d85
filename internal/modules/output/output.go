// Package output provides implementations for output modules.
// Output modules write the filtered records of a view to a destination.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"

	"github.com/canectors/gridfilter/internal/modules/filter"
	"github.com/canectors/gridfilter/pkg/grid"
)

// Module represents an output module that writes records to a destination.
type Module interface {
	// Send writes records to the destination.
	// Returns the number of records written and any error.
	Send(ctx context.Context, records []grid.Record) (int, error)

	// Close releases any resources held by the module.
	Close() error
}

// destination is either a file path or the console writer.
type destination struct {
	path    string
	console io.Writer
}

func newDestination(cfg *grid.ModuleConfig, console io.Writer) destination {
	path, _ := cfg.Config["path"].(string)
	if console == nil {
		console = os.Stdout
	}
	return destination{path: path, console: console}
}

// open returns the writer to use. Closing it closes the file, never the console.
func (d destination) open() (io.WriteCloser, error) {
	if d.path == "" {
		return nopCloser{d.console}, nil
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(d.path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, nil
}

func (d destination) String() string {
	if d.path == "" {
		return "console"
	}
	return d.path
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// write opens the destination, runs fn and closes it, keeping the first error.
func (d destination) write(fn func(w io.Writer) error) (err error) {
	w, err := d.open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(w)
}

// Columns returns configured when set, otherwise the union of record keys.
// Keys are sorted within each record and appended in first-seen order.
func Columns(records []grid.Record, configured []string) []string {
	if len(configured) > 0 {
		return configured
	}
	seen := make(map[string]bool)
	var columns []string
	for _, record := range records {
		keys := make([]string, 0, len(record))
		for k := range record {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
		}
		columns = append(columns, keys...)
	}
	return columns
}

// cellValue resolves a column, which may be a nested path, on a record.
func cellValue(record grid.Record, column string) interface{} {
	v, ok := filter.Lookup(record, column)
	if !ok {
		return nil
	}
	return v
}

// formatCell renders a value as table text. Nested values are rendered as JSON.
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

func stringsOption(cfg *grid.ModuleConfig, key string) ([]string, error) {
	raw, has := cfg.Config[key]
	if !has || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("'%s' must be a list of strings, got %T", key, raw)
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("%s[%d] must be a non-empty string", key, i)
		}
		out = append(out, s)
	}
	return slices.Clip(out), nil
}

func nonNil(records []grid.Record) []grid.Record {
	if records == nil {
		return []grid.Record{}
	}
	return records
}
