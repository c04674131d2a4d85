package input

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/canectors/gridfilter/internal/errhandling"
	"github.com/canectors/gridfilter/internal/logger"
	"github.com/canectors/gridfilter/pkg/grid"
)

// Record file formats.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatYAML  = "yaml"
)

// maxParallelReads bounds the number of files decoded at once.
const maxParallelReads = 8

// maxLineSize is the largest JSONL record accepted.
const maxLineSize = 16 * 1024 * 1024

// File loads records from one or more files. Records keep the order of the
// paths, then the order inside each file.
type File struct {
	paths  []string
	format string
}

// NewFile creates a file module. An empty format is detected per path from
// its extension once a .gz or .zst suffix is removed.
func NewFile(paths []string, format string) *File {
	return &File{paths: paths, format: format}
}

// NewFileFromConfig reads the 'paths' and optional 'format' of a file source.
func NewFileFromConfig(cfg *grid.ModuleConfig) (*File, error) {
	raw, ok := cfg.Config["paths"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("file source requires a non-empty 'paths' list")
	}
	paths := make([]string, 0, len(raw))
	for i, p := range raw {
		s, ok := p.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("paths[%d] must be a non-empty string", i)
		}
		paths = append(paths, s)
	}

	format, _ := cfg.Config["format"].(string)
	switch format {
	case "", FormatJSON, FormatJSONL, FormatYAML:
	default:
		return nil, fmt.Errorf("unsupported record format %q", format)
	}
	return NewFile(paths, format), nil
}

// Fetch reads every file concurrently and concatenates the records.
func (m *File) Fetch(ctx context.Context) ([]grid.Record, error) {
	start := time.Now()
	perFile := make([][]grid.Record, len(m.paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, path := range m.paths {
		i, path := i, path
		g.Go(func() error {
			records, err := readRecordFile(gctx, path, m.format)
			if err != nil {
				return errhandling.NewInputError(fmt.Sprintf("reading %s", path), err)
			}
			perFile[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, records := range perFile {
		total += len(records)
	}
	all := make([]grid.Record, 0, total)
	for _, records := range perFile {
		all = append(all, records...)
	}

	logger.WithModule("source", "file").Debug("record files loaded",
		slog.Int("files", len(m.paths)),
		slog.Int("records", len(all)),
		slog.Duration("duration", time.Since(start)),
	)
	return all, nil
}

// Close is a no-op; files are closed after each read.
func (m *File) Close() error {
	return nil
}

var _ Module = (*File)(nil)

// DetectFormat returns the record format and compression implied by a path,
// e.g. "movies.jsonl.zst" is ("jsonl", ".zst").
func DetectFormat(path string) (format, compression string) {
	name := strings.ToLower(filepath.Base(path))
	switch ext := filepath.Ext(name); ext {
	case ".gz", ".zst":
		compression = ext
		name = strings.TrimSuffix(name, ext)
	}

	switch filepath.Ext(name) {
	case ".jsonl", ".ndjson":
		return FormatJSONL, compression
	case ".yaml", ".yml":
		return FormatYAML, compression
	default:
		return FormatJSON, compression
	}
}

func readRecordFile(ctx context.Context, path, format string) ([]grid.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	detected, compression := DetectFormat(path)
	if format == "" {
		format = detected
	}

	var r io.Reader = f
	switch compression {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	switch format {
	case FormatJSONL:
		return decodeJSONLines(ctx, r)
	case FormatYAML:
		return decodeYAML(r)
	default:
		return decodeJSON(r)
	}
}

func decodeJSON(r io.Reader) ([]grid.Record, error) {
	var records []grid.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding JSON records: %w", err)
	}
	return nonNil(records), nil
}

func decodeYAML(r io.Reader) ([]grid.Record, error) {
	var records []grid.Record
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return []grid.Record{}, nil
		}
		return nil, fmt.Errorf("decoding YAML records: %w", err)
	}
	return nonNil(records), nil
}

func decodeJSONLines(ctx context.Context, r io.Reader) ([]grid.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	records := []grid.Record{}
	line := 0
	for scanner.Scan() {
		line++
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var record grid.Record
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if record == nil {
			return nil, fmt.Errorf("line %d: expected a JSON object", line)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func nonNil(records []grid.Record) []grid.Record {
	if records == nil {
		return []grid.Record{}
	}
	return records
}
