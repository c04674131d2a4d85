package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/canectors/gridfilter/internal/logger"
	"github.com/canectors/gridfilter/pkg/grid"
)

// JSON writes records as a JSON array.
type JSON struct {
	dest   destination
	pretty bool
}

// NewJSONFromConfig creates a JSON output. Records go to 'path', or to
// console when no path is set. 'pretty' indents the array.
func NewJSONFromConfig(cfg *grid.ModuleConfig, console io.Writer) (*JSON, error) {
	pretty, _ := cfg.Config["pretty"].(bool)
	return &JSON{dest: newDestination(cfg, console), pretty: pretty}, nil
}

// Send encodes records as one JSON array.
func (m *JSON) Send(ctx context.Context, records []grid.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	err := m.dest.write(func(w io.Writer) error {
		enc := json.NewEncoder(w)
		if m.pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(nonNil(records))
	})
	if err != nil {
		return 0, fmt.Errorf("writing JSON to %s: %w", m.dest, err)
	}
	logger.WithModule("output", "json").Debug("records written",
		slog.String("destination", m.dest.String()),
		slog.Int("records", len(records)))
	return len(records), nil
}

// Close is a no-op.
func (m *JSON) Close() error { return nil }

// YAML writes records as a YAML sequence.
type YAML struct {
	dest destination
}

// NewYAMLFromConfig creates a YAML output.
func NewYAMLFromConfig(cfg *grid.ModuleConfig, console io.Writer) (*YAML, error) {
	return &YAML{dest: newDestination(cfg, console)}, nil
}

// Send encodes records as one YAML document.
func (m *YAML) Send(ctx context.Context, records []grid.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	err := m.dest.write(func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(nonNil(records)); err != nil {
			return err
		}
		return enc.Close()
	})
	if err != nil {
		return 0, fmt.Errorf("writing YAML to %s: %w", m.dest, err)
	}
	logger.WithModule("output", "yaml").Debug("records written",
		slog.String("destination", m.dest.String()),
		slog.Int("records", len(records)))
	return len(records), nil
}

// Close is a no-op.
func (m *YAML) Close() error { return nil }

var (
	_ Module = (*JSON)(nil)
	_ Module = (*YAML)(nil)
)
