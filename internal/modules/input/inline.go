package input

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/canectors/gridfilter/internal/logger"
	"github.com/canectors/gridfilter/pkg/grid"
)

// Inline serves records embedded in the view file.
type Inline struct {
	records []grid.Record
}

// NewInline creates an inline module over records.
func NewInline(records []grid.Record) *Inline {
	return &Inline{records: records}
}

// NewInlineFromConfig reads the 'records' list of an inline source.
func NewInlineFromConfig(cfg *grid.ModuleConfig) (*Inline, error) {
	raw, ok := cfg.Config["records"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("inline source requires a 'records' list")
	}

	records := make([]grid.Record, 0, len(raw))
	for i, item := range raw {
		record, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("records[%d] must be an object, got %T", i, item)
		}
		records = append(records, record)
	}
	return NewInline(records), nil
}

// Fetch returns the embedded records.
func (m *Inline) Fetch(ctx context.Context) ([]grid.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.WithModule("source", "inline").Debug("records loaded", slog.Int("records", len(m.records)))
	return slices.Clone(m.records), nil
}

// Close is a no-op.
func (m *Inline) Close() error {
	return nil
}

var _ Module = (*Inline)(nil)
