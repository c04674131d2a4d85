package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/canectors/gridfilter/internal/logger"
	"github.com/canectors/gridfilter/pkg/grid"
)

const defaultSheet = "Sheet1"

// XLSX writes records to a spreadsheet, one row per record after a header row.
type XLSX struct {
	path    string
	sheet   string
	columns []string
}

// NewXLSXFromConfig creates a spreadsheet output. 'path' is required.
func NewXLSXFromConfig(cfg *grid.ModuleConfig) (*XLSX, error) {
	path, _ := cfg.Config["path"].(string)
	if path == "" {
		return nil, fmt.Errorf("xlsx output requires 'path'")
	}
	sheet, _ := cfg.Config["sheet"].(string)
	if sheet == "" {
		sheet = defaultSheet
	}
	columns, err := stringsOption(cfg, "columns")
	if err != nil {
		return nil, err
	}
	return &XLSX{path: path, sheet: sheet, columns: columns}, nil
}

// Send writes the workbook. Numbers and booleans keep their cell type;
// nested values are written as JSON text.
func (m *XLSX) Send(ctx context.Context, records []grid.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := m.writeWorkbook(records); err != nil {
		return 0, fmt.Errorf("writing xlsx to %s: %w", m.path, err)
	}
	logger.WithModule("output", "xlsx").Debug("records written",
		slog.String("destination", m.path),
		slog.String("sheet", m.sheet),
		slog.Int("records", len(records)))
	return len(records), nil
}

func (m *XLSX) writeWorkbook(records []grid.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if m.sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, m.sheet); err != nil {
			return err
		}
	}

	sw, err := f.NewStreamWriter(m.sheet)
	if err != nil {
		return err
	}

	columns := Columns(records, m.columns)
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetPanes(&excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, record := range records {
		row := make([]interface{}, len(columns))
		for j, c := range columns {
			row[j] = xlsxCell(cellValue(record, c))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return destination{path: m.path}.write(func(w io.Writer) error {
		return f.Write(w)
	})
}

func xlsxCell(v interface{}) interface{} {
	switch v.(type) {
	case nil:
		return nil
	case string, bool, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	default:
		return formatCell(v)
	}
}

// Close is a no-op.
func (m *XLSX) Close() error { return nil }

var _ Module = (*XLSX)(nil)
