package output

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/canectors/gridfilter/pkg/grid"
)

// Table renders records as an aligned text grid.
type Table struct {
	dest    destination
	columns []string
}

// NewTableFromConfig creates a table output. 'columns' selects and orders
// the columns; nested paths such as "director.name" are allowed.
func NewTableFromConfig(cfg *grid.ModuleConfig, console io.Writer) (*Table, error) {
	columns, err := stringsOption(cfg, "columns")
	if err != nil {
		return nil, err
	}
	return &Table{dest: newDestination(cfg, console), columns: columns}, nil
}

// Send writes a header, a separator, one line per record and a count.
func (m *Table) Send(ctx context.Context, records []grid.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	columns := Columns(records, m.columns)

	err := m.dest.write(func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if len(columns) > 0 {
			fmt.Fprintln(tw, strings.Join(columns, "\t"))
			rule := make([]string, len(columns))
			for i, c := range columns {
				rule[i] = strings.Repeat("-", len(c))
			}
			fmt.Fprintln(tw, strings.Join(rule, "\t"))
		}
		cells := make([]string, len(columns))
		for _, record := range records {
			for i, c := range columns {
				cells[i] = tableCell(cellValue(record, c))
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "(%d records)\n", len(records))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("writing table to %s: %w", m.dest, err)
	}
	return len(records), nil
}

// Close is a no-op.
func (m *Table) Close() error { return nil }

// tableCell quotes cells holding tabs or line breaks so each record stays
// on one row.
func tableCell(v interface{}) string {
	cell := formatCell(v)
	if strings.ContainsAny(cell, "\t\n\r\v\f") {
		return strconv.Quote(cell)
	}
	return cell
}

var _ Module = (*Table)(nil)
