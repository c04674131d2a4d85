// Package input provides implementations for input modules.
// Input modules load the records a view filters.
package input

import (
	"context"

	"github.com/canectors/gridfilter/pkg/grid"
)

// Module represents an input module that loads records.
type Module interface {
	// Fetch loads the records.
	// The context can be used to cancel long-running reads.
	Fetch(ctx context.Context) ([]grid.Record, error)
	// Close releases any resources held by the module.
	Close() error
}
