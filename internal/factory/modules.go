package factory

import (
	"fmt"
	"io"
	"strings"

	"github.com/canectors/gridfilter/internal/errhandling"
	"github.com/canectors/gridfilter/internal/modules/input"
	"github.com/canectors/gridfilter/internal/modules/output"
	"github.com/canectors/gridfilter/internal/registry"
	"github.com/canectors/gridfilter/pkg/grid"
)

// CreateInputModule creates a source module from configuration using the
// registry. Unregistered types and invalid configurations are config errors.
func CreateInputModule(cfg *grid.ModuleConfig) (input.Module, error) {
	if cfg == nil {
		return nil, errhandling.NewConfigError("source is required", nil)
	}

	constructor := registry.GetInputConstructor(cfg.Type)
	if constructor == nil {
		return nil, errhandling.NewConfigError(
			fmt.Sprintf("unknown source type %q (available: %s)", cfg.Type, strings.Join(registry.ListInputTypes(), ", ")), nil)
	}

	module, err := constructor(cfg)
	if err != nil {
		return nil, errhandling.NewConfigError(fmt.Sprintf("invalid %s source", cfg.Type), err)
	}
	return module, nil
}

// CreateOutputModule creates an output module from configuration using the
// registry. A nil configuration yields a nil module and no error.
func CreateOutputModule(cfg *grid.ModuleConfig, console io.Writer) (output.Module, error) {
	if cfg == nil {
		return nil, nil
	}

	constructor := registry.GetOutputConstructor(cfg.Type)
	if constructor == nil {
		return nil, errhandling.NewConfigError(
			fmt.Sprintf("unknown output type %q (available: %s)", cfg.Type, strings.Join(registry.ListOutputTypes(), ", ")), nil)
	}

	module, err := constructor(cfg, console)
	if err != nil {
		return nil, errhandling.NewConfigError(fmt.Sprintf("invalid %s output", cfg.Type), err)
	}
	return module, nil
}
