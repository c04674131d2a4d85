package registry

import (
	"io"

	"github.com/canectors/gridfilter/internal/modules/input"
	"github.com/canectors/gridfilter/internal/modules/output"
	"github.com/canectors/gridfilter/pkg/grid"
)

func init() {
	RegisterBuiltins()
}

func registerBuiltinInputModules() {
	// file - JSON, YAML or JSONL files, optionally gzip or zstd compressed
	RegisterInput("file", func(cfg *grid.ModuleConfig) (input.Module, error) {
		m, err := input.NewFileFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	})

	// inline - records embedded in the view
	RegisterInput("inline", func(cfg *grid.ModuleConfig) (input.Module, error) {
		m, err := input.NewInlineFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	})
}

func registerBuiltinOutputModules() {
	RegisterOutput("json", func(cfg *grid.ModuleConfig, console io.Writer) (output.Module, error) {
		m, err := output.NewJSONFromConfig(cfg, console)
		if err != nil {
			return nil, err
		}
		return m, nil
	})

	RegisterOutput("yaml", func(cfg *grid.ModuleConfig, console io.Writer) (output.Module, error) {
		m, err := output.NewYAMLFromConfig(cfg, console)
		if err != nil {
			return nil, err
		}
		return m, nil
	})

	RegisterOutput("table", func(cfg *grid.ModuleConfig, console io.Writer) (output.Module, error) {
		m, err := output.NewTableFromConfig(cfg, console)
		if err != nil {
			return nil, err
		}
		return m, nil
	})

	// xlsx always writes to its 'path'
	RegisterOutput("xlsx", func(cfg *grid.ModuleConfig, _ io.Writer) (output.Module, error) {
		m, err := output.NewXLSXFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	})
}
