// Package registry provides module registries for source and output modules.
//
// # Overview
//
// Modules register their constructors by type string instead of being
// selected by hard-coded switch statements, so a new record source or output
// format can be added without modifying the factory.
//
// # Adding a New Module
//
// To add a new output type (e.g., "csv"):
//
//  1. Implement output.Module
//  2. Create a constructor matching OutputConstructor
//  3. Register the constructor in an init() function
//
// Example:
//
//	func init() {
//	    registry.RegisterOutput("csv", func(cfg *grid.ModuleConfig, console io.Writer) (output.Module, error) {
//	        return NewCSV(cfg, console)
//	    })
//	}
//
// # Built-in Modules
//
// Built-in modules (file and inline sources; json, yaml, table and xlsx
// outputs) are registered at startup via init().
package registry

import (
	"io"
	"sort"
	"sync"

	"github.com/canectors/gridfilter/internal/modules/input"
	"github.com/canectors/gridfilter/internal/modules/output"
	"github.com/canectors/gridfilter/pkg/grid"
)

// InputConstructor creates a source module from configuration.
type InputConstructor func(cfg *grid.ModuleConfig) (input.Module, error)

// OutputConstructor creates an output module from configuration.
// console receives the output when the configuration names no file.
type OutputConstructor func(cfg *grid.ModuleConfig, console io.Writer) (output.Module, error)

var (
	inputMu       sync.RWMutex
	inputRegistry = make(map[string]InputConstructor)
)

var (
	outputMu       sync.RWMutex
	outputRegistry = make(map[string]OutputConstructor)
)

// RegisterInput registers a source module constructor by type string.
// Registering an existing type overwrites the previous constructor.
// Safe for concurrent use.
func RegisterInput(moduleType string, constructor InputConstructor) {
	inputMu.Lock()
	defer inputMu.Unlock()
	inputRegistry[moduleType] = constructor
}

// RegisterOutput registers an output module constructor by type string.
// Registering an existing type overwrites the previous constructor.
// Safe for concurrent use.
func RegisterOutput(moduleType string, constructor OutputConstructor) {
	outputMu.Lock()
	defer outputMu.Unlock()
	outputRegistry[moduleType] = constructor
}

// GetInputConstructor returns the registered constructor for a source type,
// or nil.
func GetInputConstructor(moduleType string) InputConstructor {
	inputMu.RLock()
	defer inputMu.RUnlock()
	return inputRegistry[moduleType]
}

// GetOutputConstructor returns the registered constructor for an output type,
// or nil.
func GetOutputConstructor(moduleType string) OutputConstructor {
	outputMu.RLock()
	defer outputMu.RUnlock()
	return outputRegistry[moduleType]
}

// ListInputTypes returns the registered source types, sorted.
func ListInputTypes() []string {
	inputMu.RLock()
	defer inputMu.RUnlock()
	return sortedKeys(inputRegistry)
}

// ListOutputTypes returns the registered output types, sorted.
func ListOutputTypes() []string {
	outputMu.RLock()
	defer outputMu.RUnlock()
	return sortedKeys(outputRegistry)
}

func sortedKeys[V any](m map[string]V) []string {
	types := make([]string, 0, len(m))
	for t := range m {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ClearRegistries removes all registered constructors.
// This is intended for testing purposes only.
func ClearRegistries() {
	inputMu.Lock()
	inputRegistry = make(map[string]InputConstructor)
	inputMu.Unlock()

	outputMu.Lock()
	outputRegistry = make(map[string]OutputConstructor)
	outputMu.Unlock()
}

// RegisterBuiltins registers the built-in modules. It runs at init and can
// be called again after ClearRegistries.
func RegisterBuiltins() {
	registerBuiltinInputModules()
	registerBuiltinOutputModules()
}
