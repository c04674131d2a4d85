// Package main provides the CLI entry point for gridfilter.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/canectors/gridfilter/internal/cli"
	"github.com/canectors/gridfilter/internal/config"
	"github.com/canectors/gridfilter/internal/errhandling"
	"github.com/canectors/gridfilter/internal/pathutil"
	"github.com/canectors/gridfilter/internal/runtime"
	"github.com/canectors/gridfilter/internal/settings"
	"github.com/canectors/gridfilter/pkg/grid"
)

var (
	// Build information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// exitError carries the process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// app holds the flag values and writers of one CLI invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// Global flags
	configFile string
	verbose    bool
	quiet      bool

	// Run command flags
	dryRun     bool
	outputPath string

	settings *settings.Settings
}

// execute runs the CLI with args and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return errhandling.ExitSuccess
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return errhandling.ExitRuntimeError
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gridfilter",
		Short: "gridfilter - Saved filter views over record lists",
		Long: `gridfilter replays saved grid views over record lists.

A view names a record source (JSON, YAML or JSONL files, or inline records),
an ordered list of search and filter steps, and an output (json, yaml, table
or xlsx). Each step narrows the list the way a data grid does when a user
types a search term or picks filter values.

Examples:
  # Validate a view file
  gridfilter validate view.yaml

  # Run a view and print the result as a table
  gridfilter run view.yaml

  # Run a view and write JSON to a file
  gridfilter run --output-format json --output hits.json view.yaml`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.configure,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Settings file (default: gridfilter.yaml in . or $HOME/.config/gridfilter)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "Suppress non-error output")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "json", "Log format (json, human)")
	flags.String("log-file", "", "Also write logs to this file")

	root.AddCommand(a.newValidateCmd(), a.newRunCmd(), a.newVersionCmd())
	return root
}

// configure loads settings and configures the logger before any command.
func (a *app) configure(cmd *cobra.Command, _ []string) error {
	s, err := settings.Load(a.configFile, cmd.Flags())
	if err != nil {
		cli.PrintError(a.stderr, err, a.verbose)
		return &exitError{code: errhandling.ExitCode(err), err: err}
	}
	if a.verbose {
		s.LogLevel = "debug"
	} else if a.quiet {
		s.LogLevel = "error"
	}
	if err := s.ConfigureLogger(); err != nil {
		cli.PrintError(a.stderr, err, a.verbose)
		return &exitError{code: errhandling.ExitCode(err), err: err}
	}
	a.settings = s
	return nil
}

func (a *app) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <view-file>",
		Short: "Validate a view file",
		Long: `Validate a view file against the view schema.

Supports both JSON and YAML formats. The format is auto-detected
based on file extension (.json, .yaml, .yml) or content.

Exit codes:
  0 - View is valid
  1 - Validation errors (schema violations)
  2 - Parse errors (invalid JSON/YAML syntax)`,
		Args: cobra.ExactArgs(1),
		RunE: a.runValidate,
	}
}

func (a *app) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <view-file>",
		Short: "Run a view",
		Long: `Run a view: load its records, replay its steps and write the result.

The view file is validated first; an invalid view is not executed.
When the view has no output, records are printed to stdout using
--output-format. Status messages go to stderr.

Exit codes:
  0 - View executed successfully
  1 - Validation errors or rejected filter descriptors
  2 - Parse errors or invalid settings
  3 - Runtime errors (reading records, writing output)`,
		Args: cobra.ExactArgs(1),
		RunE: a.runView,
	}

	flags := cmd.Flags()
	flags.BoolVar(&a.dryRun, "dry-run", false, "Replay the steps without writing output")
	flags.StringVarP(&a.outputPath, "output", "o", "", "Write records to this file instead of the view's output")
	flags.String("output-format", "table", "Output format when the view has none (json, yaml, table, xlsx)")
	flags.String("search-field", grid.DefaultSearchField, "Search field when the view sets none")
	flags.Bool("permissive-descriptors", false, "Treat unknown descriptor kinds as values-set filters")
	return cmd
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version, commit hash, and build date information.",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "Version: %s\n", version)
			fmt.Fprintf(a.stdout, "Commit: %s\n", commit)
			fmt.Fprintf(a.stdout, "Build Date: %s\n", buildDate)
		},
	}
}

func (a *app) runValidate(_ *cobra.Command, args []string) error {
	viewPath := args[0]

	if !a.quiet {
		fmt.Fprintf(a.stdout, "Validating view: %s\n", viewPath)
	}

	view, result, err := config.NewLoader("").LoadResult(viewPath)
	if err != nil {
		return a.loadFailure(result, err)
	}

	if !a.quiet {
		fmt.Fprintf(a.stdout, "✓ View is valid (format: %s)\n", result.Format)
		if a.verbose {
			cli.PrintViewSummary(a.stdout, view)
		}
	}
	return nil
}

func (a *app) runView(_ *cobra.Command, args []string) error {
	viewPath := args[0]

	if !a.quiet {
		fmt.Fprintf(a.stderr, "Loading view: %s\n", viewPath)
	}

	view, result, err := config.NewLoader("").LoadResult(viewPath)
	if err != nil {
		return a.loadFailure(result, err)
	}
	if a.verbose {
		cli.PrintViewSummary(a.stderr, view)
	}

	if err := a.applyOutputOverrides(view); err != nil {
		cli.PrintError(a.stderr, err, a.verbose)
		return &exitError{code: errhandling.ExitCode(err), err: err}
	}

	opts := runtime.Options{
		DryRun:      a.dryRun,
		SearchField: a.settings.SearchField,
		Permissive:  a.settings.PermissiveDescriptors,
	}
	executor, err := runtime.NewExecutorForView(view, a.stdout, opts)
	if err != nil {
		cli.PrintError(a.stderr, err, a.verbose)
		return &exitError{code: errhandling.ExitCode(err), err: err}
	}

	if !a.quiet {
		if a.dryRun {
			fmt.Fprintln(a.stderr, "Executing view (dry-run mode - output will not be written)...")
		} else {
			fmt.Fprintln(a.stderr, "Executing view...")
		}
	}

	execResult, err := executor.Execute(view)
	cli.PrintExecutionResult(a.stderr, execResult, err, cli.OutputOptions{
		Verbose: a.verbose,
		Quiet:   a.quiet,
		DryRun:  a.dryRun,
	})
	if err != nil {
		return &exitError{code: errhandling.ExitCode(err), err: err}
	}
	return nil
}

// applyOutputOverrides fills in a missing output from settings and applies
// --output. --output replaces the view's destination but keeps its type; it
// is checked like view paths and resolved against the working directory.
func (a *app) applyOutputOverrides(view *grid.View) error {
	if view.Output == nil {
		view.Output = &grid.ModuleConfig{
			Type:   a.settings.OutputFormat,
			Config: map[string]interface{}{},
		}
	}
	if a.outputPath == "" {
		return nil
	}
	path, err := pathutil.Resolve("", a.outputPath)
	if err != nil {
		return errhandling.NewConfigError("invalid --output path", err)
	}
	if view.Output.Config == nil {
		view.Output.Config = map[string]interface{}{}
	}
	view.Output.Config["path"] = path
	return nil
}

// loadFailure prints why a view file could not be loaded. Schema violations
// exit with ExitValidationError, everything else with ExitParseError.
func (a *app) loadFailure(result *config.Result, err error) error {
	switch {
	case result != nil && len(result.ParseErrors) > 0:
		cli.PrintParseErrors(a.stderr, result.ParseErrors, a.verbose)
		return &exitError{code: errhandling.ExitParseError, err: err}
	case result != nil && len(result.ValidationErrors) > 0:
		cli.PrintValidationErrors(a.stderr, result.ValidationErrors, a.verbose, a.quiet)
		return &exitError{code: errhandling.ExitValidationError, err: err}
	default:
		cli.PrintError(a.stderr, err, a.verbose)
		return &exitError{code: errhandling.ExitCode(err), err: err}
	}
}
