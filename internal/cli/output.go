package cli

import (
	"fmt"
	"io"

	"github.com/canectors/gridfilter/pkg/grid"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
	DryRun  bool
}

// PrintExecutionResult displays the view execution result.
func PrintExecutionResult(w io.Writer, result *grid.ExecutionResult, err error, opts OutputOptions) {
	if result == nil {
		fmt.Fprintln(w, "✗ No execution result available")
		return
	}

	if err != nil {
		fmt.Fprintln(w, "✗ View execution failed")
		if result.Error != nil {
			if result.Error.Stage != "" {
				fmt.Fprintf(w, "  Stage: %s\n", result.Error.Stage)
			}
			if result.Error.StepIndex >= 0 {
				fmt.Fprintf(w, "  Step: %d\n", result.Error.StepIndex)
			}
			fmt.Fprintf(w, "  Code: %s\n", result.Error.Code)
			fmt.Fprintf(w, "  Error: %s\n", result.Error.Message)
		}
		return
	}

	if opts.Quiet {
		return
	}

	fmt.Fprintln(w, "✓ View executed successfully")
	fmt.Fprintf(w, "  Records loaded: %d\n", result.RecordsLoaded)
	fmt.Fprintf(w, "  Records matched: %d\n", result.RecordsMatched)
	if opts.DryRun {
		fmt.Fprintln(w, "  Output skipped (dry-run mode)")
	} else {
		fmt.Fprintf(w, "  Records written: %d\n", result.RecordsWritten)
	}

	if opts.Verbose {
		fmt.Fprintf(w, "  Run ID: %s\n", result.RunID)
		fmt.Fprintf(w, "  Duration: %v\n", result.CompletedAt.Sub(result.StartedAt))
		for _, step := range result.Steps {
			fmt.Fprintf(w, "  Step %d (%s): %d records, %d active filters\n",
				step.Index, step.Kind, step.Records, step.ActiveFilters)
		}
	}
}

// PrintViewSummary prints the view name, source, steps and output.
func PrintViewSummary(w io.Writer, view *grid.View) {
	if view == nil {
		return
	}

	fmt.Fprintf(w, "  View: %s\n", view.Name)
	if view.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", view.Description)
	}
	if view.Source != nil {
		fmt.Fprintf(w, "  Source: %s\n", view.Source.Type)
	}
	for i, step := range view.Steps {
		switch step.Kind {
		case grid.StepSearch:
			field := step.Search.FieldName
			if field == "" {
				field = "(search field)"
			}
			fmt.Fprintf(w, "  Step %d: search %s = %v\n", i, field, step.Search.Value)
		case grid.StepFilters:
			if len(step.Filters) == 0 {
				fmt.Fprintf(w, "  Step %d: reset\n", i)
			} else {
				fmt.Fprintf(w, "  Step %d: %d filter(s)\n", i, len(step.Filters))
			}
		}
	}
	if view.Output != nil {
		fmt.Fprintf(w, "  Output: %s\n", view.Output.Type)
	}
}
