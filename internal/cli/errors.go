// Package cli provides CLI output formatting and display functions.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/canectors/gridfilter/internal/config"
	"github.com/canectors/gridfilter/internal/errhandling"
)

// PrintParseErrors prints parse errors.
func PrintParseErrors(w io.Writer, errs []config.ParseError, verbose bool) {
	fmt.Fprintln(w, "✗ Parse errors:")
	for _, err := range errs {
		printSingleParseError(w, err, verbose)
	}
}

// printSingleParseError prints a single parse error with location information.
func printSingleParseError(w io.Writer, err config.ParseError, verbose bool) {
	location := formatErrorLocation(err.Path, err.Line, err.Column)

	if location != "" {
		fmt.Fprintf(w, "  %s: %s\n", location, err.Message)
	} else {
		fmt.Fprintf(w, "  %s\n", err.Message)
	}

	if verbose && err.Type != "" {
		fmt.Fprintf(w, "    Type: %s\n", err.Type)
	}
}

// formatErrorLocation formats the error location string (path:line:column).
func formatErrorLocation(path string, line, column int) string {
	if path == "" {
		return ""
	}

	location := path
	if line > 0 {
		location += fmt.Sprintf(":%d", line)
		if column > 0 {
			location += fmt.Sprintf(":%d", column)
		}
	}
	return location
}

// PrintValidationErrors prints schema validation errors.
func PrintValidationErrors(w io.Writer, errs []config.ValidationError, verbose, quiet bool) {
	fmt.Fprintln(w, "✗ Validation errors:")
	for _, err := range errs {
		path := err.Path
		if path == "" {
			path = "/"
		}
		if verbose {
			fmt.Fprintf(w, "  %s:\n", path)
			fmt.Fprintf(w, "    Message: %s\n", err.Message)
			if err.Type != "" {
				fmt.Fprintf(w, "    Type: %s\n", err.Type)
			}
		} else {
			fmt.Fprintf(w, "  %s: %s\n", path, truncate(err.Message, 80))
		}
	}
	if !verbose && !quiet {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Hint: Use --verbose for detailed error information")
	}
}

// PrintError prints a classified error with its code. In verbose mode the
// wrapped causes are listed too.
func PrintError(w io.Writer, err error, verbose bool) {
	if err == nil {
		return
	}
	classified := errhandling.ClassifyError(err)
	fmt.Fprintf(w, "✗ %s error [%s]\n", classified.Category, classified.Code)
	fmt.Fprintf(w, "  %s\n", err.Error())

	if verbose {
		for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
			fmt.Fprintf(w, "    caused by: %s\n", cause.Error())
		}
		if !errhandling.IsFatal(err) {
			fmt.Fprintln(w, "  The view itself is valid; running it again may succeed.")
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
