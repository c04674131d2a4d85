// Package config parses and validates view files (JSON/YAML) and converts
// them to grid.View.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Format names.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseError type values.
const (
	ErrorTypeIO     = "io"
	ErrorTypeSyntax = "syntax"
	ErrorTypeFormat = "format"
)

// ParseError is a read or syntax error with its location, when known.
type ParseError struct {
	// Path is the view file (empty when parsed from a string)
	Path string
	// Line and Column are 1-based, 0 if unknown
	Line   int
	Column int
	// Offset is the byte offset, 0 if unknown
	Offset int64
	// Message describes the problem
	Message string
	// Type is one of ErrorTypeIO, ErrorTypeSyntax, ErrorTypeFormat
	Type string
}

// Error implements the error interface.
func (e ParseError) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&sb, ", column %d", e.Column)
		}
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// ValidationError is a schema violation at a JSON pointer location.
type ValidationError struct {
	// Path is the instance location, e.g. "/view/steps/0/search"
	Path string
	// Type is a short classification (required, type, enum, ...)
	Type string
	// Message is the validator message
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Result is the outcome of parsing and validating one view file.
type Result struct {
	// Data is the decoded document
	Data map[string]interface{}
	// ParseErrors stops validation when non-empty
	ParseErrors []ParseError
	// ValidationErrors lists every schema violation
	ValidationErrors []ValidationError
	// FilePath is empty when parsed from a string
	FilePath string
	// Format is FormatJSON or FormatYAML
	Format string
}

// IsValid returns true if no errors occurred.
func (r *Result) IsValid() bool {
	return len(r.ParseErrors) == 0 && len(r.ValidationErrors) == 0
}

// AllErrors returns parse errors followed by validation errors.
func (r *Result) AllErrors() []error {
	errs := make([]error, 0, len(r.ParseErrors)+len(r.ValidationErrors))
	for _, e := range r.ParseErrors {
		errs = append(errs, e)
	}
	for _, e := range r.ValidationErrors {
		errs = append(errs, e)
	}
	return errs
}

// Err joins every error, or returns nil for a valid result.
func (r *Result) Err() error {
	return errors.Join(r.AllErrors()...)
}
