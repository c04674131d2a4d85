// Package errhandling provides error types and classification.
// This file defines error categories, codes, classification functions, and the
// mapping from categories to CLI exit codes.
package errhandling

import (
	"context"
	"errors"
	"fmt"

	"github.com/canectors/gridfilter/pkg/grid"
)

// ErrorCategory represents the type/category of an error.
type ErrorCategory string

// Error categories for classification.
const (
	// CategoryDescriptor represents rejected search terms and filter descriptors.
	// Descriptor errors are caller input errors and fatal.
	CategoryDescriptor ErrorCategory = "descriptor"

	// CategoryInput represents failures while loading records.
	CategoryInput ErrorCategory = "input"

	// CategoryOutput represents failures while writing the result.
	CategoryOutput ErrorCategory = "output"

	// CategoryConfig represents invalid view files or settings.
	// Config errors are fatal.
	CategoryConfig ErrorCategory = "config"

	// CategoryUnknown represents unclassified errors.
	CategoryUnknown ErrorCategory = "unknown"
)

// Error codes reported in logs and execution results.
const (
	CodeInvalidField          = "INVALID_FIELD"
	CodeMalformedDescriptor   = "MALFORMED_DESCRIPTOR"
	CodeUnknownDescriptorKind = "UNKNOWN_DESCRIPTOR_KIND"
	CodeInputFailed           = "INPUT_FAILED"
	CodeOutputFailed          = "OUTPUT_FAILED"
	CodeInvalidConfig         = "INVALID_CONFIG"
	CodeCanceled              = "CANCELED"
	CodeUnknown               = "UNKNOWN"
)

// Exit codes used by the CLI.
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitParseError      = 2
	ExitRuntimeError    = 3
)

// ClassifiedError wraps an error with classification metadata.
type ClassifiedError struct {
	// Category is the error classification category.
	Category ErrorCategory

	// Code is the stable error code.
	Code string

	// Message is a human-readable error message.
	Message string

	// OriginalErr is the underlying error that was classified.
	OriginalErr error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.OriginalErr != nil && e.Message != e.OriginalErr.Error() {
		return fmt.Sprintf("%s error: %s: %v", e.Category, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("%s error: %s", e.Category, e.Message)
}

// Unwrap returns the original error for use with errors.Is and errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.OriginalErr
}

// ClassifyError classifies any error into a ClassifiedError.
// Already classified errors are returned unchanged; descriptor errors map to
// their code; everything else is CategoryUnknown.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return &ClassifiedError{
			Category: CategoryUnknown,
			Code:     CodeUnknown,
			Message:  "nil error",
		}
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if code, ok := descriptorCode(err); ok {
		return &ClassifiedError{
			Category:    CategoryDescriptor,
			Code:        code,
			Message:     err.Error(),
			OriginalErr: err,
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ClassifiedError{
			Category:    CategoryUnknown,
			Code:        CodeCanceled,
			Message:     err.Error(),
			OriginalErr: err,
		}
	}

	return &ClassifiedError{
		Category:    CategoryUnknown,
		Code:        CodeUnknown,
		Message:     err.Error(),
		OriginalErr: err,
	}
}

func descriptorCode(err error) (string, bool) {
	switch {
	case errors.Is(err, grid.ErrInvalidField):
		return CodeInvalidField, true
	case errors.Is(err, grid.ErrMalformedDescriptor):
		return CodeMalformedDescriptor, true
	case errors.Is(err, grid.ErrUnknownDescriptorKind):
		return CodeUnknownDescriptorKind, true
	default:
		return "", false
	}
}

// IsFatal returns true if the error is caused by caller input and running
// again unchanged cannot succeed.
// Fatal categories: Descriptor, Config.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	switch GetErrorCategory(err) {
	case CategoryDescriptor, CategoryConfig:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the error category for a given error.
// Returns CategoryUnknown for nil errors.
func GetErrorCategory(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}
	return ClassifyError(err).Category
}

// ErrorCode returns the code for a given error, or an empty string for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	return ClassifyError(err).Code
}

// ExitCode maps an error to the CLI exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch GetErrorCategory(err) {
	case CategoryConfig:
		return ExitParseError
	case CategoryDescriptor:
		return ExitValidationError
	default:
		return ExitRuntimeError
	}
}

// NewConfigError creates a ClassifiedError for invalid view files or settings.
func NewConfigError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryConfig,
		Code:        CodeInvalidConfig,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewInputError creates a ClassifiedError for record loading failures.
func NewInputError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryInput,
		Code:        CodeInputFailed,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewOutputError creates a ClassifiedError for result writing failures.
func NewOutputError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryOutput,
		Code:        CodeOutputFailed,
		Message:     message,
		OriginalErr: originalErr,
	}
}
