package runtime

import "errors"

// Execution stages reported in results and logs.
const (
	StageSource = "source"
	StageStep   = "step"
	StageOutput = "output"
)

// Execution status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Common errors
var (
	// ErrNilView is returned when the view is nil
	ErrNilView = errors.New("view is nil")

	// ErrNilInputModule is returned when the source module is nil
	ErrNilInputModule = errors.New("source module is nil")

	// ErrNilOutputModule is returned when the output module is nil outside dry-run mode
	ErrNilOutputModule = errors.New("output module is nil")

	// ErrUnknownStep is returned for a step kind other than search or filters
	ErrUnknownStep = errors.New("unknown step kind")
)
