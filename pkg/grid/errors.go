package grid

import (
	"errors"
	"fmt"
)

// Descriptor errors. DescriptorError wraps exactly one of these.
var (
	// ErrInvalidField is returned when a descriptor names a field the records do not
	// have, or a field whose type cannot serve the requested filter kind.
	ErrInvalidField = errors.New("invalid field")
	// ErrMalformedDescriptor is returned when a descriptor is missing data or carries
	// values of the wrong type.
	ErrMalformedDescriptor = errors.New("malformed descriptor")
	// ErrUnknownDescriptorKind is returned when a descriptor carries an unrecognized kind tag.
	ErrUnknownDescriptorKind = errors.New("unknown descriptor kind")
)

// DescriptorError carries structured context for a rejected descriptor.
type DescriptorError struct {
	// Index is the descriptor position in the request, -1 for search terms
	Index int
	// Kind is the descriptor kind tag as received
	Kind DescriptorKind
	// FieldName is the descriptor field name
	FieldName string
	// Reason is a human-readable explanation
	Reason string
	// Err is one of ErrInvalidField, ErrMalformedDescriptor, ErrUnknownDescriptorKind
	Err error
}

// NewDescriptorError creates a DescriptorError.
func NewDescriptorError(index int, d FilterDescriptor, err error, format string, args ...any) *DescriptorError {
	return &DescriptorError{
		Index:     index,
		Kind:      d.Kind,
		FieldName: d.FieldName,
		Reason:    fmt.Sprintf(format, args...),
		Err:       err,
	}
}

func (e *DescriptorError) Error() string {
	where := "search term"
	if e.Index >= 0 {
		where = fmt.Sprintf("descriptor %d", e.Index)
	}
	if e.FieldName != "" {
		return fmt.Sprintf("%s (field %q): %v: %s", where, e.FieldName, e.Err, e.Reason)
	}
	return fmt.Sprintf("%s: %v: %s", where, e.Err, e.Reason)
}

// Unwrap returns the sentinel error for use with errors.Is.
func (e *DescriptorError) Unwrap() error {
	return e.Err
}
