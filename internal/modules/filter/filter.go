// Package filter provides the predicate filters applied by entity lists.
// A Filter is a closed variant over three kinds (equality, range, values set)
// with a single Apply dispatching on the kind.
package filter

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/canectors/gridfilter/pkg/grid"
)

// Construction errors.
var (
	ErrEmptyField   = errors.New("field name cannot be empty")
	ErrNotScalar    = errors.New("value must be a string, number or bool")
	ErrInvalidBound = errors.New("range bound must be a number")
)

// Kind identifies a filter variant.
type Kind uint8

// Filter kinds.
const (
	KindEquality Kind = iota + 1
	KindRange
	KindValuesSet
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindEquality:
		return "equality"
	case KindRange:
		return "range"
	case KindValuesSet:
		return "valuesSet"
	default:
		return "unknown"
	}
}

// Filter is a single predicate over one record field.
// The zero value matches nothing.
type Filter struct {
	kind  Kind
	field string

	// equality
	value scalar

	// range, inclusive on both ends
	low, high float64

	// values set
	values []scalar
}

// NewEquality creates a filter keeping records whose field strictly equals value.
func NewEquality(field string, value interface{}) (Filter, error) {
	if field == "" {
		return Filter{}, ErrEmptyField
	}
	s, ok := toScalar(value)
	if !ok {
		return Filter{}, fmt.Errorf("%w, got %T", ErrNotScalar, value)
	}
	return Filter{kind: KindEquality, field: field, value: s}, nil
}

// NewRange creates a filter keeping records whose numeric field lies in [low, high].
// A range with low > high is valid and matches nothing.
func NewRange(field string, low, high float64) (Filter, error) {
	if field == "" {
		return Filter{}, ErrEmptyField
	}
	if math.IsNaN(low) || math.IsNaN(high) {
		return Filter{}, ErrInvalidBound
	}
	return Filter{kind: KindRange, field: field, low: low, high: high}, nil
}

// NewValuesSet creates a filter keeping records whose field is one of values.
func NewValuesSet(field string, values []interface{}) (Filter, error) {
	if field == "" {
		return Filter{}, ErrEmptyField
	}
	set := make([]scalar, 0, len(values))
	for i, v := range values {
		s, ok := toScalar(v)
		if !ok {
			return Filter{}, fmt.Errorf("values[%d]: %w, got %T", i, ErrNotScalar, v)
		}
		set = append(set, s)
	}
	return Filter{kind: KindValuesSet, field: field, values: set}, nil
}

// Kind returns the filter variant.
func (f Filter) Kind() Kind {
	return f.kind
}

// Field returns the target field name.
func (f Filter) Field() string {
	return f.field
}

// Matches reports whether a single record satisfies the filter.
// Absent fields and non-scalar values never match.
func (f Filter) Matches(record interface{}) bool {
	raw, ok := Lookup(record, f.field)
	if !ok {
		return false
	}
	v, ok := toScalar(raw)
	if !ok {
		return false
	}

	switch f.kind {
	case KindEquality:
		return v.equal(f.value)
	case KindRange:
		n, ok := v.number()
		return ok && f.low <= n && n <= f.high
	case KindValuesSet:
		for _, candidate := range f.values {
			if v.equal(candidate) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Apply returns a new slice holding the records that satisfy f, in input order.
// The input slice is not modified.
func Apply[T any](f Filter, records []T) []T {
	result := make([]T, 0, len(records))
	for _, record := range records {
		if f.Matches(record) {
			result = append(result, record)
		}
	}
	return result
}

// Fold applies filters in order, each one to the output of the previous one.
// With no filters it returns a copy of records.
func Fold[T any](records []T, filters []Filter) []T {
	if len(filters) == 0 {
		return slices.Clone(records)
	}
	result := records
	for _, f := range filters {
		result = Apply(f, result)
	}
	return result
}

// Descriptor returns the caller-facing description of the filter.
func (f Filter) Descriptor() grid.FilterDescriptor {
	switch f.kind {
	case KindEquality:
		return grid.Equality(f.field, f.value.raw)
	case KindRange:
		return grid.Range(f.field, f.low, f.high)
	case KindValuesSet:
		values := make([]interface{}, len(f.values))
		for i, v := range f.values {
			values[i] = v.raw
		}
		return grid.ValuesSet(f.field, values...)
	default:
		return grid.FilterDescriptor{}
	}
}

// String renders the filter for logs, e.g. `rate in [6, 10]`.
func (f Filter) String() string {
	switch f.kind {
	case KindEquality:
		return fmt.Sprintf("%s == %s", f.field, f.value)
	case KindRange:
		return fmt.Sprintf("%s in [%s, %s]", f.field, formatFloat(f.low), formatFloat(f.high))
	case KindValuesSet:
		parts := make([]string, len(f.values))
		for i, v := range f.values {
			parts[i] = v.String()
		}
		return fmt.Sprintf("%s in {%s}", f.field, strings.Join(parts, ", "))
	default:
		return "<none>"
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
