// Package factory builds filters from descriptors and source/output
// modules from their configuration.
//
// Module types are looked up in the registry; see internal/registry to add
// a new one. Descriptors are checked against the record schema before any
// filter is built.
package factory

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/canectors/gridfilter/internal/logger"
	"github.com/canectors/gridfilter/internal/modules/filter"
	"github.com/canectors/gridfilter/pkg/grid"
)

// Options controls descriptor translation.
type Options struct {
	// Permissive builds a values-set filter for descriptors with an
	// unrecognized kind tag instead of rejecting them.
	Permissive bool
}

// CreateFilters translates descriptors into filters, preserving order.
// Translation stops at the first rejected descriptor; no partial list is returned.
func CreateFilters(descs []grid.FilterDescriptor, schema grid.Schema, opts Options) ([]filter.Filter, error) {
	filters := make([]filter.Filter, 0, len(descs))
	for i, d := range descs {
		f, err := CreateFilter(i, d, schema, opts)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// CreateSearchFilter builds the equality filter used for a search term.
func CreateSearchFilter(value interface{}, fieldName string, schema grid.Schema) (filter.Filter, error) {
	return createEquality(-1, grid.Equality(fieldName, value), schema)
}

// CreateFilter translates a single descriptor. index is the descriptor
// position reported in errors.
func CreateFilter(index int, d grid.FilterDescriptor, schema grid.Schema, opts Options) (filter.Filter, error) {
	switch canonicalKind(d.Kind) {
	case grid.KindEquality:
		return createEquality(index, d, schema)
	case grid.KindRange:
		return createRange(index, d, schema)
	case grid.KindValuesSet:
		return createValuesSet(index, d, schema)
	}

	if !opts.Permissive {
		return filter.Filter{}, grid.NewDescriptorError(index, d, grid.ErrUnknownDescriptorKind,
			"kind %q is not one of %q, %q or untagged", d.Kind, grid.KindEquality, grid.KindRange)
	}
	logger.Warn("unrecognized descriptor kind, using values set",
		slog.Int("descriptor_index", index),
		slog.String("kind", string(d.Kind)),
		slog.String("field", d.FieldName),
	)
	return createValuesSet(index, d, schema)
}

func canonicalKind(kind grid.DescriptorKind) grid.DescriptorKind {
	switch kind {
	case grid.LegacyEqualityTag:
		return grid.KindEquality
	case grid.LegacyRangeTag:
		return grid.KindRange
	default:
		return kind
	}
}

func createEquality(index int, d grid.FilterDescriptor, schema grid.Schema) (filter.Filter, error) {
	fieldType, err := checkField(index, d, schema)
	if err != nil {
		return filter.Filter{}, err
	}
	if fieldType == grid.FieldOther {
		return filter.Filter{}, grid.NewDescriptorError(index, d, grid.ErrInvalidField,
			"field does not hold comparable values")
	}
	if d.Value == nil {
		return filter.Filter{}, grid.NewDescriptorError(index, d, grid.ErrMalformedDescriptor, "'value' is required")
	}
	if err := checkValue(index, d, fieldType, d.Value, "value"); err != nil {
		return filter.Filter{}, err
	}

	f, err := filter.NewEquality(d.FieldName, d.Value)
	if err != nil {
		return filter.Filter{}, constructionError(index, d, err)
	}
	return f, nil
}

func createRange(index int, d grid.FilterDescriptor, schema grid.Schema) (filter.Filter, error) {
	fieldType, err := checkField(index, d, schema)
	if err != nil {
		return filter.Filter{}, err
	}
	switch fieldType {
	case grid.FieldNumber, grid.FieldMixed, grid.FieldAny:
	default:
		return filter.Filter{}, grid.NewDescriptorError(index, d, grid.ErrInvalidField,
			"range requires a numeric field, field holds %s values", fieldType)
	}

	if d.Value == nil || d.ValueTo == nil {
		return filter.Filter{}, grid.NewDescriptorError(index, d, grid.ErrMalformedDescriptor,
			"range requires both 'value' and 'valueTo'")
	}
	low, ok := filter.ToNumber(d.Value)
	if !ok {
		return filter.Filter{}, grid.NewDescriptorError(index, d, grid.ErrMalformedDescriptor,
			"'value' must be a number, got %T", d.Value)
	}
	high, ok := filter.ToNumber(d.ValueTo)
	if !ok {
		return filter.Filter{}, grid.NewDescriptorError(index, d, grid.ErrMalformedDescriptor,
			"'valueTo' must be a number, got %T", d.ValueTo)
	}

	f, err := filter.NewRange(d.FieldName, low, high)
	if err != nil {
		return filter.Filter{}, constructionError(index, d, err)
	}
	return f, nil
}

func createValuesSet(index int, d grid.FilterDescriptor, schema grid.Schema) (filter.Filter, error) {
	fieldType, err := checkField(index, d, schema)
	if err != nil {
		return filter.Filter{}, err
	}
	if fieldType == grid.FieldOther {
		return filter.Filter{}, grid.NewDescriptorError(index, d, grid.ErrInvalidField,
			"field does not hold comparable values")
	}
	if d.Values == nil {
		return filter.Filter{}, grid.NewDescriptorError(index, d, grid.ErrMalformedDescriptor, "'values' is required")
	}
	for i, v := range d.Values {
		if err := checkValue(index, d, fieldType, v, fmt.Sprintf("values[%d]", i)); err != nil {
			return filter.Filter{}, err
		}
	}

	f, err := filter.NewValuesSet(d.FieldName, d.Values)
	if err != nil {
		return filter.Filter{}, constructionError(index, d, err)
	}
	return f, nil
}

// checkField resolves the declared type of the descriptor field.
// An empty schema accepts every field. Nested paths are checked on their root only.
func checkField(index int, d grid.FilterDescriptor, schema grid.Schema) (grid.FieldType, error) {
	if err := filter.ValidatePath(d.FieldName); err != nil {
		if errors.Is(err, filter.ErrEmptyPath) && d.FieldName == "" {
			return grid.FieldAny, grid.NewDescriptorError(index, d, grid.ErrMalformedDescriptor, "'fieldName' is required")
		}
		return grid.FieldAny, grid.NewDescriptorError(index, d, grid.ErrInvalidField, "%v", err)
	}
	if len(schema) == 0 {
		return grid.FieldAny, nil
	}

	root := filter.RootField(d.FieldName)
	fieldType, ok := schema[root]
	if !ok {
		return grid.FieldAny, grid.NewDescriptorError(index, d, grid.ErrInvalidField, "records have no field %q", root)
	}
	if filter.IsNestedPath(d.FieldName) {
		return grid.FieldAny, nil
	}
	return fieldType, nil
}

// checkValue rejects values whose type cannot match the field.
func checkValue(index int, d grid.FilterDescriptor, fieldType grid.FieldType, v interface{}, what string) error {
	valueType := filter.ValueType(v)
	if valueType == grid.FieldOther || valueType == grid.FieldAny {
		return grid.NewDescriptorError(index, d, grid.ErrMalformedDescriptor,
			"%s must be a string, number or bool, got %T", what, v)
	}
	switch fieldType {
	case grid.FieldString, grid.FieldNumber, grid.FieldBool:
		if valueType != fieldType {
			return grid.NewDescriptorError(index, d, grid.ErrMalformedDescriptor,
				"%s is a %s but the field holds %s values", what, valueType, fieldType)
		}
	}
	return nil
}

func constructionError(index int, d grid.FilterDescriptor, err error) error {
	return grid.NewDescriptorError(index, d, grid.ErrMalformedDescriptor, "%v", err)
}
