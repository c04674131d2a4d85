package grid

import (
	"fmt"
	"reflect"
)

// ParseDescriptor converts a loosely-typed descriptor (as decoded from JSON or
// YAML) into a FilterDescriptor. It only checks the shape of the input; kind
// and value validation happens when the descriptor is turned into a filter.
//
// Accepted keys: kind (alias type), fieldName, value (alias filter),
// valueTo (alias filterTo), values. The legacy tags equalityFilter and
// rangeFilter are mapped to their canonical kinds.
func ParseDescriptor(index int, raw interface{}) (FilterDescriptor, error) {
	var d FilterDescriptor

	m, ok := raw.(map[string]interface{})
	if !ok {
		return d, NewDescriptorError(index, d, ErrMalformedDescriptor, "expected an object, got %T", raw)
	}

	kind, err := parseKind(m)
	if err != nil {
		return d, NewDescriptorError(index, d, ErrMalformedDescriptor, "%v", err)
	}
	d.Kind = kind

	fieldName, ok := m["fieldName"].(string)
	if !ok || fieldName == "" {
		return d, NewDescriptorError(index, d, ErrMalformedDescriptor, "'fieldName' is required and must be a non-empty string")
	}
	d.FieldName = fieldName

	d.Value = firstPresent(m, "value", "filter")
	d.ValueTo = firstPresent(m, "valueTo", "filterTo")

	if rawValues, has := m["values"]; has {
		values, ok := toInterfaceSlice(rawValues)
		if !ok {
			return d, NewDescriptorError(index, d, ErrMalformedDescriptor, "'values' must be a list, got %T", rawValues)
		}
		d.Values = values
	}

	return d, nil
}

// ParseDescriptors converts a loosely-typed descriptor list. A nil input yields
// an empty list.
func ParseDescriptors(raw interface{}) ([]FilterDescriptor, error) {
	if raw == nil {
		return []FilterDescriptor{}, nil
	}
	items, ok := toInterfaceSlice(raw)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list of descriptors, got %T", ErrMalformedDescriptor, raw)
	}
	descriptors := make([]FilterDescriptor, 0, len(items))
	for i, item := range items {
		d, err := ParseDescriptor(i, item)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

func parseKind(m map[string]interface{}) (DescriptorKind, error) {
	rawKind := firstPresent(m, "kind", "type")
	if rawKind == nil {
		return KindValuesSet, nil
	}
	tag, ok := rawKind.(string)
	if !ok {
		return KindValuesSet, fmt.Errorf("'kind' must be a string, got %T", rawKind)
	}
	switch tag {
	case LegacyEqualityTag:
		return KindEquality, nil
	case LegacyRangeTag:
		return KindRange, nil
	default:
		return DescriptorKind(tag), nil
	}
}

func firstPresent(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

// toInterfaceSlice accepts []interface{} as well as typed slices such as []string.
func toInterfaceSlice(v interface{}) ([]interface{}, bool) {
	if s, ok := v.([]interface{}); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
