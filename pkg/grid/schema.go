package grid

import "sort"

// FieldType is the comparable type observed for a record field.
type FieldType uint8

const (
	// FieldAny means no non-nil value has been observed.
	FieldAny FieldType = iota
	FieldString
	FieldNumber
	FieldBool
	// FieldOther is a non-scalar field (list, object, ...).
	FieldOther
	// FieldMixed means records disagree on the field type.
	FieldMixed
)

// String returns the string representation of the FieldType.
func (t FieldType) String() string {
	switch t {
	case FieldAny:
		return "any"
	case FieldString:
		return "string"
	case FieldNumber:
		return "number"
	case FieldBool:
		return "bool"
	case FieldOther:
		return "other"
	case FieldMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// Merge combines two observations of the same field.
func (t FieldType) Merge(other FieldType) FieldType {
	switch {
	case t == other:
		return t
	case t == FieldAny:
		return other
	case other == FieldAny:
		return t
	default:
		return FieldMixed
	}
}

// Schema maps top-level field names to their observed type.
// An empty schema disables field validation.
type Schema map[string]FieldType

// Has reports whether the schema knows the field.
func (s Schema) Has(field string) bool {
	_, ok := s[field]
	return ok
}

// Fields returns the field names in sorted order.
func (s Schema) Fields() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
