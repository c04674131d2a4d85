package filter

import (
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/canectors/gridfilter/pkg/grid"
)

// Lookup resolves a field (or nested path) on a record.
// The boolean is false when the field does not exist.
func Lookup(record interface{}, field string) (interface{}, bool) {
	if !IsNestedPath(field) {
		return fieldOf(record, field)
	}
	return GetNestedValue(record, field)
}

type structField struct {
	index []int
	typ   reflect.Type
}

// structFieldCache maps reflect.Type to map[string]structField.
var structFieldCache sync.Map

// structFields returns the addressable field names of a struct type.
// A field is named by its `grid` tag, else its `json` tag, else its Go name;
// untagged fields are also reachable with a lower-case first letter
// ("Year" and "year"). Fields tagged "-" are skipped.
func structFields(t reflect.Type) map[string]structField {
	if cached, ok := structFieldCache.Load(t); ok {
		return cached.(map[string]structField)
	}

	fields := make(map[string]structField)
	aliases := make(map[string]structField)
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		sf := structField{index: f.Index, typ: f.Type}

		name, tagged := tagName(f)
		if name == "-" {
			continue
		}
		if _, exists := fields[name]; exists && len(f.Index) > 1 {
			// shallower field wins
			continue
		}
		fields[name] = sf
		if !tagged {
			aliases[lowerFirst(name)] = sf
		}
	}
	for alias, sf := range aliases {
		if _, exists := fields[alias]; !exists {
			fields[alias] = sf
		}
	}

	actual, _ := structFieldCache.LoadOrStore(t, fields)
	return actual.(map[string]structField)
}

func tagName(f reflect.StructField) (string, bool) {
	for _, key := range []string{"grid", "json"} {
		if tag, ok := f.Tag.Lookup(key); ok {
			name, _, _ := strings.Cut(tag, ",")
			if name != "" {
				return name, true
			}
		}
	}
	return f.Name, false
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// DeriveSchema builds the field schema of a record list.
// Struct record types yield their declared fields even for an empty list;
// map records yield the union of their keys.
func DeriveSchema[T any](records []T) grid.Schema {
	schema := make(grid.Schema)

	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		addStructType(schema, t)
		return schema
	}

	for _, record := range records {
		observe(schema, record)
	}
	return schema
}

func observe(schema grid.Schema, record interface{}) {
	if m, ok := record.(map[string]interface{}); ok {
		for k, v := range m {
			schema[k] = schema[k].Merge(ValueType(v))
		}
		return
	}

	rv := indirect(reflect.ValueOf(record))
	switch rv.Kind() {
	case reflect.Struct:
		addStructType(schema, rv.Type())
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return
		}
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			schema[k] = schema[k].Merge(ValueType(iter.Value().Interface()))
		}
	}
}

func addStructType(schema grid.Schema, t reflect.Type) {
	for name, sf := range structFields(t) {
		schema[name] = schema[name].Merge(typeOf(sf.typ))
	}
}

func typeOf(t reflect.Type) grid.FieldType {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return grid.FieldString
	case reflect.Bool:
		return grid.FieldBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return grid.FieldNumber
	case reflect.Interface:
		return grid.FieldAny
	default:
		return grid.FieldOther
	}
}
