// Path notation supports:
// - Dot notation for nested objects: "director.name"
// - Array indexing: "awards[0]", "movies[2].name"
// - Combined: "movies[0].cast[1].name"
//
// Paths resolve through map[string]interface{}, maps with string keys,
// structs (see structFields for naming) and slices/arrays.

package filter

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Path parsing errors
var (
	ErrEmptyPath         = errors.New("empty path")
	ErrInvalidArrayIndex = errors.New("invalid array index in path")
)

// IsNestedPath checks if a path contains dot notation or array indexing.
// Returns true for paths like "director.name", "awards[0]".
// Returns false for simple field names like "name", "year".
func IsNestedPath(path string) bool {
	return strings.ContainsAny(path, ".[")
}

// RootField returns the first segment of a path without any index,
// e.g. "movies" for "movies[0].name".
func RootField(path string) string {
	if i := strings.IndexAny(path, ".["); i >= 0 {
		return path[:i]
	}
	return path
}

// ValidatePath checks that every segment of a path is well formed.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	for _, part := range strings.Split(path, ".") {
		key, _, _, err := ParsePathPart(part)
		if err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("%w: empty segment in %q", ErrEmptyPath, path)
		}
	}
	return nil
}

// GetNestedValue extracts a value from a record using dot notation.
// Returns the value and a boolean indicating whether the path was found.
func GetNestedValue(obj interface{}, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}
	current := obj
	for _, part := range strings.Split(path, ".") {
		var ok bool
		current, ok = navigateStep(current, part)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// navigateStep advances one step through a path segment (e.g. "key" or "items[0]").
func navigateStep(current interface{}, part string) (next interface{}, ok bool) {
	key, arrayIdx, hasIndex, err := ParsePathPart(part)
	if err != nil {
		return nil, false
	}
	next, ok = fieldOf(current, key)
	if !ok {
		return nil, false
	}
	if hasIndex {
		next, ok = elementAt(next, arrayIdx)
	}
	return next, ok
}

// fieldOf resolves a single named field on a map or struct.
func fieldOf(current interface{}, key string) (interface{}, bool) {
	if m, ok := current.(map[string]interface{}); ok {
		val, found := m[key]
		return val, found
	}

	rv := indirect(reflect.ValueOf(current))
	switch rv.Kind() {
	case reflect.Struct:
		sf, ok := structFields(rv.Type())[key]
		if !ok {
			return nil, false
		}
		fv, err := rv.FieldByIndexErr(sf.index)
		if err != nil {
			return nil, false
		}
		return fv.Interface(), true
	case reflect.Map:
		keyType := rv.Type().Key()
		if keyType.Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(keyType))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	default:
		return nil, false
	}
}

func elementAt(current interface{}, index int) (interface{}, bool) {
	if arr, ok := current.([]interface{}); ok {
		if index < 0 || index >= len(arr) {
			return nil, false
		}
		return arr[index], true
	}
	rv := indirect(reflect.ValueOf(current))
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if index < 0 || index >= rv.Len() {
		return nil, false
	}
	return rv.Index(index).Interface(), true
}

// indirect follows pointers and interfaces; a nil pointer yields an invalid Value.
func indirect(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

// ParsePathPart parses a path segment and extracts the key and optional array index.
// For "items[0]" returns ("items", 0, true, nil)
// For "name" returns ("name", -1, false, nil)
func ParsePathPart(part string) (key string, index int, hasIndex bool, err error) {
	idx := strings.Index(part, "[")
	if idx == -1 {
		return part, -1, false, nil
	}
	endIdx := strings.Index(part, "]")
	if endIdx == -1 || endIdx < idx+1 {
		return "", -1, false, fmt.Errorf("%w: %q", ErrInvalidArrayIndex, part)
	}
	if endIdx != len(part)-1 {
		return "", -1, false, fmt.Errorf("%w: %q", ErrInvalidArrayIndex, part)
	}
	arrayIndex, parseErr := strconv.Atoi(part[idx+1 : endIdx])
	if parseErr != nil || arrayIndex < 0 {
		return "", -1, false, fmt.Errorf("%w: %q", ErrInvalidArrayIndex, part)
	}
	return part[:idx], arrayIndex, true, nil
}
