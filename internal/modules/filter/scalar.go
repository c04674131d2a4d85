package filter

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	"github.com/canectors/gridfilter/pkg/grid"
)

type scalarKind uint8

const (
	scalarInvalid scalarKind = iota
	scalarString
	scalarNumber
	scalarBool
)

// scalar is a normalized comparable value. All Go integer and float kinds
// collapse into one number kind, so 5 and 5.0 are equal but "5" is not.
type scalar struct {
	kind  scalarKind
	str   string
	b     bool
	num   float64
	i64   int64
	isInt bool
	raw   interface{}
}

func intScalar(raw interface{}, v int64) scalar {
	return scalar{kind: scalarNumber, num: float64(v), i64: v, isInt: true, raw: raw}
}

func floatScalar(raw interface{}, v float64) scalar {
	s := scalar{kind: scalarNumber, num: v, raw: raw}
	if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
		s.i64 = int64(v)
		s.isInt = true
	}
	return s
}

// toScalar normalizes v. It reports false for nil and non-scalar values.
func toScalar(v interface{}) (scalar, bool) {
	switch x := v.(type) {
	case nil:
		return scalar{}, false
	case string:
		return scalar{kind: scalarString, str: x, raw: v}, true
	case bool:
		return scalar{kind: scalarBool, b: x, raw: v}, true
	case int:
		return intScalar(v, int64(x)), true
	case int64:
		return intScalar(v, x), true
	case float64:
		return floatScalar(v, x), true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return intScalar(v, i), true
		}
		if f, err := x.Float64(); err == nil {
			return floatScalar(v, f), true
		}
		return scalar{}, false
	}

	// Remaining builtin widths and named types such as `type Genre string`.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return scalar{kind: scalarString, str: rv.String(), raw: v}, true
	case reflect.Bool:
		return scalar{kind: scalarBool, b: rv.Bool(), raw: v}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intScalar(v, rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return intScalar(v, int64(u)), true
		}
		return floatScalar(v, float64(u)), true
	case reflect.Float32, reflect.Float64:
		return floatScalar(v, rv.Float()), true
	default:
		return scalar{}, false
	}
}

// equal is strict: kinds must match, numbers compare by value.
func (s scalar) equal(o scalar) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case scalarString:
		return s.str == o.str
	case scalarBool:
		return s.b == o.b
	case scalarNumber:
		if s.isInt && o.isInt {
			return s.i64 == o.i64
		}
		return s.num == o.num
	default:
		return false
	}
}

func (s scalar) number() (float64, bool) {
	if s.kind != scalarNumber || math.IsNaN(s.num) {
		return 0, false
	}
	return s.num, true
}

func (s scalar) fieldType() grid.FieldType {
	switch s.kind {
	case scalarString:
		return grid.FieldString
	case scalarNumber:
		return grid.FieldNumber
	case scalarBool:
		return grid.FieldBool
	default:
		return grid.FieldOther
	}
}

func (s scalar) String() string {
	switch s.kind {
	case scalarString:
		return strconv.Quote(s.str)
	case scalarBool:
		return strconv.FormatBool(s.b)
	case scalarNumber:
		if s.isInt {
			return strconv.FormatInt(s.i64, 10)
		}
		return formatFloat(s.num)
	default:
		return "<invalid>"
	}
}

// ToNumber converts a numeric value of any Go kind to float64.
// Strings are not parsed.
func ToNumber(v interface{}) (float64, bool) {
	s, ok := toScalar(v)
	if !ok {
		return 0, false
	}
	return s.number()
}

// ValueType returns the field type a value would have in a schema.
func ValueType(v interface{}) grid.FieldType {
	if v == nil {
		return grid.FieldAny
	}
	s, ok := toScalar(v)
	if !ok {
		return grid.FieldOther
	}
	return s.fieldType()
}
