// Package guard holds the type predicates every setter in this module routes
// through before committing a field write.
//
// Guards never coerce: a numeric string is not a number and a number is not a
// string. They never panic and have no side effects.
package guard

import (
	"math"
	"reflect"
)

// IsString reports whether v is a string (named string types included).
func IsString(v any) bool {
	if v == nil {
		return false
	}

	if _, ok := v.(string); ok {
		return true
	}

	return reflect.TypeOf(v).Kind() == reflect.String
}

// IsNumber reports whether v is a finite integer, unsigned or float value.
// NaN and infinities are rejected: they cannot be encoded on the wire.
func IsNumber(v any) bool {
	if v == nil {
		return false
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return false
	}
}

// IsObject reports whether v is object-shaped: a non-nil map with string
// keys, a struct, or a non-nil pointer to a struct. nil, slices, arrays and
// scalars are not objects.
func IsObject(v any) bool {
	if v == nil {
		return false
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Map:
		return !rv.IsNil() && rv.Type().Key().Kind() == reflect.String
	case reflect.Struct:
		return true
	case reflect.Pointer:
		return !rv.IsNil() && rv.Elem().Kind() == reflect.Struct
	default:
		return false
	}
}

// IsFunction reports whether v is a non-nil func value.
func IsFunction(v any) bool {
	if v == nil {
		return false
	}

	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// StringOr returns v when it is a string and def otherwise.
func StringOr(v any, def string) string {
	if !IsString(v) {
		return def
	}

	if s, ok := v.(string); ok {
		return s
	}

	return reflect.ValueOf(v).String()
}

// IntOr returns v as an int when it is a number and def otherwise.
// Floats are truncated toward zero; values that do not fit an int yield def.
func IntOr(v any, def int) int {
	if !IsNumber(v) {
		return def
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < math.MinInt || i > math.MaxInt {
			return def
		}

		return int(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt {
			return def
		}

		return int(u)
	default:
		f := math.Trunc(rv.Float())
		if f < math.MinInt || f >= math.MaxInt {
			return def
		}

		return int(f)
	}
}
