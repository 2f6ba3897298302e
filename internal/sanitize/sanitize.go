// Package sanitize makes result trees safe for strict JSON encoders by
// replacing NaN and infinite floats with null.
package sanitize

import (
	"math"
	"reflect"
)

// Value walks v and returns a copy in which every NaN or infinite float is nil.
// Maps, slices, arrays, pointers and structs are walked recursively; structs
// are converted to map[string]any keyed by their JSON field names.
func Value(v any) any {
	if v == nil {
		return nil
	}
	return walk(reflect.ValueOf(v))
}

// Scores returns a copy of a score mapping with non-finite values replaced by nil.
func Scores(in map[string]*float64) map[string]*float64 {
	out := make(map[string]*float64, len(in))
	for k, v := range in {
		if v == nil || !finite(*v) {
			out[k] = nil
			continue
		}
		f := *v
		out[k] = &f
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func walk(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Float32, reflect.Float64:
		if f := v.Float(); !finite(f) {
			return nil
		}
		return v.Interface()
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return walk(v.Elem())
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[keyString(iter.Key())] = walk(iter.Value())
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface()
		}
		fallthrough
	case reflect.Array:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = walk(v.Index(i))
		}
		return out
	case reflect.Struct:
		return walkStruct(v)
	}
	return v.Interface()
}
