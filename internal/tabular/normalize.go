// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package tabular

import (
	"reflect"

	"github.com/tomtom215/gantry/internal/logging"
)

// Normalize converts a prediction result into plain nested structures
// (maps, slices, primitives) safe for downstream JSON serialization.
// Tables become record-oriented slices, typed maps and slices become
// map[string]any and []any, and primitives pass through unchanged.
func Normalize(v any) any {
	switch value := v.(type) {
	case nil:
		return nil
	case *Table:
		if value == nil {
			return nil
		}
		logging.Debug().Msg("Automatically converting table to plain records")
		records := value.Records()
		out := make([]any, len(records))
		for i, rec := range records {
			out[i] = Normalize(rec)
		}
		return out
	case Table:
		return Normalize(&value)
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, val := range value {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, val := range value {
			out[i] = Normalize(val)
		}
		return out
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return value
	}

	return normalizeReflect(v)
}

// normalizeReflect handles typed maps and slices (map[string]float64,
// []int, ...) that did not match the concrete cases above.
func normalizeReflect(v any) any {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())

	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, ok := iter.Key().Interface().(string)
			if !ok {
				// Non-string keys cannot survive JSON serialization;
				// leave the value to the encoder as-is.
				return v
			}
			out[key] = Normalize(iter.Value().Interface())
		}
		return out

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	}

	return v
}
