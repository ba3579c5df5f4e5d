// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package cache

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// KeySeparator delimits cache key segments.
const KeySeparator = "::"

// Key builds a deterministic cache key from an operation name and its
// arguments. Equal calls yield equal keys across runs: map keys are
// serialized in sorted order, slices element-wise, and composite values
// that resist direct formatting fall back to JSON.
func Key(op string, args ...any) string {
	if len(args) == 0 {
		return op
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, op)
	for _, arg := range args {
		parts = append(parts, serializeValue(arg))
	}

	return strings.Join(parts, KeySeparator)
}

// serializeValue renders one argument deterministically.
func serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	rt := reflect.TypeOf(v)

	switch rt.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return "nil"
		}
		return serializeValue(rv.Elem().Interface())

	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return serializeList(rv, "slice")

	case reflect.Array:
		return serializeList(rv, "array")

	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return serializeMap(rv)

	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return fmt.Sprintf("%v", v)
	}

	return jsonFallback(v)
}

func serializeList(rv reflect.Value, label string) string {
	length := rv.Len()
	parts := make([]string, length)
	for i := 0; i < length; i++ {
		parts[i] = serializeValue(rv.Index(i).Interface())
	}
	return fmt.Sprintf("%s[%d]:{%s}", label, length, strings.Join(parts, ","))
}

// serializeMap renders map entries in sorted key order for determinism.
func serializeMap(rv reflect.Value) string {
	keys := rv.MapKeys()

	type pair struct {
		key   string
		value reflect.Value
	}
	pairs := make([]pair, len(keys))
	for i, k := range keys {
		pairs[i] = pair{key: serializeValue(k.Interface()), value: rv.MapIndex(k)}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	rendered := make([]string, len(pairs))
	for i, p := range pairs {
		rendered[i] = fmt.Sprintf("%s=%s", p.key, serializeValue(p.value.Interface()))
	}

	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(rendered, ","))
}

// jsonFallback serializes values with no direct representation.
func jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("fallback:%s", reflect.TypeOf(v).String())
	}
	return fmt.Sprintf("json:%s", string(data))
}
