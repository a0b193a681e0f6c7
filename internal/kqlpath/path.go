// Package kqlpath implements the dotted path codec shared by the query
// engine: encoding/decoding individual segments, flattening a nested JSON
// value into a dot-keyed map, and reconstructing (or selecting a subtree
// from) that map.
//
// A segment's literal '%' and '.' bytes are percent-escaped so that a dot
// inside a label or annotation key never collides with the path separator.
package kqlpath

import (
	"sort"
	"strconv"
	"strings"
)

// EncodeSegment escapes '%' and '.' in a single path segment.
func EncodeSegment(segment string) string {
	segment = strings.ReplaceAll(segment, "%", "%25")
	segment = strings.ReplaceAll(segment, ".", "%2E")
	return segment
}

// DecodeSegment reverses EncodeSegment. The two escape codes are matched
// case-insensitively, mirroring how they are produced.
func DecodeSegment(segment string) string {
	var out strings.Builder
	out.Grow(len(segment))

	for i := 0; i < len(segment); {
		if segment[i] == '%' && i+2 < len(segment) {
			code := segment[i+1 : i+3]
			if strings.EqualFold(code, "2e") {
				out.WriteByte('.')
				i += 3
				continue
			}
			if strings.EqualFold(code, "25") {
				out.WriteByte('%')
				i += 3
				continue
			}
		}
		out.WriteByte(segment[i])
		i++
	}

	return out.String()
}

// EncodePath encodes a user-form dotted path segment by segment.
func EncodePath(path string) string {
	parts := strings.Split(path, ".")
	for i, part := range parts {
		parts[i] = EncodeSegment(part)
	}
	return strings.Join(parts, ".")
}

// DecodePath decodes an encoded dotted path back to user form.
func DecodePath(path string) string {
	return strings.Join(decodeParts(path), ".")
}

func decodeParts(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	for i, part := range parts {
		parts[i] = DecodeSegment(part)
	}
	return parts
}

// Flatten walks a decoded JSON value (map[string]any, []any, or a scalar)
// depth-first and returns a map from encoded path to leaf/array value.
// Object nodes are never stored themselves, only their leaves; arrays are
// stored both exploded by index and whole at their own path. Explicit nils
// (JSON null) are elided, and the root path is never stored.
func Flatten(root any) map[string]any {
	out := make(map[string]any)
	flattenInto(nil, root, out)
	return out
}

func flattenInto(path []string, value any, out map[string]any) {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			flattenInto(append(path, EncodeSegment(key)), child, out)
		}
	case []any:
		for index, child := range v {
			flattenInto(append(path, strconv.Itoa(index)), child, out)
		}
		if len(path) > 0 {
			out[strings.Join(path, ".")] = value
		}
	case nil:
		// JSON null leaves are elided.
	default:
		if len(path) > 0 {
			out[strings.Join(path, ".")] = value
		}
	}
}

// Reconstruct rebuilds a nested JSON value from a flattened field map.
// Iterating the map in sorted key order keeps the result deterministic
// regardless of the caller's map iteration order.
func Reconstruct(fields map[string]any) any {
	var root any
	for _, encodedPath := range sortedKeys(fields) {
		parts := decodeParts(encodedPath)
		root = insertNested(root, parts, fields[encodedPath])
	}
	if root == nil {
		return map[string]any{}
	}
	return root
}

// SelectSubtree returns the value at an exact encoded path, or (if no exact
// match exists) the nested object reconstructed from every descendant key,
// or false if neither the path nor any descendant is present.
func SelectSubtree(fields map[string]any, userPath string) (any, bool) {
	encodedPath := EncodePath(userPath)
	if value, ok := fields[encodedPath]; ok {
		return value, true
	}

	prefix := encodedPath + "."
	var root any
	found := false

	for _, key := range sortedKeys(fields) {
		suffix, ok := strings.CutPrefix(key, prefix)
		if !ok || suffix == "" {
			continue
		}
		found = true
		parts := decodeParts(suffix)
		root = insertNested(root, parts, fields[key])
	}

	if !found {
		return nil, false
	}
	return root, true
}

func insertNested(node any, parts []string, value any) any {
	if len(parts) == 0 {
		return value
	}

	if index, err := strconv.Atoi(parts[0]); err == nil && index >= 0 {
		array, ok := node.([]any)
		if !ok {
			array = nil
		}
		for len(array) <= index {
			array = append(array, nil)
		}
		array[index] = insertNested(array[index], parts[1:], value)
		return array
	}

	object, ok := node.(map[string]any)
	if !ok {
		object = make(map[string]any)
	}
	object[parts[0]] = insertNested(object[parts[0]], parts[1:], value)
	return object
}

func sortedKeys(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
