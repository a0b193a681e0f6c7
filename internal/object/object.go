// Package object defines DynamicObject, the flattened representation of a
// Kubernetes object keyed by encoded dotted paths (see internal/kqlpath).
package object

import "github.com/hashmap-kz/kubiq/internal/kqlpath"

// DynamicObject is a mapping from encoded path to scalar/array JSON value.
// Intermediate object nodes are never stored, only leaves and whole arrays;
// explicit JSON null is elided during flattening.
type DynamicObject struct {
	Fields map[string]any
}

// New wraps an already-flattened field map.
func New(fields map[string]any) DynamicObject {
	return DynamicObject{Fields: fields}
}

// FromJSON flattens a decoded JSON value into a DynamicObject.
func FromJSON(root any) DynamicObject {
	return DynamicObject{Fields: kqlpath.Flatten(root)}
}

// Get looks up a user-form (decoded) path. It first tries the path encoded
// exactly as given; if that misses, it falls back to a linear scan over
// every stored key, decoding each one and comparing to the requested path.
// The fallback is what lets predicates address dotted annotation/label keys
// written the natural way, e.g. "metadata.annotations.kubectl.kubernetes.io/restartedAt".
func (o DynamicObject) Get(path string) (any, bool) {
	encoded := kqlpath.EncodePath(path)
	if value, ok := o.Fields[encoded]; ok {
		return value, true
	}

	for key, value := range o.Fields {
		if kqlpath.DecodePath(key) == path {
			return value, true
		}
	}

	return nil, false
}
