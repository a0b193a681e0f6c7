package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetExactEncodedPath(t *testing.T) {
	o := New(map[string]any{"metadata.namespace": "demo-a"})
	v, ok := o.Get("metadata.namespace")
	assert.True(t, ok)
	assert.Equal(t, "demo-a", v)
}

func TestGetMissingPath(t *testing.T) {
	o := New(map[string]any{"metadata.namespace": "demo-a"})
	_, ok := o.Get("spec.nodeName")
	assert.False(t, ok)
}

func TestGetFallsBackToDecodedScanForDottedKeys(t *testing.T) {
	o := New(map[string]any{
		"metadata.annotations.kubectl%2Ekubernetes%2Eio/restartedAt": "2026-02-22T10:00:00Z",
	})
	v, ok := o.Get("metadata.annotations.kubectl.kubernetes.io/restartedAt")
	assert.True(t, ok)
	assert.Equal(t, "2026-02-22T10:00:00Z", v)
}

func TestFromJSONFlattensNestedValue(t *testing.T) {
	o := FromJSON(map[string]any{
		"metadata": map[string]any{"name": "pod-a"},
	})
	v, ok := o.Get("metadata.name")
	assert.True(t, ok)
	assert.Equal(t, "pod-a", v)
}
