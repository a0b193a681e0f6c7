package kqlpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeSegment(t *testing.T) {
	assert.Equal(t, "annotations", EncodeSegment("annotations"))
	assert.Equal(t, "kubectl%2Ekubernetes%2Eio/restartedAt", EncodeSegment("kubectl.kubernetes.io/restartedAt"))
	assert.Equal(t, "a%25b", EncodeSegment("a%b"))

	assert.Equal(t, "kubectl.kubernetes.io/restartedAt", DecodeSegment("kubectl%2Ekubernetes%2Eio/restartedAt"))
	assert.Equal(t, "a%b", DecodeSegment("a%25b"))
}

func TestEncodeDecodePathRoundTrip(t *testing.T) {
	for _, s := range []string{
		"metadata.annotations.kubectl.kubernetes.io/restartedAt",
		"a.b.c",
		"",
		"%weird%.path%2E",
	} {
		assert.Equal(t, s, DecodePath(EncodePath(s)), "round trip for %q", s)
	}
}

func TestFlattenAndReconstructRoundtripWithDottedKeys(t *testing.T) {
	root := map[string]any{
		"metadata": map[string]any{
			"name": "worker-a",
			"annotations": map[string]any{
				"kubectl.kubernetes.io/restartedAt": "2026-02-22T10:00:00Z",
				"x%y":                               "pct",
			},
		},
	}

	fields := Flatten(root)
	assert.Equal(t, "2026-02-22T10:00:00Z", fields["metadata.annotations.kubectl%2Ekubernetes%2Eio/restartedAt"])
	assert.Equal(t, "pct", fields["metadata.annotations.x%25y"])

	reconstructed := Reconstruct(fields)
	assert.Equal(t, root, reconstructed)
}

func TestSelectSubtreeRebuildsWithDottedKeys(t *testing.T) {
	fields := map[string]any{
		"metadata.annotations.kubectl%2Ekubernetes%2Eio/restartedAt": "2026-02-22T10:00:00Z",
		"metadata.annotations.app%2Ekubernetes%2Eio/name":            "api",
	}

	selected, ok := SelectSubtree(fields, "metadata.annotations")
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"kubectl.kubernetes.io/restartedAt": "2026-02-22T10:00:00Z",
		"app.kubernetes.io/name":            "api",
	}, selected)
}

func TestSelectSubtreeExactMatch(t *testing.T) {
	fields := map[string]any{"metadata.name": "pod-a"}
	v, ok := SelectSubtree(fields, "metadata.name")
	require.True(t, ok)
	assert.Equal(t, "pod-a", v)
}

func TestSelectSubtreeAbsent(t *testing.T) {
	fields := map[string]any{"metadata.name": "pod-a"}
	_, ok := SelectSubtree(fields, "spec.replicas")
	assert.False(t, ok)
}

func TestPreservesDistinctPercentEncodedKeys(t *testing.T) {
	root := map[string]any{
		"metadata": map[string]any{
			"labels": map[string]any{
				"a.b":   "dot",
				"a%2Eb": "literal",
			},
		},
	}

	fields := Flatten(root)
	assert.Equal(t, "dot", fields["metadata.labels.a%2Eb"])
	assert.Equal(t, "literal", fields["metadata.labels.a%252Eb"])
	assert.Equal(t, root, Reconstruct(fields))
}

func TestFlattenArraysExplodedAndWhole(t *testing.T) {
	root := map[string]any{
		"spec": map[string]any{
			"tags": []any{"a", "b"},
		},
	}
	fields := Flatten(root)
	assert.Equal(t, []any{"a", "b"}, fields["spec.tags"])
	assert.Equal(t, "a", fields["spec.tags.0"])
	assert.Equal(t, "b", fields["spec.tags.1"])
}

func TestFlattenElidesNullLeaves(t *testing.T) {
	root := map[string]any{
		"spec": map[string]any{
			"rank": nil,
		},
	}
	fields := Flatten(root)
	_, present := fields["spec.rank"]
	assert.False(t, present)
}

func TestFlattenNeverStoresRootPath(t *testing.T) {
	fields := Flatten("scalar-root")
	assert.Empty(t, fields)
}

func TestReconstructRoundtripArbitraryValue(t *testing.T) {
	root := map[string]any{
		"a": []any{
			map[string]any{"b": float64(1)},
			map[string]any{"b": float64(2)},
		},
		"c": true,
	}
	fields := Flatten(root)
	assert.Equal(t, root, Reconstruct(fields))
}
