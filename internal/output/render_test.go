package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/kubiq/internal/projection"
)

func TestRenderDispatchesOnFormat(t *testing.T) {
	rows := []projection.Row{
		{Columns: []string{"metadata.name"}, Values: map[string]any{"metadata.name": "pod-a"}},
	}

	var table bytes.Buffer
	require.NoError(t, Render(&table, Table, rows))
	assert.Contains(t, table.String(), "items: 1")

	var jsonBuf bytes.Buffer
	require.NoError(t, Render(&jsonBuf, JSON, rows))
	assert.Contains(t, jsonBuf.String(), "metadata.name")

	var yamlBuf bytes.Buffer
	require.NoError(t, Render(&yamlBuf, YAML, rows))
	assert.Contains(t, yamlBuf.String(), "metadata.name")
}
