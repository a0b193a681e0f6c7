package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/kubiq/internal/kqlerrors"
)

func TestParseFormatDefaultsToTable(t *testing.T) {
	format, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, Table, format)
}

func TestParseFormatIsCaseInsensitive(t *testing.T) {
	format, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, JSON, format)
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	_, err := ParseFormat("xml")
	require.Error(t, err)

	var argsErr *kqlerrors.InvalidArgsError
	require.ErrorAs(t, err, &argsErr)
}
