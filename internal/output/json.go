package output

import (
	"io"

	"github.com/bytedance/sonic"

	"github.com/hashmap-kz/kubiq/internal/kqlerrors"
	"github.com/hashmap-kz/kubiq/internal/projection"
)

// RenderJSON writes the rows as a pretty-printed JSON array of per-item
// objects, per spec §6.
func RenderJSON(w io.Writer, rows []projection.Row) error {
	data, err := sonic.ConfigStd.MarshalIndent(rowsToObjects(rows), "", "  ")
	if err != nil {
		return &kqlerrors.OutputError{Kind: kqlerrors.JsonSerialize, Source: err}
	}
	_, err = w.Write(append(data, '\n'))
	if err != nil {
		return &kqlerrors.OutputError{Kind: kqlerrors.JsonSerialize, Source: err}
	}
	return nil
}

func rowsToObjects(rows []projection.Row) []map[string]any {
	objects := make([]map[string]any, len(rows))
	for i, row := range rows {
		objects[i] = row.Values
	}
	return objects
}

// jsonCompact renders an arbitrary value (number, array, nested object)
// the way a non-string cell is shown in a table: compact JSON text, the
// same fallback the Rust original used for everything but strings.
func jsonCompact(value any) string {
	data, err := sonic.ConfigStd.Marshal(value)
	if err != nil {
		return "-"
	}
	return string(data)
}
