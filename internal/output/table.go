package output

import (
	"fmt"
	"io"

	"github.com/aquasecurity/table"

	"github.com/hashmap-kz/kubiq/internal/projection"
)

// RenderTable writes one header row, one dash separator row, one row per
// item in the projection's column order, and a trailing "items: <n>"
// line, per spec §6.
func RenderTable(w io.Writer, rows []projection.Row) error {
	columns := tableColumns(rows)
	if len(columns) == 0 {
		_, err := fmt.Fprintf(w, "items: %d\n", len(rows))
		return err
	}

	t := table.New(w)
	t.SetRowLines(false)
	t.SetHeaders(columns...)

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, column := range columns {
			cells[i] = cellString(row.Values[column])
		}
		t.AddRow(cells...)
	}
	t.Render()

	_, err := fmt.Fprintf(w, "items: %d\n", len(rows))
	return err
}

func tableColumns(rows []projection.Row) []string {
	var columns []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, column := range row.Columns {
			if !seen[column] {
				seen[column] = true
				columns = append(columns, column)
			}
		}
	}
	return columns
}

func cellString(value any) string {
	if value == nil {
		return "-"
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return jsonCompact(v)
	}
}
