package output

import (
	"io"

	"github.com/hashmap-kz/kubiq/internal/projection"
)

// Render writes rows to w in the requested format.
func Render(w io.Writer, format Format, rows []projection.Row) error {
	switch format {
	case JSON:
		return RenderJSON(w, rows)
	case YAML:
		return RenderYAML(w, rows)
	default:
		return RenderTable(w, rows)
	}
}
