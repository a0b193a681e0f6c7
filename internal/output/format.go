// Package output renders projection rows as a table, JSON, or YAML,
// per spec §6's Output formats. It is a pure rendering layer: it takes
// what projection.Project/ProjectAggregation already produced and writes
// it to an io.Writer, never touching the query engine itself.
package output

import (
	"fmt"
	"strings"

	"github.com/hashmap-kz/kubiq/internal/kqlerrors"
)

// Format is one of the three renderers the CLI exposes via -o/--output.
type Format int

const (
	Table Format = iota
	JSON
	YAML
)

// ParseFormat accepts the flag value case-insensitively; any other
// value is an InvalidArgsError naming the supported set.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "table":
		return Table, nil
	case "json":
		return JSON, nil
	case "yaml":
		return YAML, nil
	default:
		return 0, &kqlerrors.InvalidArgsError{Message: fmt.Sprintf("unknown output format %q, expected table|json|yaml", raw)}
	}
}
