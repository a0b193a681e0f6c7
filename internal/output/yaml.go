package output

import (
	"io"

	"sigs.k8s.io/yaml"

	"github.com/hashmap-kz/kubiq/internal/kqlerrors"
	"github.com/hashmap-kz/kubiq/internal/projection"
)

// RenderYAML writes the rows as a YAML sequence, per spec §6. It goes
// through sigs.k8s.io/yaml's JSON-compatible marshal path, the same one
// client-go/cli-runtime already pulls in transitively.
func RenderYAML(w io.Writer, rows []projection.Row) error {
	data, err := yaml.Marshal(rowsToObjects(rows))
	if err != nil {
		return &kqlerrors.OutputError{Kind: kqlerrors.YamlSerialize, Source: err}
	}
	_, err = w.Write(data)
	if err != nil {
		return &kqlerrors.OutputError{Kind: kqlerrors.YamlSerialize, Source: err}
	}
	return nil
}
