// Package projection turns evaluated rows into output rows, per spec §4.7:
// selected paths (flat), a reconstructed subtree (nested), an aggregation
// row passed through untouched, or a summary/describe row when there is no
// selection.
package projection

import (
	"sort"

	"github.com/hashmap-kz/kubiq/internal/kqlparse"
	"github.com/hashmap-kz/kubiq/internal/kqlpath"
	"github.com/hashmap-kz/kubiq/internal/object"
)

// Row is one output record: an ordered set of column names plus the
// values keyed by those names.
type Row struct {
	Columns []string
	Values  map[string]any
}

// Project builds output rows for a selection-bearing query. Aggregation
// selections must go through ProjectAggregation instead; calling this with
// an aggregation selection is a programming error in the caller, not a
// runtime one, since the selection kind is already known by the time
// projection runs.
func Project(selection *kqlparse.Selection, describe bool, objects []object.DynamicObject) []Row {
	if selection != nil && len(selection.Paths) > 0 {
		return projectPaths(selection.Paths, objects)
	}
	return projectSummary(describe, objects)
}

func projectPaths(paths []string, objects []object.DynamicObject) []Row {
	rows := make([]Row, 0, len(objects))
	for _, obj := range objects {
		values := make(map[string]any, len(paths))
		for _, path := range paths {
			value, ok := kqlpath.SelectSubtree(obj.Fields, path)
			if !ok {
				value = nil
			}
			values[path] = value
		}
		rows = append(rows, Row{Columns: paths, Values: values})
	}
	return rows
}

// ProjectAggregation passes the single aggregation row through unchanged;
// its columns are the keys of that row, in the order the aggregation
// expressions were declared.
func ProjectAggregation(displayNames []string, row object.DynamicObject) []Row {
	values := make(map[string]any, len(displayNames))
	for _, name := range displayNames {
		value, _ := row.Get(name)
		values[name] = value
	}
	return []Row{{Columns: displayNames, Values: values}}
}

// projectSummary handles the no-selection case: name-only summary rows, or
// (with describe) one column per flattened leaf, keyed by its decoded
// user-form path, with columns sorted.
func projectSummary(describe bool, objects []object.DynamicObject) []Row {
	rows := make([]Row, 0, len(objects))
	for _, obj := range objects {
		if describe {
			rows = append(rows, describeRow(obj))
			continue
		}
		rows = append(rows, nameSummaryRow(obj))
	}
	return rows
}

func nameSummaryRow(obj object.DynamicObject) Row {
	name, ok := obj.Get("metadata.name")
	if !ok {
		name = "-"
	}
	return Row{Columns: []string{"name"}, Values: map[string]any{"name": name}}
}

func describeRow(obj object.DynamicObject) Row {
	columns := make([]string, 0, len(obj.Fields))
	values := make(map[string]any, len(obj.Fields))
	for encodedPath, value := range obj.Fields {
		userPath := kqlpath.DecodePath(encodedPath)
		columns = append(columns, userPath)
		values[userPath] = value
	}
	sort.Strings(columns)
	return Row{Columns: columns, Values: values}
}
