package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/cli-runtime/pkg/genericiooptions"

	"github.com/hashmap-kz/kubiq/internal/engine"
	"github.com/hashmap-kz/kubiq/internal/k8scluster"
	"github.com/hashmap-kz/kubiq/internal/kqlerrors"
	"github.com/hashmap-kz/kubiq/internal/kqlparse"
	"github.com/hashmap-kz/kubiq/internal/object"
	"github.com/hashmap-kz/kubiq/internal/output"
	"github.com/hashmap-kz/kubiq/internal/planner"
	"github.com/hashmap-kz/kubiq/internal/projection"
)

// queryOptions holds the flags runQuery reads; root.go registers them.
type queryOptions struct {
	output             string
	describe           bool
	noPushdownWarnings bool
}

// runQuery implements the full pipeline described in spec §6: parse the
// query, plan a pushdown, list the cluster, filter/sort/aggregate
// client-side, project rows, and render them.
func runQuery(ctx context.Context, configFlags *genericclioptions.ConfigFlags, opts *queryOptions, streams genericiooptions.IOStreams, args []string) error {
	resource := args[0]
	ast, err := parseQueryTokens(args[1:])
	if err != nil {
		return err
	}

	if opts.describe && ast.Selection.IsAggregation() {
		return &kqlerrors.InvalidArgsError{Message: "--describe is not allowed with an aggregation selection"}
	}

	format, err := output.ParseFormat(opts.output)
	if err != nil {
		return err
	}

	plan := planner.PlanPushdown(ast.Predicates)
	reportPushdownDiagnostics(streams.ErrOut, opts.noPushdownWarnings, plan)

	lister := k8scluster.New(configFlags)
	result, err := lister.List(ctx, resource, plan.Options)
	if err != nil {
		return err
	}
	reportListDiagnostics(streams.ErrOut, opts.noPushdownWarnings, result.Diagnostics)

	objects := make([]object.DynamicObject, len(result.Objects))
	for i, raw := range result.Objects {
		objects[i] = object.FromJSON(raw)
	}

	filtered := engine.Filter(ast.Predicates, objects)
	sorted := engine.Sort(ast.OrderBy, filtered)

	rows, err := projectRows(ast.Selection, opts.describe, sorted)
	if err != nil {
		return err
	}

	return output.Render(streams.Out, format, rows)
}

// parseQueryTokens routes the argv tail to whichever entry point matches
// how the shell handed it to us: a single already-quoted query string, or
// a tokenised "where ..." argv, per spec §6's CLI surface.
func parseQueryTokens(tokens []string) (kqlparse.QueryAst, error) {
	if len(tokens) == 1 {
		return kqlparse.ParseQuery(tokens[0])
	}
	return kqlparse.ParseQueryArgs(tokens)
}

func projectRows(selection *kqlparse.Selection, describe bool, objects []object.DynamicObject) ([]projection.Row, error) {
	if selection.IsAggregation() {
		row, err := engine.Aggregate(selection.Aggregations, objects)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(selection.Aggregations))
		for i, agg := range selection.Aggregations {
			names[i] = agg.DisplayName()
		}
		return projection.ProjectAggregation(names, row), nil
	}
	return projection.Project(selection, describe, objects), nil
}

func reportPushdownDiagnostics(w io.Writer, suppressed bool, plan planner.PushdownPlan) {
	if suppressed {
		return
	}
	for _, d := range plan.Diagnostics {
		fmt.Fprintf(w, "[pushdown] predicate `%s` %s was not pushed: %s\n", d.Path, d.Op, d.Reason)
	}
}

func reportListDiagnostics(w io.Writer, suppressed bool, diagnostics []k8scluster.ListDiagnostic) {
	if suppressed {
		return
	}
	for _, d := range diagnostics {
		switch d.Kind {
		case k8scluster.DiagnosticSelectorFallback:
			fmt.Fprintf(w, "[pushdown] API rejected selectors; retried without selectors (field_selector=%s, label_selector=%s)\n",
				selectorDebug(d.Attempted.FieldSelector), selectorDebug(d.Attempted.LabelSelector))
		case k8scluster.DiagnosticRetrySummary:
			fmt.Fprintf(w, "[pushdown] %s succeeded after %d attempts\n", d.Stage, d.Attempts)
		}
	}
}

func selectorDebug(selector string) string {
	if selector == "" {
		return "<none>"
	}
	return strings.TrimSpace(selector)
}
