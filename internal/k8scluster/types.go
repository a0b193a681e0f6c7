// Package k8scluster is the cluster lister (C4): it resolves a resource
// name against cached cluster discovery, lists it page by page applying
// selector fallback and a shared retry policy, and returns every item as
// a plain JSON map; flattening into object.DynamicObject is left to the
// caller.
package k8scluster

import (
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/hashmap-kz/kubiq/internal/kqlerrors"
	"github.com/hashmap-kz/kubiq/internal/planner"
)

const (
	listPageSize = 500
	maxListPages = 10_000
)

// resolvedResource is what discovery resolves a plural resource name to:
// enough to build a dynamic.ResourceInterface against it.
type resolvedResource struct {
	gvr        schema.GroupVersionResource
	namespaced bool
}

// DiagnosticKind distinguishes the two kinds of ListResult diagnostics.
type DiagnosticKind int

const (
	DiagnosticSelectorFallback DiagnosticKind = iota
	DiagnosticRetrySummary
)

// ListDiagnostic records a recovered condition the caller may want to
// surface (spec §4.4.3/§4.4.4): either a selector-fallback retry or a
// summary of a retry that eventually succeeded.
type ListDiagnostic struct {
	Kind       DiagnosticKind
	Stage      string
	Attempted  planner.ListQueryOptions
	Attempts   int
	StopReason kqlerrors.StopReason
	FinalError kqlerrors.RetryErrorKind
}

// ListResult is the output of List: the materialized objects plus any
// diagnostics recorded along the way.
type ListResult struct {
	Objects     []map[string]any
	Diagnostics []ListDiagnostic
}
