// Package kqlerrors implements kubiq's tagged error taxonomy: one error
// type per category in spec §7, each carrying a user-facing tip and
// (where applicable) a wrapped source error for chaining.
//
// This is the Go-idiomatic counterpart of the original Rust
// implementation's thiserror enums: explicit structs implementing error
// and Unwrap, instead of a third-party taxonomy library — nothing in the
// example corpus reaches for one, and stdlib errors.{Is,As,Unwrap} already
// give us everything spec §7's "every wrapping error carries a source
// reference" needs.
package kqlerrors

import "fmt"

// InvalidArgsError covers bad CLI flags (e.g. --describe with an
// aggregation selection).
type InvalidArgsError struct {
	Message string
}

func (e *InvalidArgsError) Error() string {
	return fmt.Sprintf("invalid args: %s\n\nTip: run `kubiq --help`.", e.Message)
}

// ParseError covers grammar rejection and the empty-WHERE case.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf(
		"parse error: %s\n\nTip: query format is `<resource> where <predicates> [order by <path> [asc|desc]] [select <paths>|<aggregations>]`.\n"+
			"Example: `kubiq pods where metadata.namespace == demo-a order by metadata.name desc select metadata.name`\n"+
			"Aggregation example: `kubiq pods where metadata.namespace == demo-a select count(*)`",
		e.Message,
	)
}

// EngineErrorKind distinguishes the two evaluator-level error conditions.
type EngineErrorKind int

const (
	InvalidAggregation EngineErrorKind = iota
	IncompatibleAggregationTypes
)

// EngineError covers aggregation-time evaluator failures (spec §4.6).
type EngineError struct {
	Kind     EngineErrorKind
	Function string
	Path     string
	Expected string
	Actual   string
	Left     string
	Right    string
}

func (e *EngineError) Error() string {
	switch e.Kind {
	case IncompatibleAggregationTypes:
		return fmt.Sprintf(
			"aggregation `%s` cannot compare mixed types at path `%s`: %s vs %s",
			e.Function, e.Path, e.Left, e.Right,
		)
	default:
		return fmt.Sprintf(
			"aggregation `%s` expects %s at path `%s`, got %s",
			e.Function, e.Expected, e.Path, e.Actual,
		)
	}
}

// K8sErrorKind enumerates the cluster-lister error categories of spec §4.4.5/§7.
type K8sErrorKind int

const (
	EmptyResourceName K8sErrorKind = iota
	RuntimeInit
	ConfigInfer
	ClientBuild
	DiscoveryRun
	ApiUnreachable
	ResourceNotFound
	ListFailed
	SelectorRejected
	ResourceResolutionStale
	PaginationExceeded
	PaginationStuck
	RetryExhausted
	RequestTimeout
)

// RetryErrorKind classifies the terminal error behind a RetryExhausted.
type RetryErrorKind int

const (
	RetryErrorApiUnreachable RetryErrorKind = iota
	RetryErrorOther
	RetryErrorTimeout
)

func (k RetryErrorKind) String() string {
	switch k {
	case RetryErrorApiUnreachable:
		return "ApiUnreachable"
	case RetryErrorTimeout:
		return "RequestTimeout"
	default:
		return "Other"
	}
}

// StopReason names why the retry state machine stopped retrying.
type StopReason int

const (
	RetryCapReached StopReason = iota
	NonRetryable
)

func (r StopReason) String() string {
	if r == NonRetryable {
		return "NonRetryable"
	}
	return "RetryCapReached"
}

// K8sError is the tagged error type for everything the cluster lister (C4)
// can fail with.
type K8sError struct {
	Kind       K8sErrorKind
	Resource   string
	Stage      string
	MaxPages   int
	Token      string
	Attempts   int
	StopReason StopReason
	FinalError RetryErrorKind
	TimeoutMs  int
	Source     error
}

func (e *K8sError) Unwrap() error { return e.Source }

func (e *K8sError) Error() string {
	switch e.Kind {
	case EmptyResourceName:
		return "resource name is empty"
	case RuntimeInit:
		return fmt.Sprintf("failed to init runtime: %v", e.Source)
	case ConfigInfer:
		return fmt.Sprintf("failed to infer kube config: %v", e.Source)
	case ClientBuild:
		return fmt.Sprintf("failed to build kube client: %v", e.Source)
	case DiscoveryRun:
		return fmt.Sprintf("discovery failed: %v", e.Source)
	case ApiUnreachable:
		return fmt.Sprintf("kubernetes api is unreachable during %s: %v", e.Stage, e.Source)
	case ResourceNotFound:
		return fmt.Sprintf("resource '%s' was not found via discovery", e.Resource)
	case ListFailed:
		return fmt.Sprintf("failed to list resource '%s': %v", e.Resource, e.Source)
	case SelectorRejected:
		return fmt.Sprintf("server rejected selectors for resource '%s': %v", e.Resource, e.Source)
	case ResourceResolutionStale:
		return fmt.Sprintf("resource resolution for '%s' is stale: %v", e.Resource, e.Source)
	case PaginationExceeded:
		return fmt.Sprintf("pagination for resource '%s' exceeded max pages (%d)", e.Resource, e.MaxPages)
	case PaginationStuck:
		return fmt.Sprintf("pagination for resource '%s' got stuck on continue token '%s'", e.Resource, e.Token)
	case RetryExhausted:
		return fmt.Sprintf(
			"retries exhausted during %s after %d attempts (reason=%s, final_error=%s): %v",
			e.Stage, e.Attempts, e.StopReason, e.FinalError, e.Source,
		)
	case RequestTimeout:
		return fmt.Sprintf("request during %s timed out after %dms", e.Stage, e.TimeoutMs)
	default:
		return "unknown k8s error"
	}
}

// Tip returns the user-facing remediation hint for a K8sError.
func (e *K8sError) Tip() string {
	switch e.Kind {
	case ResourceNotFound:
		return "Tip: resource was not found. Check plural name via:\n  kubectl api-resources"
	case ApiUnreachable:
		return "Tip: Kubernetes API is unreachable. Check context/cluster:\n  kubectl config current-context\n  kubectl cluster-info"
	case SelectorRejected:
		return "Tip: API server rejected selectors; kubiq retries without selectors and continues with client-side filtering."
	default:
		return "Tip: verify cluster access with `kubectl get ns` and then retry."
	}
}

// OutputErrorKind distinguishes the output-layer serialization failures.
type OutputErrorKind int

const (
	JsonSerialize OutputErrorKind = iota
	YamlSerialize
)

// OutputError covers serializer failures in the rendering layer.
type OutputError struct {
	Kind   OutputErrorKind
	Source error
}

func (e *OutputError) Unwrap() error { return e.Source }

func (e *OutputError) Error() string {
	if e.Kind == YamlSerialize {
		return fmt.Sprintf("failed to serialize yaml output: %v", e.Source)
	}
	return fmt.Sprintf("failed to serialize json output: %v", e.Source)
}

// Tip returns the user-facing remediation hint for an OutputError.
func (e *OutputError) Tip() string {
	return "Tip: supported formats are `table`, `json`, `yaml`."
}
