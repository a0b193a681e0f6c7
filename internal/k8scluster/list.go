package k8scluster

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/hashmap-kz/kubiq/internal/kqlerrors"
	"github.com/hashmap-kz/kubiq/internal/planner"
)

// listWithFallback runs the paginated list once with the requested
// selectors, and once more with no selectors if the server rejects them
// (spec §4.4.3), recording a SelectorFallback diagnostic when it does.
func (l *Lister) listWithFallback(ctx context.Context, cl clients, resolved resolvedResource, resource string, options planner.ListQueryOptions) (ListResult, error) {
	hasSelectors := options.FieldSelector != "" || options.LabelSelector != ""

	items, attempts, err := l.listPages(ctx, cl, resolved, resource, options)
	if err == nil {
		return ListResult{Objects: materialize(items), Diagnostics: retrySummaryDiagnostics("list", attempts)}, nil
	}

	if !hasSelectors || !isSelectorRejected(err) {
		return ListResult{}, err
	}

	items, attempts, err = l.listPages(ctx, cl, resolved, resource, planner.ListQueryOptions{})
	if err != nil {
		return ListResult{}, err
	}

	diagnostics := []ListDiagnostic{{Kind: DiagnosticSelectorFallback, Stage: "list", Attempted: options}}
	diagnostics = append(diagnostics, retrySummaryDiagnostics("list", attempts)...)
	return ListResult{Objects: materialize(items), Diagnostics: diagnostics}, nil
}

func isSelectorRejected(err error) bool {
	k8sErr, ok := err.(*kqlerrors.K8sError)
	return ok && k8sErr.Kind == kqlerrors.SelectorRejected
}

func retrySummaryDiagnostics(stage string, attempts int) []ListDiagnostic {
	if attempts <= 1 {
		return nil
	}
	return []ListDiagnostic{{
		Kind:       DiagnosticRetrySummary,
		Stage:      stage,
		Attempts:   attempts,
		StopReason: kqlerrors.RetryCapReached,
	}}
}

// listPages walks every page of the list, per spec §4.4.2: page size 500,
// hard cap at maxListPages, and a non-progress guard on the continue
// token. Each page fetch goes through the shared retry policy.
func (l *Lister) listPages(ctx context.Context, cl clients, resolved resolvedResource, resource string, options planner.ListQueryOptions) ([]unstructured.Unstructured, int, error) {
	var allItems []unstructured.Unstructured
	continueToken := ""
	pageCount := 0
	totalAttempts := 0

	for {
		pageCount++
		if pageCount > maxListPages {
			return nil, totalAttempts, &kqlerrors.K8sError{Kind: kqlerrors.PaginationExceeded, Resource: resource, MaxPages: maxListPages}
		}

		listOptions := buildListOptions(listPageSize, continueToken, options)

		result, err := runWithRetry(ctx, "list", func(attemptCtx context.Context) (*unstructured.UnstructuredList, error) {
			resourceClient := cl.dyn.Resource(resolved.gvr)
			page, listErr := resourceClient.List(attemptCtx, listOptions)
			if listErr != nil {
				return nil, mapListError(resource, hasAnySelector(options), listErr)
			}
			return page, nil
		})
		totalAttempts += result.attempts
		if err != nil {
			return nil, totalAttempts, err
		}

		allItems = append(allItems, result.value.Items...)

		nextToken, tokenErr := nextContinueToken(resource, continueToken, result.value.GetContinue())
		if tokenErr != nil {
			return nil, totalAttempts, tokenErr
		}
		if nextToken == "" {
			break
		}
		continueToken = nextToken
	}

	return allItems, totalAttempts, nil
}

func buildListOptions(limit int64, continueToken string, options planner.ListQueryOptions) metav1.ListOptions {
	listOptions := metav1.ListOptions{Limit: limit}
	if continueToken != "" {
		listOptions.Continue = continueToken
	}
	if options.FieldSelector != "" {
		listOptions.FieldSelector = options.FieldSelector
	}
	if options.LabelSelector != "" {
		listOptions.LabelSelector = options.LabelSelector
	}
	return listOptions
}

func hasAnySelector(options planner.ListQueryOptions) bool {
	return options.FieldSelector != "" || options.LabelSelector != ""
}

func nextContinueToken(resource, currentToken, rawNextToken string) (string, error) {
	if rawNextToken == "" {
		return "", nil
	}
	if rawNextToken == currentToken {
		return "", &kqlerrors.K8sError{Kind: kqlerrors.PaginationStuck, Resource: resource, Token: rawNextToken}
	}
	return rawNextToken, nil
}

// mapListError classifies a raw list error per spec §4.4.5: selector
// rejection (only meaningful when the request carried selectors),
// resource-resolution staleness, connect-class unreachability, or a
// generic list failure.
func mapListError(resource string, hadSelectors bool, err error) error {
	if hadSelectors && isSelectorRejectionMessage(err) {
		return terminal(&kqlerrors.K8sError{Kind: kqlerrors.SelectorRejected, Resource: resource, Source: err})
	}
	if apierrors.IsNotFound(err) || apierrors.IsGone(err) {
		return terminal(&kqlerrors.K8sError{Kind: kqlerrors.ResourceResolutionStale, Resource: resource, Source: err})
	}
	if isAPIUnreachableErrorMessage(err.Error()) {
		return &kqlerrors.K8sError{Kind: kqlerrors.ApiUnreachable, Stage: "list", Source: err}
	}
	return &kqlerrors.K8sError{Kind: kqlerrors.ListFailed, Resource: resource, Source: err}
}

func isSelectorRejectionMessage(err error) bool {
	var statusErr apierrors.APIStatus
	if !errors.As(err, &statusErr) || statusErr.Status().Code != http.StatusBadRequest {
		return false
	}

	message := strings.ToLower(err.Error())
	needles := []string{
		"field selector",
		"label selector",
		"not a known field selector",
		"field label not supported",
	}
	for _, needle := range needles {
		if strings.Contains(message, needle) {
			return true
		}
	}
	return false
}

// materialize merges each raw item's top-level data and metadata into one
// JSON object per spec §4.4.6; flattening into object.DynamicObject is
// left to the caller (C1), matching the documented C4 -> C1 data flow.
func materialize(items []unstructured.Unstructured) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		merged := make(map[string]any, len(item.Object))
		for key, value := range item.Object {
			merged[key] = value
		}
		out = append(out, merged)
	}
	return out
}
