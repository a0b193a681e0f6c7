// Package planner translates a query's predicates into Kubernetes field
// and label selectors wherever it is safe to do so, per spec §4.3.
package planner

import (
	"strings"

	"github.com/hashmap-kz/kubiq/internal/kqlparse"
)

// NotPushableReason names why one predicate could not be expressed as a
// selector.
type NotPushableReason int

const (
	UnsupportedPath NotPushableReason = iota
	UnsupportedOperator
	NonStringValue
	UnsafeSelectorValue
	UnsafeLabelKey
)

func (r NotPushableReason) String() string {
	switch r {
	case UnsupportedOperator:
		return "unsupported operator"
	case NonStringValue:
		return "value is not a string"
	case UnsafeSelectorValue:
		return "value is unsafe for a selector"
	case UnsafeLabelKey:
		return "label key is unsafe for a selector"
	default:
		return "unsupported path"
	}
}

// PlannerDiagnostic records one predicate the planner could not push down.
type PlannerDiagnostic struct {
	Path   string
	Op     kqlparse.Op
	Reason NotPushableReason
}

// ListQueryOptions is the already-joined selector strings a cluster list
// call consumes. An empty string means the selector is absent.
type ListQueryOptions struct {
	FieldSelector string
	LabelSelector string
}

// PushdownPlan is the result of planning a predicate list: the selector
// options to send to the server, plus diagnostics for every predicate
// that must still be evaluated client-side.
type PushdownPlan struct {
	Options     ListQueryOptions
	Diagnostics []PlannerDiagnostic
}

type selectorTarget int

const (
	targetField selectorTarget = iota
	targetLabel
)

// PlanPushdown builds a PushdownPlan from a predicate list. Every
// predicate that cannot be pushed is recorded as a diagnostic; predicate
// order is preserved within each selector kind.
func PlanPushdown(predicates []kqlparse.Predicate) PushdownPlan {
	var fieldSelectors []string
	var labelSelectors []string
	var diagnostics []PlannerDiagnostic

	for _, predicate := range predicates {
		target, selector, reason, ok := predicateToSelector(predicate)
		switch {
		case !ok:
			diagnostics = append(diagnostics, PlannerDiagnostic{
				Path:   predicate.Path,
				Op:     predicate.Op,
				Reason: reason,
			})
		case target == targetField:
			fieldSelectors = append(fieldSelectors, selector)
		default:
			labelSelectors = append(labelSelectors, selector)
		}
	}

	return PushdownPlan{
		Options: ListQueryOptions{
			FieldSelector: joinSelectorParts(fieldSelectors),
			LabelSelector: joinSelectorParts(labelSelectors),
		},
		Diagnostics: diagnostics,
	}
}

// predicateToSelector returns (target, selector, _, true) on success, or
// (_, "", reason, false) when the predicate cannot be pushed.
func predicateToSelector(predicate kqlparse.Predicate) (selectorTarget, string, NotPushableReason, bool) {
	operator, ok := selectorOperator(predicate.Op)
	if !ok {
		return 0, "", UnsupportedOperator, false
	}

	value, ok := selectorValue(predicate.Value)
	if !ok {
		return 0, "", NonStringValue, false
	}
	if !isSelectorValueSafe(value) {
		return 0, "", UnsafeSelectorValue, false
	}

	if strings.EqualFold(predicate.Path, "metadata.name") || strings.EqualFold(predicate.Path, "metadata.namespace") {
		return targetField, predicate.Path + operator + value, 0, true
	}

	if labelKey, ok := strings.CutPrefix(predicate.Path, "metadata.labels."); ok {
		if !isLabelKeySafe(labelKey) {
			return 0, "", UnsafeLabelKey, false
		}
		return targetLabel, labelKey + operator + value, 0, true
	}

	return 0, "", UnsupportedPath, false
}

func selectorOperator(op kqlparse.Op) (string, bool) {
	switch op {
	case kqlparse.Eq:
		return "=", true
	case kqlparse.Ne:
		return "!=", true
	default:
		return "", false
	}
}

func selectorValue(value any) (string, bool) {
	text, ok := value.(string)
	return text, ok
}

func isSelectorValueSafe(value string) bool {
	if value == "" {
		return false
	}
	return !strings.ContainsAny(value, ",=! \t\n\r\v\f")
}

func isLabelKeySafe(key string) bool {
	if key == "" {
		return false
	}
	return !strings.ContainsAny(key, ", \t\n\r\v\f")
}

func joinSelectorParts(parts []string) string {
	return strings.Join(parts, ",")
}
