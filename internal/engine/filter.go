// Package engine is the evaluator: it filters, sorts, and aggregates
// DynamicObjects already flattened by C1/C5, per spec §4.6.
package engine

import (
	"sort"
	"strings"

	"github.com/hashmap-kz/kubiq/internal/kqlparse"
	"github.com/hashmap-kz/kubiq/internal/object"
)

// Filter keeps only objects matching every predicate (AND semantics).
func Filter(predicates []kqlparse.Predicate, objects []object.DynamicObject) []object.DynamicObject {
	out := make([]object.DynamicObject, 0, len(objects))
	for _, obj := range objects {
		if matchesAll(obj, predicates) {
			out = append(out, obj)
		}
	}
	return out
}

func matchesAll(obj object.DynamicObject, predicates []kqlparse.Predicate) bool {
	for _, predicate := range predicates {
		value, ok := obj.Get(predicate.Path)
		var equal, determinate bool
		if ok {
			equal, determinate = comparableEq(value, predicate.Value)
		}

		switch predicate.Op {
		case kqlparse.Eq:
			if !determinate || !equal {
				return false
			}
		case kqlparse.Ne:
			if !determinate || equal {
				return false
			}
		}
	}
	return true
}

// comparableEq compares actual to expected strictly by type: two strings,
// two bools, or two numbers (by value, see numbersEqual). Any other
// pairing, including a missing or null actual value, is indeterminate.
func comparableEq(actual, expected any) (equal bool, determinate bool) {
	if actual == nil || expected == nil {
		return false, false
	}

	switch a := actual.(type) {
	case string:
		b, ok := expected.(string)
		if !ok {
			return false, false
		}
		return a == b, true
	case bool:
		b, ok := expected.(bool)
		if !ok {
			return false, false
		}
		return a == b, true
	default:
		if isNumeric(actual) && isNumeric(expected) {
			return numbersEqual(actual, expected), true
		}
		return false, false
	}
}

// Sort orders objects by a multi-key sort; with no sort keys the input
// order is returned unchanged.
func Sort(sortKeys []kqlparse.SortKey, objects []object.DynamicObject) []object.DynamicObject {
	if len(sortKeys) == 0 {
		return objects
	}

	sorted := make([]object.DynamicObject, len(objects))
	copy(sorted, objects)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareObjects(sorted[i], sorted[j], sortKeys) < 0
	})
	return sorted
}

func compareObjects(left, right object.DynamicObject, sortKeys []kqlparse.SortKey) int {
	for _, key := range sortKeys {
		leftValue, _ := left.Get(key.Path)
		rightValue, _ := right.Get(key.Path)
		if cmp := compareValues(leftValue, rightValue, key.Dir); cmp != 0 {
			return cmp
		}
	}
	return 0
}

// compareValues orders a missing/null value to the extreme end: first in
// Asc, last in Desc.
func compareValues(left, right any, dir kqlparse.SortDir) int {
	leftNullish := left == nil
	rightNullish := right == nil

	switch {
	case leftNullish && rightNullish:
		return 0
	case leftNullish:
		if dir == kqlparse.Asc {
			return -1
		}
		return 1
	case rightNullish:
		if dir == kqlparse.Asc {
			return 1
		}
		return -1
	default:
		return compareNonNullValues(left, right, dir)
	}
}

func compareNonNullValues(left, right any, dir kqlparse.SortDir) int {
	cmp := valueRank(left) - valueRank(right)
	if cmp == 0 {
		cmp = compareSameRank(left, right)
	}
	if dir == kqlparse.Desc {
		cmp = -cmp
	}
	return cmp
}

func compareSameRank(left, right any) int {
	switch l := left.(type) {
	case bool:
		r, _ := right.(bool)
		switch {
		case l == r:
			return 0
		case !l:
			return -1
		default:
			return 1
		}
	case string:
		r, _ := right.(string)
		return strings.Compare(l, r)
	default:
		if isNumeric(left) && isNumeric(right) {
			return compareNumbers(left, right)
		}
		return 0
	}
}

// valueRank orders by primitive kind when types differ: bool=0, number=1,
// string=2, anything else (arrays, objects) = 3.
func valueRank(v any) int {
	switch v.(type) {
	case bool:
		return 0
	case int64, uint64, float64:
		return 1
	case string:
		return 2
	default:
		return 3
	}
}
