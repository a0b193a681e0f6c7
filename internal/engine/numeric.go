package engine

import "math/big"

// isNumeric reports whether v is one of the three numeric representations
// (int64, uint64, float64) produced by the parser or cluster
// materialisation.
func isNumeric(v any) bool {
	switch v.(type) {
	case int64, uint64, float64:
		return true
	default:
		return false
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int64, uint64, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func toBigInt(v any) *big.Int {
	switch t := v.(type) {
	case int64:
		return big.NewInt(t)
	case uint64:
		return new(big.Int).SetUint64(t)
	default:
		return big.NewInt(0)
	}
}

// numbersEqual compares two numeric values by mathematical value rather
// than Go representation, so an int64 predicate value typed from a bare
// query token compares equal to a uint64 or float64 field value carrying
// the same quantity. This is a deliberate widening of the original
// engine's exact-representation equality: Kubernetes object materialisation
// and the query parser do not always agree on which of Go's three numeric
// types they produce for the same magnitude, and JSON itself has only one
// numeric type, so comparing by value keeps the "strict same-type"
// invariant (both sides are still JSON numbers) without surprising users.
func numbersEqual(left, right any) bool {
	lf, lIsFloat := left.(float64)
	rf, rIsFloat := right.(float64)
	if lIsFloat || rIsFloat {
		x, _ := toFloat(left)
		y, _ := toFloat(right)
		if lIsFloat {
			x = lf
		}
		if rIsFloat {
			y = rf
		}
		return x == y
	}
	return toBigInt(left).Cmp(toBigInt(right)) == 0
}

// compareNumbers orders two numeric values exactly when both fit a common
// integer representation, falling back to float64 comparison otherwise,
// per spec §4.6 point 3. It never fails: unorderable float pairs (should
// one ever appear) compare equal.
func compareNumbers(left, right any) int {
	if li, ok := left.(int64); ok {
		if ri, ok := right.(int64); ok {
			return cmpInt64(li, ri)
		}
		if ru, ok := right.(uint64); ok {
			if li < 0 {
				return -1
			}
			return cmpUint64(uint64(li), ru)
		}
	}
	if lu, ok := left.(uint64); ok {
		if ru, ok := right.(uint64); ok {
			return cmpUint64(lu, ru)
		}
		if ri, ok := right.(int64); ok {
			if ri < 0 {
				return 1
			}
			return cmpUint64(lu, uint64(ri))
		}
	}

	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if lok && rok {
		switch {
		case lf < rf:
			return -1
		case lf > rf:
			return 1
		default:
			return 0
		}
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
