package engine

import (
	"math"
	"math/big"

	"github.com/hashmap-kz/kubiq/internal/kqlerrors"
	"github.com/hashmap-kz/kubiq/internal/kqlparse"
	"github.com/hashmap-kz/kubiq/internal/object"
)

// Aggregate builds the single synthetic output row for an aggregation
// selection, keyed by each expression's canonical display name.
func Aggregate(aggs []kqlparse.AggExpr, objects []object.DynamicObject) (object.DynamicObject, error) {
	row := make(map[string]any, len(aggs))
	for _, expr := range aggs {
		value, err := evaluateAggregation(expr, objects)
		if err != nil {
			return object.DynamicObject{}, err
		}
		row[expr.DisplayName()] = value
	}
	return object.New(row), nil
}

func evaluateAggregation(expr kqlparse.AggExpr, objects []object.DynamicObject) (any, error) {
	switch expr.Fn {
	case kqlparse.Count:
		return countAggregation(expr.Path, objects), nil
	case kqlparse.Sum:
		path, err := requiredPath(expr)
		if err != nil {
			return nil, err
		}
		return sumAggregation(path, objects)
	case kqlparse.Min:
		path, err := requiredPath(expr)
		if err != nil {
			return nil, err
		}
		return minMaxAggregation(path, objects, true)
	case kqlparse.Max:
		path, err := requiredPath(expr)
		if err != nil {
			return nil, err
		}
		return minMaxAggregation(path, objects, false)
	case kqlparse.Avg:
		path, err := requiredPath(expr)
		if err != nil {
			return nil, err
		}
		return avgAggregation(path, objects)
	default:
		return nil, &kqlerrors.EngineError{Kind: kqlerrors.InvalidAggregation, Function: expr.Fn.String(), Path: expr.Path, Expected: "known aggregation function", Actual: "unknown"}
	}
}

func requiredPath(expr kqlparse.AggExpr) (string, error) {
	if expr.Path == "" {
		return "", &kqlerrors.EngineError{
			Kind:     kqlerrors.InvalidAggregation,
			Function: expr.Fn.String(),
			Path:     "*",
			Expected: "path argument",
			Actual:   "none",
		}
	}
	return expr.Path, nil
}

func countAggregation(path string, objects []object.DynamicObject) any {
	if path == "" {
		return uint64(len(objects))
	}

	count := uint64(0)
	for _, obj := range objects {
		if value, ok := obj.Get(path); ok && value != nil {
			count++
		}
	}
	return count
}

func sumAggregation(path string, objects []object.DynamicObject) (any, error) {
	total := big.NewInt(0)
	var totalFloat float64
	useFloat := false
	hasValue := false

	for _, obj := range objects {
		value, ok := obj.Get(path)
		if !ok || value == nil {
			continue
		}
		if !isNumeric(value) {
			return nil, nonNumericAggregationError("sum", path, value)
		}

		hasValue = true
		if !useFloat {
			if f, isFloat := value.(float64); isFloat {
				totalFloat, _ = new(big.Float).SetInt(total).Float64()
				useFloat = true
				totalFloat += f
			} else {
				total.Add(total, toBigInt(value))
			}
		} else {
			f, _ := toFloat(value)
			totalFloat += f
		}
	}

	if !hasValue {
		return int64(0), nil
	}

	if !useFloat {
		return integerToJSONNumber("sum", path, total)
	}

	if math.IsInf(totalFloat, 0) || math.IsNaN(totalFloat) {
		return nil, &kqlerrors.EngineError{Kind: kqlerrors.InvalidAggregation, Function: "sum", Path: path, Expected: "finite numeric result", Actual: "non-finite"}
	}
	return totalFloat, nil
}

func avgAggregation(path string, objects []object.DynamicObject) (any, error) {
	total := big.NewInt(0)
	var totalFloat float64
	useFloat := false
	count := 0

	for _, obj := range objects {
		value, ok := obj.Get(path)
		if !ok || value == nil {
			continue
		}
		if !isNumeric(value) {
			return nil, nonNumericAggregationError("avg", path, value)
		}

		if !useFloat {
			if f, isFloat := value.(float64); isFloat {
				totalFloat, _ = new(big.Float).SetInt(total).Float64()
				useFloat = true
				totalFloat += f
			} else {
				total.Add(total, toBigInt(value))
			}
		} else {
			f, _ := toFloat(value)
			totalFloat += f
		}
		count++
	}

	if count == 0 {
		return nil, nil
	}

	if !useFloat {
		totalFloat, _ = new(big.Float).SetInt(total).Float64()
	}

	average := totalFloat / float64(count)
	if math.IsInf(average, 0) || math.IsNaN(average) {
		return nil, &kqlerrors.EngineError{Kind: kqlerrors.InvalidAggregation, Function: "avg", Path: path, Expected: "finite numeric result", Actual: "non-finite"}
	}
	return average, nil
}

func minMaxAggregation(path string, objects []object.DynamicObject, isMin bool) (any, error) {
	function := "max"
	if isMin {
		function = "min"
	}

	var best any
	bestType := ""

	for _, obj := range objects {
		value, ok := obj.Get(path)
		if !ok || value == nil {
			continue
		}

		valueType := comparableType(value)
		if valueType == "" {
			return nil, &kqlerrors.EngineError{Kind: kqlerrors.InvalidAggregation, Function: function, Path: path, Expected: "bool, number, or string", Actual: typeName(value)}
		}

		if bestType != "" && bestType != valueType {
			return nil, &kqlerrors.EngineError{Kind: kqlerrors.IncompatibleAggregationTypes, Function: function, Path: path, Left: bestType, Right: valueType}
		}

		if best != nil {
			cmp, err := compareSameTypeValues(best, value)
			if err != nil {
				return nil, err
			}
			if (isMin && cmp > 0) || (!isMin && cmp < 0) {
				best = value
			}
		} else {
			best = value
			bestType = valueType
		}
	}

	return best, nil
}

func comparableType(value any) string {
	switch value.(type) {
	case bool:
		return "bool"
	case int64, uint64, float64:
		return "number"
	case string:
		return "string"
	default:
		return ""
	}
}

func compareSameTypeValues(left, right any) (int, error) {
	switch l := left.(type) {
	case bool:
		r, ok := right.(bool)
		if !ok {
			break
		}
		switch {
		case l == r:
			return 0, nil
		case !l:
			return -1, nil
		default:
			return 1, nil
		}
	case string:
		r, ok := right.(string)
		if !ok {
			break
		}
		if l < r {
			return -1, nil
		}
		if l > r {
			return 1, nil
		}
		return 0, nil
	default:
		if isNumeric(left) && isNumeric(right) {
			return compareNumbers(left, right), nil
		}
	}
	return 0, &kqlerrors.EngineError{Kind: kqlerrors.InvalidAggregation, Function: "min/max", Path: "<internal>", Expected: "comparable primitive values", Actual: "mixed or unsupported types"}
}

func integerToJSONNumber(function, path string, value *big.Int) (any, error) {
	if value.IsInt64() {
		return value.Int64(), nil
	}
	if value.Sign() >= 0 && value.IsUint64() {
		return value.Uint64(), nil
	}
	return nil, &kqlerrors.EngineError{Kind: kqlerrors.InvalidAggregation, Function: function, Path: path, Expected: "representable JSON integer", Actual: "out of range"}
}

func nonNumericAggregationError(function, path string, value any) error {
	return &kqlerrors.EngineError{Kind: kqlerrors.InvalidAggregation, Function: function, Path: path, Expected: "number", Actual: typeName(value)}
}
