package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/kubiq/internal/kqlparse"
	"github.com/hashmap-kz/kubiq/internal/object"
)

func newObject(fields map[string]any) object.DynamicObject {
	return object.New(fields)
}

func names(objects []object.DynamicObject) []string {
	out := make([]string, len(objects))
	for i, obj := range objects {
		v, ok := obj.Get("metadata.name")
		if !ok {
			out[i] = "-"
			continue
		}
		s, _ := v.(string)
		out[i] = s
	}
	return out
}

func TestFilterKeepsOnlyMatchingObjects(t *testing.T) {
	objects := []object.DynamicObject{
		newObject(map[string]any{"metadata.namespace": "default"}),
		newObject(map[string]any{"metadata.namespace": "kube-system"}),
	}
	predicates := []kqlparse.Predicate{{Path: "metadata.namespace", Op: kqlparse.Eq, Value: "default"}}

	result := Filter(predicates, objects)
	assert.Len(t, result, 1)
}

func TestFilterMissingFieldDoesNotMatchEqOrNe(t *testing.T) {
	obj := newObject(map[string]any{"metadata.namespace": "default"})

	eqResult := Filter([]kqlparse.Predicate{{Path: "spec.nodeName", Op: kqlparse.Eq, Value: "worker-1"}}, []object.DynamicObject{obj})
	neResult := Filter([]kqlparse.Predicate{{Path: "spec.nodeName", Op: kqlparse.Ne, Value: "worker-1"}}, []object.DynamicObject{obj})

	assert.Empty(t, eqResult)
	assert.Empty(t, neResult)
}

func TestFilterTypeMismatchDoesNotMatchEqOrNe(t *testing.T) {
	obj := newObject(map[string]any{"spec.replicas": int64(2)})

	eqResult := Filter([]kqlparse.Predicate{{Path: "spec.replicas", Op: kqlparse.Eq, Value: "2"}}, []object.DynamicObject{obj})
	neResult := Filter([]kqlparse.Predicate{{Path: "spec.replicas", Op: kqlparse.Ne, Value: "2"}}, []object.DynamicObject{obj})

	assert.Empty(t, eqResult)
	assert.Empty(t, neResult)
}

func TestFilterNumericCrossRepresentationEquality(t *testing.T) {
	obj := newObject(map[string]any{"spec.replicas": uint64(2)})
	result := Filter([]kqlparse.Predicate{{Path: "spec.replicas", Op: kqlparse.Eq, Value: int64(2)}}, []object.DynamicObject{obj})
	assert.Len(t, result, 1)
}

func TestSortBySingleKeyAsc(t *testing.T) {
	objects := []object.DynamicObject{
		newObject(map[string]any{"metadata.name": "pod-c"}),
		newObject(map[string]any{"metadata.name": "pod-a"}),
		newObject(map[string]any{"metadata.name": "pod-b"}),
	}
	sorted := Sort([]kqlparse.SortKey{{Path: "metadata.name", Dir: kqlparse.Asc}}, objects)
	assert.Equal(t, []string{"pod-a", "pod-b", "pod-c"}, names(sorted))
}

func TestSortBySingleKeyDesc(t *testing.T) {
	objects := []object.DynamicObject{
		newObject(map[string]any{"spec.priority": int64(1)}),
		newObject(map[string]any{"spec.priority": int64(3)}),
		newObject(map[string]any{"spec.priority": int64(2)}),
	}
	sorted := Sort([]kqlparse.SortKey{{Path: "spec.priority", Dir: kqlparse.Desc}}, objects)

	values := make([]any, len(sorted))
	for i, obj := range sorted {
		values[i], _ = obj.Get("spec.priority")
	}
	assert.Equal(t, []any{int64(3), int64(2), int64(1)}, values)
}

func TestSortNullishSqlStyle(t *testing.T) {
	objects := []object.DynamicObject{
		newObject(map[string]any{"spec.rank": int64(2), "metadata.name": "c"}),
		newObject(map[string]any{"metadata.name": "a"}),
		newObject(map[string]any{"spec.rank": nil, "metadata.name": "b"}),
		newObject(map[string]any{"spec.rank": int64(1), "metadata.name": "d"}),
	}

	asc := Sort([]kqlparse.SortKey{{Path: "spec.rank", Dir: kqlparse.Asc}}, objects)
	desc := Sort([]kqlparse.SortKey{{Path: "spec.rank", Dir: kqlparse.Desc}}, objects)

	assert.Equal(t, []string{"a", "b", "d", "c"}, names(asc))
	assert.Equal(t, []string{"c", "d", "a", "b"}, names(desc))
}

func TestSortMixedTypesWithFixedPrecedence(t *testing.T) {
	objects := []object.DynamicObject{
		newObject(map[string]any{"spec.value": "z", "metadata.name": "s"}),
		newObject(map[string]any{"spec.value": int64(10), "metadata.name": "n"}),
		newObject(map[string]any{"spec.value": true, "metadata.name": "b"}),
		newObject(map[string]any{"spec.value": map[string]any{"k": "v"}, "metadata.name": "o"}),
	}

	sorted := Sort([]kqlparse.SortKey{{Path: "spec.value", Dir: kqlparse.Asc}}, objects)
	assert.Equal(t, []string{"b", "n", "s", "o"}, names(sorted))
}

func TestSortByMultipleKeysFallsThroughOnTies(t *testing.T) {
	objects := []object.DynamicObject{
		newObject(map[string]any{"spec.rank": int64(1), "metadata.name": "beta"}),
		newObject(map[string]any{"spec.rank": int64(1), "metadata.name": "alpha"}),
		newObject(map[string]any{"spec.rank": int64(2), "metadata.name": "gamma"}),
		newObject(map[string]any{"spec.rank": int64(1)}),
	}

	sorted := Sort([]kqlparse.SortKey{
		{Path: "spec.rank", Dir: kqlparse.Asc},
		{Path: "metadata.name", Dir: kqlparse.Asc},
	}, objects)

	assert.Equal(t, []string{"-", "alpha", "beta", "gamma"}, names(sorted))
}

func TestAggregatesCountSumMinMaxAvg(t *testing.T) {
	objects := []object.DynamicObject{
		newObject(map[string]any{"spec.replicas": int64(1)}),
		newObject(map[string]any{"spec.replicas": int64(3)}),
		newObject(map[string]any{"spec.replicas": int64(2)}),
	}
	aggs := []kqlparse.AggExpr{
		{Fn: kqlparse.Count},
		{Fn: kqlparse.Sum, Path: "spec.replicas"},
		{Fn: kqlparse.Min, Path: "spec.replicas"},
		{Fn: kqlparse.Max, Path: "spec.replicas"},
		{Fn: kqlparse.Avg, Path: "spec.replicas"},
	}

	row, err := Aggregate(aggs, objects)
	require.NoError(t, err)

	v, _ := row.Get("count(*)")
	assert.Equal(t, uint64(3), v)
	v, _ = row.Get("sum(spec.replicas)")
	assert.Equal(t, int64(6), v)
	v, _ = row.Get("min(spec.replicas)")
	assert.Equal(t, int64(1), v)
	v, _ = row.Get("max(spec.replicas)")
	assert.Equal(t, int64(3), v)
	v, _ = row.Get("avg(spec.replicas)")
	assert.Equal(t, 2.0, v)
}

func TestAggregatesEmptySetSqlLike(t *testing.T) {
	aggs := []kqlparse.AggExpr{
		{Fn: kqlparse.Count},
		{Fn: kqlparse.Count, Path: "spec.replicas"},
		{Fn: kqlparse.Sum, Path: "spec.replicas"},
		{Fn: kqlparse.Avg, Path: "spec.replicas"},
		{Fn: kqlparse.Min, Path: "spec.replicas"},
		{Fn: kqlparse.Max, Path: "spec.replicas"},
	}

	row, err := Aggregate(aggs, nil)
	require.NoError(t, err)

	v, _ := row.Get("count(*)")
	assert.Equal(t, uint64(0), v)
	v, _ = row.Get("count(spec.replicas)")
	assert.Equal(t, uint64(0), v)
	v, _ = row.Get("sum(spec.replicas)")
	assert.Equal(t, int64(0), v)
	v, ok := row.Get("avg(spec.replicas)")
	assert.True(t, ok)
	assert.Nil(t, v)
	v, ok = row.Get("min(spec.replicas)")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestAggregateSumErrorsOnNonNumericValues(t *testing.T) {
	objects := []object.DynamicObject{newObject(map[string]any{"spec.replicas": "bad"})}
	_, err := Aggregate([]kqlparse.AggExpr{{Fn: kqlparse.Sum, Path: "spec.replicas"}}, objects)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects number")
}

func TestAggregateMinErrorsOnMixedTypes(t *testing.T) {
	objects := []object.DynamicObject{
		newObject(map[string]any{"spec.value": int64(10)}),
		newObject(map[string]any{"spec.value": "x"}),
	}
	_, err := Aggregate([]kqlparse.AggExpr{{Fn: kqlparse.Min, Path: "spec.value"}}, objects)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot compare mixed types")
}

func TestAggregateCountPathIgnoresMissingAndNull(t *testing.T) {
	objects := []object.DynamicObject{
		newObject(map[string]any{"spec.replicas": int64(3)}),
		newObject(map[string]any{"spec.replicas": nil}),
		newObject(map[string]any{}),
	}
	row, err := Aggregate([]kqlparse.AggExpr{{Fn: kqlparse.Count, Path: "spec.replicas"}}, objects)
	require.NoError(t, err)
	v, _ := row.Get("count(spec.replicas)")
	assert.Equal(t, uint64(1), v)
}

func TestAggregateSumKeepsLargeIntegerPrecision(t *testing.T) {
	// 9_007_199_254_740_993 exceeds 2^53, the largest integer an IEEE-754
	// float64 can represent exactly; this checks the big.Int accumulator
	// keeps the sum exact rather than drifting through a float64 path.
	objects := []object.DynamicObject{
		newObject(map[string]any{"spec.value": int64(9_007_199_254_740_993)}),
		newObject(map[string]any{"spec.value": int64(2)}),
	}
	row, err := Aggregate([]kqlparse.AggExpr{{Fn: kqlparse.Sum, Path: "spec.value"}}, objects)
	require.NoError(t, err)
	v, _ := row.Get("sum(spec.value)")
	assert.Equal(t, int64(9_007_199_254_740_995), v)
}

func TestAggregateMinMaxCompareLargeIntegersExactly(t *testing.T) {
	objects := []object.DynamicObject{
		newObject(map[string]any{"spec.value": int64(9_007_199_254_740_993)}),
		newObject(map[string]any{"spec.value": int64(9_007_199_254_740_992)}),
	}
	row, err := Aggregate([]kqlparse.AggExpr{
		{Fn: kqlparse.Min, Path: "spec.value"},
		{Fn: kqlparse.Max, Path: "spec.value"},
	}, objects)
	require.NoError(t, err)
	v, _ := row.Get("min(spec.value)")
	assert.Equal(t, int64(9_007_199_254_740_992), v)
	v, _ = row.Get("max(spec.value)")
	assert.Equal(t, int64(9_007_199_254_740_993), v)
}

func TestAggregateAvgSupportsFloatValues(t *testing.T) {
	objects := []object.DynamicObject{
		newObject(map[string]any{"spec.value": 1.5}),
		newObject(map[string]any{"spec.value": 2.5}),
	}
	row, err := Aggregate([]kqlparse.AggExpr{{Fn: kqlparse.Avg, Path: "spec.value"}}, objects)
	require.NoError(t, err)
	v, _ := row.Get("avg(spec.value)")
	assert.Equal(t, 2.0, v)
}
