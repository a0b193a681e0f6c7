// Package kqlparse turns a query string or tokenised argv into a QueryAst:
// an ordered predicate list, an optional multi-key ORDER BY, and an
// optional selection (paths xor aggregations).
package kqlparse

// Op is a predicate comparison operator.
type Op int

const (
	Eq Op = iota
	Ne
)

func (o Op) String() string {
	if o == Ne {
		return "!="
	}
	return "=="
}

// Predicate is one "path op value" clause of a WHERE body.
type Predicate struct {
	Path  string
	Op    Op
	Value any
}

// SortDir is the direction of one ORDER BY key.
type SortDir int

const (
	Asc SortDir = iota
	Desc
)

// SortKey is one element of an ORDER BY clause.
type SortKey struct {
	Path string
	Dir  SortDir
}

// AggFn is an aggregation function name.
type AggFn int

const (
	Count AggFn = iota
	Sum
	Min
	Max
	Avg
)

func (f AggFn) String() string {
	switch f {
	case Count:
		return "count"
	case Sum:
		return "sum"
	case Min:
		return "min"
	case Max:
		return "max"
	case Avg:
		return "avg"
	default:
		return "unknown"
	}
}

// AggExpr is one aggregation expression, e.g. count(*) or sum(spec.replicas).
// Path is empty for count(*).
type AggExpr struct {
	Fn   AggFn
	Path string
}

// DisplayName is the canonical key an AggExpr projects to in the
// aggregation output row, e.g. "count(*)" or "sum(spec.replicas)".
func (a AggExpr) DisplayName() string {
	arg := a.Path
	if a.Fn == Count && arg == "" {
		arg = "*"
	}
	return a.Fn.String() + "(" + arg + ")"
}

// Selection is either a list of plain paths, or a list of aggregations,
// never both.
type Selection struct {
	Paths        []string
	Aggregations []AggExpr
}

// IsAggregation reports whether this selection is an aggregation selection.
func (s *Selection) IsAggregation() bool {
	return s != nil && len(s.Aggregations) > 0
}

// QueryAst is the parsed form of a kubiq query: predicates, an optional
// sort, and an optional selection.
type QueryAst struct {
	Predicates []Predicate
	OrderBy    []SortKey
	Selection  *Selection
}
