package kqlparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/hashmap-kz/kubiq/internal/kqlerrors"
)

var identPath = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*(\.[A-Za-z_][A-Za-z0-9_-]*)*$`)

var aggCall = regexp.MustCompile(`^(count|sum|min|max|avg)\((.*)\)$`)

func fail(format string, args ...any) error {
	return &kqlerrors.ParseError{Message: fmt.Sprintf(format, args...)}
}

// ParseQuery parses a single joined query string, starting with "where".
func ParseQuery(input string) (QueryAst, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return QueryAst{}, &kqlerrors.ParseError{Message: err.Error()}
	}
	return parseTokens(tokens)
}

// ParseQueryArgs parses already-tokenised argv. The first token must be
// "where" (case-insensitive). Any token containing whitespace is wrapped
// in single quotes before the tokens are re-joined and handed to the same
// grammar as ParseQuery, so a shell-quoted value like `metadata.name ==
// "my value"` parses the same way regardless of entry point.
func ParseQueryArgs(tokens []string) (QueryAst, error) {
	if len(tokens) == 0 || !strings.EqualFold(tokens[0], "where") {
		return QueryAst{}, fail("query must start with WHERE")
	}

	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		if strings.ContainsFunc(tok, unicode.IsSpace) && !looksQuoted(tok) {
			parts[i] = "'" + tok + "'"
		} else {
			parts[i] = tok
		}
	}

	return ParseQuery(strings.Join(parts, " "))
}

func looksQuoted(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'")
}

// tokenize splits on whitespace, treating single-quoted runs (including
// their quotes) as one token so "and"/whitespace inside a quoted value
// never splits a predicate.
func tokenize(input string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	hasCur := false

	for _, r := range input {
		switch {
		case r == '\'':
			inQuote = !inQuote
			cur.WriteRune(r)
			hasCur = true
		case unicode.IsSpace(r) && !inQuote:
			if hasCur {
				tokens = append(tokens, cur.String())
				cur.Reset()
				hasCur = false
			}
		default:
			cur.WriteRune(r)
			hasCur = true
		}
	}

	if inQuote {
		return nil, fail("unterminated quoted value")
	}
	if hasCur {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}

func parseTokens(tokens []string) (QueryAst, error) {
	if len(tokens) == 0 || !strings.EqualFold(tokens[0], "where") {
		return QueryAst{}, fail("query must start with WHERE")
	}
	tokens = tokens[1:]

	whereEnd := len(tokens)
	for i, tok := range tokens {
		if isKeyword(tok, "order") || isKeyword(tok, "select") {
			whereEnd = i
			break
		}
	}

	whereToks := tokens[:whereEnd]
	if len(whereToks) == 0 {
		return QueryAst{}, fail("WHERE clause is empty")
	}

	predicates, err := parsePredicates(whereToks)
	if err != nil {
		return QueryAst{}, err
	}

	ast := QueryAst{Predicates: predicates}

	rest := tokens[whereEnd:]
	haveOrderBy := false
	haveSelect := false

	for len(rest) > 0 {
		switch {
		case isKeyword(rest[0], "order"):
			if haveOrderBy {
				return QueryAst{}, fail("invalid query syntax: duplicate ORDER BY clause")
			}
			if len(rest) < 2 || !isKeyword(rest[1], "by") {
				return QueryAst{}, fail("invalid query syntax: expected BY after ORDER")
			}
			haveOrderBy = true
			clause, next := takeClause(rest[2:])
			orderBy, parseErr := parseOrderBy(clause)
			if parseErr != nil {
				return QueryAst{}, parseErr
			}
			ast.OrderBy = orderBy
			rest = next

		case isKeyword(rest[0], "select"):
			if haveSelect {
				return QueryAst{}, fail("invalid query syntax: duplicate SELECT clause")
			}
			haveSelect = true
			clause, next := takeClause(rest[1:])
			selection, parseErr := parseSelection(clause)
			if parseErr != nil {
				return QueryAst{}, parseErr
			}
			ast.Selection = selection
			rest = next

		default:
			return QueryAst{}, fail("invalid query syntax")
		}
	}

	return ast, nil
}

func isKeyword(tok, keyword string) bool {
	return strings.EqualFold(tok, keyword)
}

// takeClause consumes tokens up to (but not including) the next top-level
// "order" or "select" keyword, or the end of input.
func takeClause(tokens []string) (clause []string, rest []string) {
	for i, tok := range tokens {
		if isKeyword(tok, "order") || isKeyword(tok, "select") {
			return tokens[:i], tokens[i:]
		}
	}
	return tokens, nil
}

func parsePredicates(tokens []string) ([]Predicate, error) {
	var groups [][]string
	var cur []string

	for _, tok := range tokens {
		if isKeyword(tok, "and") {
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, tok)
	}
	groups = append(groups, cur)

	predicates := make([]Predicate, 0, len(groups))
	for _, group := range groups {
		if len(group) != 3 {
			return nil, fail("invalid query syntax")
		}
		if !identPath.MatchString(group[0]) {
			return nil, fail("invalid query syntax")
		}
		op, err := parseOp(group[1])
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, Predicate{
			Path:  group[0],
			Op:    op,
			Value: parseValue(group[2]),
		})
	}

	return predicates, nil
}

func parseOp(tok string) (Op, error) {
	switch tok {
	case "==":
		return Eq, nil
	case "!=":
		return Ne, nil
	default:
		return 0, fail("invalid query syntax")
	}
}

// parseValue types a bare token per spec §4.2: true/false -> bool;
// parseable i64 -> integer; parseable u64 -> unsigned integer; parseable
// finite f64 -> float; otherwise string. Single-quoted tokens are
// unwrapped and kept verbatim without type inference.
func parseValue(tok string) any {
	if looksQuoted(tok) {
		return tok[1 : len(tok)-1]
	}

	switch strings.ToLower(tok) {
	case "true":
		return true
	case "false":
		return false
	}

	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return i
	}
	if u, err := strconv.ParseUint(tok, 10, 64); err == nil {
		return u
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f
	}

	return tok
}

func parseOrderBy(clause []string) ([]SortKey, error) {
	items := splitClauseItems(clause)
	if len(items) == 0 {
		return nil, fail("invalid query syntax: ORDER BY requires at least one key")
	}

	keys := make([]SortKey, 0, len(items))
	for _, item := range items {
		parts := strings.Fields(item)
		if len(parts) == 0 || len(parts) > 2 {
			return nil, fail("invalid query syntax")
		}
		if !identPath.MatchString(parts[0]) {
			return nil, fail("invalid query syntax")
		}

		dir := Asc
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
				dir = Asc
			case "desc":
				dir = Desc
			default:
				return nil, fail("invalid query syntax: unknown sort direction %q", parts[1])
			}
		}
		keys = append(keys, SortKey{Path: parts[0], Dir: dir})
	}

	return keys, nil
}

func parseSelection(clause []string) (*Selection, error) {
	items := splitClauseItems(clause)
	if len(items) == 0 {
		return nil, fail("invalid query syntax: SELECT requires at least one item")
	}

	var paths []string
	var aggs []AggExpr
	for _, item := range items {
		if match := aggCall.FindStringSubmatch(item); match != nil {
			fn, err := parseAggFn(match[1])
			if err != nil {
				return nil, err
			}
			argPath := strings.TrimSpace(match[2])
			if fn == Count && argPath == "*" {
				aggs = append(aggs, AggExpr{Fn: fn})
				continue
			}
			if !identPath.MatchString(argPath) {
				return nil, fail("invalid query syntax")
			}
			aggs = append(aggs, AggExpr{Fn: fn, Path: argPath})
			continue
		}

		if !identPath.MatchString(item) {
			return nil, fail("invalid query syntax")
		}
		paths = append(paths, item)
	}

	if len(paths) > 0 && len(aggs) > 0 {
		return nil, fail("invalid query syntax: cannot mix plain paths and aggregations in one SELECT")
	}

	return &Selection{Paths: paths, Aggregations: aggs}, nil
}

func parseAggFn(name string) (AggFn, error) {
	switch strings.ToLower(name) {
	case "count":
		return Count, nil
	case "sum":
		return Sum, nil
	case "min":
		return Min, nil
	case "max":
		return Max, nil
	case "avg":
		return Avg, nil
	default:
		return 0, fail("invalid query syntax: unknown aggregation %q", name)
	}
}

// splitClauseItems re-joins a clause's tokens with a single space, then
// splits on commas; each item is trimmed of surrounding whitespace. This
// lets `a, b` and `a,b` parse identically regardless of how the shell or
// user spaced the list.
func splitClauseItems(tokens []string) []string {
	joined := strings.Join(tokens, " ")
	if strings.TrimSpace(joined) == "" {
		return nil
	}

	rawItems := strings.Split(joined, ",")
	items := make([]string, 0, len(rawItems))
	for _, raw := range rawItems {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		items = append(items, trimmed)
	}
	return items
}
