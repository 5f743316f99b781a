// Package keyword models the boolean contains/excludes catalog query.
package keyword

import (
	"fmt"
	"strings"
)

// MaxClauses is the maximum number of clauses in one query.
const MaxClauses = 8

// Operator joins a clause to the expression on its left.
type Operator string

// Operator constants.
const (
	And Operator = "and"
	Or  Operator = "or"
)

// ProviderMode controls how the provider list restricts results.
type ProviderMode string

// ProviderMode constants.
const (
	ProvidersAll     ProviderMode = ""
	ProvidersInclude ProviderMode = "include"
	ProvidersExclude ProviderMode = "exclude"
)

// Clause is one term of the expression.
type Clause struct {
	Term    string
	Exclude bool     // true: "does not contain"
	Op      Operator // ignored on the first clause
}

// Query is a validated keyword expression evaluated left to right.
type Query struct {
	clauses      []Clause
	providers    map[string]struct{}
	providerMode ProviderMode
}

// New validates clauses. Evaluation stops at the first clause with an empty term,
// so trailing empty clauses are dropped. A query whose first term is empty is valid
// and reported by Empty.
func New(clauses []Clause, providers []string, mode ProviderMode) (Query, error) {
	if len(clauses) > MaxClauses {
		return Query{}, fmt.Errorf("too many clauses (max %d)", MaxClauses)
	}
	switch mode {
	case ProvidersAll, ProvidersInclude, ProvidersExclude:
	default:
		return Query{}, fmt.Errorf("invalid provider mode: %q", mode)
	}

	var kept []Clause
	for i, c := range clauses {
		term := strings.ToLower(strings.TrimSpace(c.Term))
		if term == "" {
			break
		}
		op := Operator(strings.ToLower(string(c.Op)))
		if i > 0 {
			if op == "" {
				op = And
			}
			if op != And && op != Or {
				return Query{}, fmt.Errorf("clause %d: invalid operator %q", i, c.Op)
			}
		}
		kept = append(kept, Clause{Term: term, Exclude: c.Exclude, Op: op})
	}

	q := Query{clauses: kept, providerMode: mode}
	if mode != ProvidersAll && len(providers) > 0 {
		q.providers = make(map[string]struct{}, len(providers))
		for _, p := range providers {
			q.providers[p] = struct{}{}
		}
	}
	return q, nil
}

// Empty reports whether the query has no usable clause.
func (q *Query) Empty() bool { return len(q.clauses) == 0 }

// Clauses returns the normalized clauses.
func (q *Query) Clauses() []Clause { return q.clauses }

// Match evaluates the expression against lower-cased search text.
// Clauses after the first match on their term minus its final character, so
// "tornillos" also hits "tornillo".
func (q *Query) Match(searchText string) bool {
	if q.Empty() {
		return false
	}
	ok := contains(searchText, q.clauses[0].Term, q.clauses[0].Exclude)
	for _, c := range q.clauses[1:] {
		hit := contains(searchText, trimLast(c.Term), c.Exclude)
		if c.Op == Or {
			ok = ok || hit
		} else {
			ok = ok && hit
		}
	}
	return ok
}

// AllowProvider applies the provider include/exclude list.
func (q *Query) AllowProvider(provider string) bool {
	if q.providers == nil {
		return true
	}
	_, listed := q.providers[provider]
	if q.providerMode == ProvidersInclude {
		return listed
	}
	return !listed
}

func contains(text, term string, exclude bool) bool {
	return strings.Contains(text, term) != exclude
}

func trimLast(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
