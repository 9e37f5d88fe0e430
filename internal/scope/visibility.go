package scope

import (
	"fmt"
	"sort"
	"strings"
)

// Clause accepts rows whose scope dimension is Type and whose id is one of IDs.
type Clause struct {
	Type Type
	IDs  []int64
}

// Predicate is the structural form of the read-path visibility filter: the
// logical OR of one clause per non-empty dimension set, or accept-all for a
// tenant-wide context, or accept-nothing when no clause exists. It is built
// once per request from the context and rendered into SQL by the stores;
// no query text is assembled outside the renderer.
type Predicate struct {
	All     bool
	Clauses []Clause
}

// Visibility derives the disjunctive read predicate from a context. Clause and
// id ordering is deterministic so rendered queries are stable.
func Visibility(sc Context) Predicate {
	if sc.TenantWide {
		return Predicate{All: true}
	}
	var clauses []Clause
	for _, t := range Types {
		set := sc.set(t)
		if len(set) == 0 {
			continue
		}
		ids := make([]int64, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		clauses = append(clauses, Clause{Type: t, IDs: ids})
	}
	return Predicate{Clauses: clauses}
}

// Empty reports whether the predicate accepts nothing (default-deny).
func (p Predicate) Empty() bool {
	return !p.All && len(p.Clauses) == 0
}

// Match evaluates the predicate against a single (scopeType, scopeID) pair.
func (p Predicate) Match(t Type, id int64) bool {
	if p.All {
		return true
	}
	for _, c := range p.Clauses {
		if c.Type != t {
			continue
		}
		for _, cid := range c.IDs {
			if cid == id {
				return true
			}
		}
	}
	return false
}

// MatchAny evaluates the predicate against a resource carrying several
// simultaneous dimension columns: visible if any one dimension matches.
func (p Predicate) MatchAny(dims map[Type]int64) bool {
	if p.All {
		return true
	}
	for t, id := range dims {
		if p.Match(t, id) {
			return true
		}
	}
	return false
}

// SQL renders the predicate as a WHERE fragment over a (scope type, scope id)
// column pair using positional placeholders starting at argIndex. Every value
// travels as an argument; column names are compile-time constants supplied by
// the store.
func (p Predicate) SQL(typeCol, idCol string, argIndex int) (string, []any, int) {
	if p.All {
		return "true", nil, argIndex
	}
	if p.Empty() {
		return "false", nil, argIndex
	}
	var (
		parts []string
		args  []any
	)
	for _, c := range p.Clauses {
		placeholders := make([]string, 0, len(c.IDs))
		args = append(args, string(c.Type))
		typeArg := argIndex
		argIndex++
		for _, id := range c.IDs {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argIndex))
			args = append(args, id)
			argIndex++
		}
		parts = append(parts, fmt.Sprintf("(%s = $%d and %s in (%s))",
			typeCol, typeArg, idCol, strings.Join(placeholders, ",")))
	}
	return "(" + strings.Join(parts, " or ") + ")", args, argIndex
}

// SQLColumns renders the predicate for a table that stores one column per
// dimension (e.g. a row carrying both legal_entity_id and operating_unit_id).
// Clauses whose dimension has no column in the table are skipped.
func (p Predicate) SQLColumns(cols map[Type]string, argIndex int) (string, []any, int) {
	if p.All {
		return "true", nil, argIndex
	}
	var (
		parts []string
		args  []any
	)
	for _, c := range p.Clauses {
		col, ok := cols[c.Type]
		if !ok {
			continue
		}
		placeholders := make([]string, 0, len(c.IDs))
		for _, id := range c.IDs {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argIndex))
			args = append(args, id)
			argIndex++
		}
		parts = append(parts, fmt.Sprintf("%s in (%s)", col, strings.Join(placeholders, ",")))
	}
	if len(parts) == 0 {
		return "false", nil, argIndex
	}
	return "(" + strings.Join(parts, " or ") + ")", args, argIndex
}
