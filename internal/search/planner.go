package search

import (
	"strings"

	"github.com/abgdnv/storefront/internal/store"
)

const (
	// Sentinel closes a prefix range: every string starting with term sorts
	// within [term, term+Sentinel].
	Sentinel = "\uf8ff"

	DefaultQueryLimit = 25
)

// Stable identifiers of planned queries, reported on partial failure.
const (
	QueryName        = "name"
	QueryBrand       = "brand"
	QueryDescription = "description"
	QueryKeywords    = "keywords"
)

// PlannedQuery is one independent sub-query of a search.
type PlannedQuery struct {
	ID    string
	Query store.Query
}

// Planner turns a user search term into a fixed-order list of queries.
type Planner struct {
	limit int
}

// NewPlanner creates a planner capping every sub-query at limit results.
// A non-positive limit selects DefaultQueryLimit.
func NewPlanner(limit int) *Planner {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	return &Planner{limit: limit}
}

// Normalize trims and lowercases a search term.
func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Plan returns the name, brand and description prefix queries followed by the
// keyword query. An empty term yields an empty plan; the keyword query is
// omitted when the term has no token of three or more runes.
func (p *Planner) Plan(term string) []PlannedQuery {
	term = Normalize(term)
	if term == "" {
		return nil
	}

	prefix := func(id, field string) PlannedQuery {
		return PlannedQuery{ID: id, Query: store.Query{
			Kind:  store.KindPrefixRange,
			Field: field,
			From:  term,
			To:    term + Sentinel,
			Limit: p.limit,
		}}
	}
	plan := []PlannedQuery{
		prefix(QueryName, store.FieldNameLower),
		prefix(QueryBrand, store.FieldBrandLower),
		prefix(QueryDescription, store.FieldDescriptionLower),
	}

	tokens := unique(Tokens(term))
	if len(tokens) > 0 {
		plan = append(plan, PlannedQuery{ID: QueryKeywords, Query: store.Query{
			Kind:   store.KindContainsAny,
			Field:  store.FieldKeywords,
			Values: tokens,
			Limit:  p.limit,
		}})
	}
	return plan
}

func unique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
