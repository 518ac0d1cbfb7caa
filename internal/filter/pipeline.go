// Package filter refines an already fetched product list by category, price and
// size, and orders it.
package filter

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/abgdnv/storefront/internal/store"
)

type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortNewest    SortOrder = "newest"
)

// State holds the refinement criteria. The zero value constrains nothing.
type State struct {
	Category string
	MinPrice *int64
	MaxPrice *int64
	Sizes    []string
	Sort     SortOrder
}

// IsZero reports whether s leaves its input untouched.
func (s State) IsZero() bool {
	return s.Category == "" && s.MinPrice == nil && s.MaxPrice == nil && len(s.Sizes) == 0 &&
		(s.Sort == "" || s.Sort == SortRelevance)
}

// Apply returns the products of in matching s, ordered by s.Sort.
// It never fails: malformed criteria are ignored. Sorting is stable, and
// relevance (or an unknown order) keeps the input order. in is not modified.
func Apply(in []store.Product, s State) []store.Product {
	minPrice, maxPrice := s.MinPrice, s.MaxPrice
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		minPrice, maxPrice = nil, nil
	}

	out := make([]store.Product, 0, len(in))
	for _, p := range in {
		if s.Category != "" && !strings.EqualFold(p.Category, s.Category) {
			continue
		}
		if minPrice != nil && p.Price < *minPrice {
			continue
		}
		if maxPrice != nil && p.Price > *maxPrice {
			continue
		}
		if len(s.Sizes) > 0 && !intersects(p.Sizes, s.Sizes) {
			continue
		}
		out = append(out, p)
	}

	switch s.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b store.Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b store.Product) int { return cmp.Compare(b.Price, a.Price) })
	case SortNewest:
		slices.SortStableFunc(out, func(a, b store.Product) int { return cmp.Compare(b.DateAdded, a.DateAdded) })
	}
	return out
}

func intersects(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

// ParseState reads category, minPrice, maxPrice, size (repeatable) and sort
// from query parameters. Unparseable prices and empty sizes are dropped.
func ParseState(q url.Values) State {
	s := State{
		Category: strings.TrimSpace(q.Get("category")),
		MinPrice: parsePrice(q.Get("minPrice")),
		MaxPrice: parsePrice(q.Get("maxPrice")),
		Sort:     SortOrder(strings.ToLower(strings.TrimSpace(q.Get("sort")))),
	}
	for _, size := range q["size"] {
		if size = strings.TrimSpace(size); size != "" {
			s.Sizes = append(s.Sizes, size)
		}
	}
	return s
}

func parsePrice(v string) *int64 {
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
