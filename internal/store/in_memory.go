package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	perrors "github.com/abgdnv/storefront/internal/errors"
)

// InMemory implements ProductStore using an in-memory map.
// Query and List follow the same ordering rules as PgStore.
type InMemory struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewInMemoryStore creates a new, empty in-memory store.
func NewInMemoryStore() *InMemory {
	return &InMemory{
		products: make(map[string]Product),
	}
}

func (s *InMemory) Save(_ context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = clone(p)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	p = clone(p)
	return &p, nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return perrors.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *InMemory) Query(_ context.Context, q Query) ([]Product, error) {
	var (
		match func(p *Product) bool
		order = byListing
	)
	switch q.Kind {
	case KindPrefixRange:
		field, err := rangeField(q.Field)
		if err != nil {
			return nil, err
		}
		match = func(p *Product) bool {
			v := field(p)
			return v >= q.From && v <= q.To
		}
		order = func(a, b Product) int {
			return cmp.Or(cmp.Compare(field(&a), field(&b)), cmp.Compare(a.ID, b.ID))
		}
	case KindContainsAny:
		if q.Field != FieldKeywords {
			return nil, fmt.Errorf("unsupported array field %q", q.Field)
		}
		match = func(p *Product) bool {
			return slices.ContainsFunc(p.Keywords, func(k string) bool { return slices.Contains(q.Values, k) })
		}
	case KindFlag:
		switch q.Field {
		case FieldFeatured:
			match = func(p *Product) bool { return p.IsFeatured }
		case FieldRecommended:
			match = func(p *Product) bool { return p.IsRecommended }
		default:
			return nil, fmt.Errorf("unsupported flag field %q", q.Field)
		}
	default:
		return nil, fmt.Errorf("unsupported query kind %d", q.Kind)
	}

	s.mu.RLock()
	result := make([]Product, 0)
	for _, p := range s.products {
		if match(&p) {
			result = append(result, clone(p))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(result, order)
	return truncate(result, q.Limit), nil
}

func (s *InMemory) List(_ context.Context, params ListParams) ([]Product, error) {
	s.mu.RLock()
	result := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if params.After != nil && !params.After.Before(p.Position()) {
			continue
		}
		result = append(result, clone(p))
	}
	s.mu.RUnlock()

	slices.SortFunc(result, byListing)
	return truncate(result, params.Limit), nil
}

func (s *InMemory) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

func byListing(a, b Product) int {
	return cmp.Or(cmp.Compare(b.DateAdded, a.DateAdded), cmp.Compare(a.ID, b.ID))
}

func rangeField(field string) (func(p *Product) string, error) {
	switch field {
	case FieldNameLower:
		return func(p *Product) string { return p.NameLower }, nil
	case FieldBrandLower:
		return func(p *Product) string { return p.BrandLower }, nil
	case FieldDescriptionLower:
		return func(p *Product) string { return p.DescriptionLower }, nil
	}
	return nil, fmt.Errorf("unsupported range field %q", field)
}

func truncate(products []Product, limit int) []Product {
	if limit > 0 && len(products) > limit {
		return products[:limit]
	}
	return products
}

// clone detaches slices so callers cannot mutate stored documents.
func clone(p Product) Product {
	p.Sizes = slices.Clone(p.Sizes)
	p.Keywords = slices.Clone(p.Keywords)
	p.ImageCollection = slices.Clone(p.ImageCollection)
	return p
}
