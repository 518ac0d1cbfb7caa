// Package service provides the storefront's product operations. It is the only
// write path to the product store, so every write goes through the keyword indexer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/abgdnv/storefront/internal/catalog"
	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/filter"
	"github.com/abgdnv/storefront/internal/recent"
	"github.com/abgdnv/storefront/internal/search"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/google/uuid"
)

const DefaultShowcaseSize = 12

// ProductService defines the operations exposed to the transport layer.
type ProductService interface {
	// FindByID returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// Featured and Recommended return up to n flagged products, newest first.
	Featured(ctx context.Context, n int) ([]ProductDto, error)
	Recommended(ctx context.Context, n int) ([]ProductDto, error)

	// List returns the catalog page after cursor, refined by f.
	// Returns ErrInvalidCursor for a cursor the pager did not produce.
	List(ctx context.Context, cursor string, f filter.State) (*PageDto, error)

	// Search runs a prefix and keyword search for term, refined by f, and records
	// the term in the owner's recent searches. An empty term lists the first
	// catalog page. Returns ErrSearchUnavailable if every search query failed.
	Search(ctx context.Context, owner, term string, f filter.State) (*SearchResultDto, error)

	// Create returns ErrProductExists if the supplied ID is taken.
	Create(ctx context.Context, dto ProductCreateDto) (*ProductDto, error)

	// Update replaces the editable fields; dateAdded is preserved.
	Update(ctx context.Context, id string, dto ProductUpdateDto) (*ProductDto, error)

	// Delete removes the product and its stored image.
	Delete(ctx context.Context, id string) error

	// UploadImage stores the product image and sets it as the product's main image.
	UploadImage(ctx context.Context, id, contentType string, data []byte) (*ProductDto, error)
	GetImage(ctx context.Context, key string) (*store.Image, error)

	RecentSearches(ctx context.Context, owner string) ([]string, error)
	RemoveRecentSearch(ctx context.Context, owner, term string) error
	ClearRecentSearches(ctx context.Context, owner string) error
}

// Components are the collaborators of Service. Publisher, Clock and Total are optional.
type Components struct {
	Store     store.ProductStore
	Images    store.ImageStorage
	Planner   *search.Planner
	Merger    *search.Merger
	Pager     *catalog.Pager
	Total     catalog.TotalCounter
	Recent    recent.Store
	Publisher messaging.Publisher
	Clock     func() time.Time
	Logger    *slog.Logger
}

// Service implements ProductService.
type Service struct {
	store     store.ProductStore
	images    store.ImageStorage
	planner   *search.Planner
	merger    *search.Merger
	pager     *catalog.Pager
	total     catalog.TotalCounter
	recent    recent.Store
	publisher messaging.Publisher
	clock     func() time.Time
	logger    *slog.Logger
}

// NewService creates a new instance of ProductService from its components.
func NewService(c Components) *Service {
	s := &Service{
		store:     c.Store,
		images:    c.Images,
		planner:   c.Planner,
		merger:    c.Merger,
		pager:     c.Pager,
		total:     c.Total,
		recent:    c.Recent,
		publisher: c.Publisher,
		clock:     c.Clock,
		logger:    c.Logger.With("component", "service"),
	}
	if s.publisher == nil {
		s.publisher = messaging.NoopPublisher{}
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.total == nil {
		s.total = catalog.NewStoreTotal(c.Store)
	}
	return s
}

func (s *Service) FindByID(ctx context.Context, id string) (*ProductDto, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	dto := toDto(p)
	return &dto, nil
}

func (s *Service) Featured(ctx context.Context, n int) ([]ProductDto, error) {
	return s.flagged(ctx, store.FieldFeatured, n)
}

func (s *Service) Recommended(ctx context.Context, n int) ([]ProductDto, error) {
	return s.flagged(ctx, store.FieldRecommended, n)
}

func (s *Service) flagged(ctx context.Context, field string, n int) ([]ProductDto, error) {
	if n <= 0 {
		n = DefaultShowcaseSize
	}
	products, err := s.store.Query(ctx, store.Query{Kind: store.KindFlag, Field: field, Limit: n})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s products: %w", field, err)
	}
	return toDtos(products), nil
}

func (s *Service) List(ctx context.Context, cursor string, f filter.State) (*PageDto, error) {
	page, err := s.pager.Page(ctx, cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog page: %w", err)
	}
	return &PageDto{
		Products:   toDtos(filter.Apply(page.Products, f)),
		NextCursor: page.NextCursor,
		Total:      page.Total,
	}, nil
}

func (s *Service) Search(ctx context.Context, owner, term string, f filter.State) (*SearchResultDto, error) {
	plan := s.planner.Plan(term)
	if len(plan) == 0 {
		page, err := s.List(ctx, "", f)
		if err != nil {
			return nil, err
		}
		return &SearchResultDto{Products: page.Products, Total: page.Total, NextCursor: page.NextCursor}, nil
	}

	merged, err := s.merger.Execute(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", term, err)
	}

	if owner != "" {
		if err := s.recent.Add(ctx, owner, term); err != nil {
			s.logger.WarnContext(ctx, "Failed to record recent search", "owner", owner, "error", err)
		}
	}

	products := filter.Apply(merged.Products, f)
	return &SearchResultDto{
		Products:      toDtos(products),
		Total:         int64(len(products)),
		Partial:       merged.Partial,
		FailedQueries: merged.FailedQueries,
	}, nil
}

func (s *Service) Create(ctx context.Context, dto ProductCreateDto) (*ProductDto, error) {
	id := dto.ID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := s.store.FindByID(ctx, id); err == nil {
		return nil, fmt.Errorf("failed to create product %s: %w", id, perrors.ErrProductExists)
	} else if !errors.Is(err, perrors.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to create product %s: %w", id, err)
	}

	p := store.Product{ID: id, DateAdded: s.clock().UnixMilli()}
	applyEdits(&p, dto.ProductUpdateDto)
	saved, err := s.save(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateTotal(ctx)
	s.publish(ctx, events.KindCreated, saved)
	dtoOut := toDto(saved)
	return &dtoOut, nil
}

func (s *Service) Update(ctx context.Context, id string, dto ProductUpdateDto) (*ProductDto, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	applyEdits(p, dto)
	saved, err := s.save(ctx, *p)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	s.publish(ctx, events.KindUpdated, saved)
	dtoOut := toDto(saved)
	return &dtoOut, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}
	if err := s.images.Delete(ctx, store.ImageKey(id)); err != nil {
		s.logger.WarnContext(ctx, "Failed to delete product image", "ID", id, "error", err)
	}

	s.invalidateTotal(ctx)
	s.publish(ctx, events.KindDeleted, &store.Product{ID: id})
	return nil
}

func (s *Service) UploadImage(ctx context.Context, id, contentType string, data []byte) (*ProductDto, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image for product %s: %w", id, err)
	}
	key := store.ImageKey(id)
	if err := s.images.Upload(ctx, key, contentType, data); err != nil {
		return nil, fmt.Errorf("failed to upload image for product %s: %w", id, err)
	}

	url := s.images.URL(key)
	p.Image = url
	if !slices.Contains(p.ImageCollection, url) {
		p.ImageCollection = append([]string{url}, p.ImageCollection...)
	}
	saved, err := s.save(ctx, *p)
	if err != nil {
		return nil, fmt.Errorf("failed to attach image to product %s: %w", id, err)
	}

	s.publish(ctx, events.KindUpdated, saved)
	dto := toDto(saved)
	return &dto, nil
}

func (s *Service) GetImage(ctx context.Context, key string) (*store.Image, error) {
	return s.images.Get(ctx, key)
}

func (s *Service) RecentSearches(ctx context.Context, owner string) ([]string, error) {
	return s.recent.List(ctx, owner)
}

func (s *Service) RemoveRecentSearch(ctx context.Context, owner, term string) error {
	return s.recent.Remove(ctx, owner, term)
}

func (s *Service) ClearRecentSearches(ctx context.Context, owner string) error {
	return s.recent.Clear(ctx, owner)
}

// save re-derives the index fields and persists the whole document.
func (s *Service) save(ctx context.Context, p store.Product) (*store.Product, error) {
	p = search.Apply(p)
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) invalidateTotal(ctx context.Context) {
	if err := s.total.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate catalog total", "error", err)
	}
}

// publish announces a committed write. Failures are logged, never returned.
func (s *Service) publish(ctx context.Context, kind string, p *store.Product) {
	event := events.ProductChangedEvent{
		Kind:      kind,
		ProductID: p.ID,
		Name:      p.Name,
		Keywords:  p.Keywords,
		ChangedAt: s.clock().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish product event", "ID", p.ID, "kind", kind, "error", err)
	}
}
