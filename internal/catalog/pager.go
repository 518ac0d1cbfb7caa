// Package catalog pages through the unfiltered product listing.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/storefront/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const DefaultPageSize = 12

// Lister reads the catalog in listing order.
type Lister interface {
	List(ctx context.Context, params store.ListParams) ([]store.Product, error)
}

// Page is one page of the catalog listing.
// NextCursor is empty on the last page. Total counts the whole catalog.
type Page struct {
	Products   []store.Product
	NextCursor string
	Total      int64
}

type Pager struct {
	lister   Lister
	total    TotalCounter
	pageSize int
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewPager creates a pager returning pageSize products per page.
// A non-positive pageSize selects DefaultPageSize.
func NewPager(lister Lister, total TotalCounter, pageSize int, logger *slog.Logger) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{
		lister:   lister,
		total:    total,
		pageSize: pageSize,
		logger:   logger.With("component", "catalog"),
		tracer:   otel.Tracer("github.com/abgdnv/storefront/internal/catalog"),
	}
}

// Page returns the page following cursor, or the first page for an empty cursor.
// The listing and the total are fetched concurrently.
func (p *Pager) Page(ctx context.Context, cursor string) (*Page, error) {
	ctx, span := p.tracer.Start(ctx, "catalog.Page",
		trace.WithAttributes(attribute.Bool("catalog.first_page", cursor == "")))
	defer span.End()

	params := store.ListParams{Limit: p.pageSize + 1}
	if cursor != "" {
		after, err := DecodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		params.After = &after
	}

	var (
		products []store.Product
		total    int64
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = p.lister.List(gCtx, params)
		if err != nil {
			return fmt.Errorf("failed to list catalog: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = p.total.Total(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count catalog: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	page := &Page{Products: products, Total: total}
	// One lookahead row tells whether another page follows.
	if len(products) > p.pageSize {
		page.Products = products[:p.pageSize]
		page.NextCursor = EncodeCursor(page.Products[p.pageSize-1].Position())
	}
	span.SetAttributes(attribute.Int("catalog.items", len(page.Products)))
	p.logger.DebugContext(ctx, "Catalog page served", "items", len(page.Products), "total", total)
	return page, nil
}
