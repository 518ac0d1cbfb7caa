package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const instrumentationName = "github.com/abgdnv/storefront/internal/search"

// QueryRunner executes a single store query.
type QueryRunner interface {
	Query(ctx context.Context, q store.Query) ([]store.Product, error)
}

// MergedResult is the deduplicated outcome of a search.
// Search results are bounded by the per-query limit and are never paginated,
// so Cursor is always empty.
type MergedResult struct {
	Products      []store.Product
	Total         int
	Cursor        string
	Partial       bool
	FailedQueries []string
}

// Merger runs planned queries concurrently and merges their results in plan order.
// It keeps no per-call state and is safe for concurrent use.
type Merger struct {
	runner QueryRunner
	logger *slog.Logger
	tracer trace.Tracer
	failed metric.Int64Counter
}

func NewMerger(runner QueryRunner, logger *slog.Logger) (*Merger, error) {
	failed, err := otel.Meter(instrumentationName).Int64Counter(
		"search.queries.failed",
		metric.WithDescription("Number of search sub-queries that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search metrics: %w", err)
	}
	return &Merger{
		runner: runner,
		logger: logger.With("component", "search"),
		tracer: otel.Tracer(instrumentationName),
		failed: failed,
	}, nil
}

type outcome struct {
	products []store.Product
	err      error
}

// Execute dispatches every query of plan at once and waits for all of them.
// A failing query does not cancel the others; it is reported in FailedQueries
// and the result is marked Partial. If every query fails, Execute returns
// ErrSearchUnavailable.
func (m *Merger) Execute(ctx context.Context, plan []PlannedQuery) (*MergedResult, error) {
	ctx, span := m.tracer.Start(ctx, "search.Execute",
		trace.WithAttributes(attribute.Int("search.planned", len(plan))))
	defer span.End()

	if len(plan) == 0 {
		return &MergedResult{Products: []store.Product{}}, nil
	}

	// One slot per planned query: merge order follows the plan, not arrival.
	slots := make([]outcome, len(plan))
	var g errgroup.Group
	for i, pq := range plan {
		g.Go(func() error {
			products, err := m.runner.Query(ctx, pq.Query)
			slots[i] = outcome{products: products, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := &MergedResult{Products: make([]store.Product, 0)}
	seen := make(map[string]struct{})
	var errs []error
	for i, slot := range slots {
		if slot.err != nil {
			id := plan[i].ID
			result.FailedQueries = append(result.FailedQueries, id)
			errs = append(errs, fmt.Errorf("%s query: %w", id, slot.err))
			m.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("query", id)))
			continue
		}
		for _, p := range slot.products {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			result.Products = append(result.Products, p)
		}
	}
	result.Total = len(result.Products)
	span.SetAttributes(attribute.Int("search.failed", len(errs)))

	if len(errs) == len(plan) {
		err := errors.Join(errs...)
		span.RecordError(err)
		span.SetStatus(codes.Error, "all search queries failed")
		m.logger.ErrorContext(ctx, "All search queries failed", "error", err)
		return nil, fmt.Errorf("%w: %w", perrors.ErrSearchUnavailable, err)
	}
	if len(errs) > 0 {
		result.Partial = true
		m.logger.WarnContext(ctx, "Search returned partial results",
			"failed_queries", result.FailedQueries, "error", errors.Join(errs...))
	}
	return result, nil
}
