package store

import (
	"context"
	"errors"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// BreakerStore wraps a ProductStore in a circuit breaker.
// While the breaker is open every call fails fast with gobreaker.ErrOpenState.
type BreakerStore struct {
	next ProductStore
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore decorates next with a circuit breaker configured from cfg.
func NewBreakerStore(next ProductStore, cfg config.CircuitBreakerConfig) *BreakerStore {
	st := gobreaker.Settings{
		Name:        "product-store-cb",
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(counts.Requests > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(counts.Requests)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			// A missing document or a cancelled caller says nothing about store health.
			return err == nil ||
				errors.Is(err, perrors.ErrProductNotFound) ||
				errors.Is(err, context.Canceled)
		},
	}
	return &BreakerStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](st),
	}
}

// State exposes the breaker state, e.g. for health reporting.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) Save(ctx context.Context, p Product) error {
	_, err := execute(b.cb, func() (struct{}, error) {
		return struct{}{}, b.next.Save(ctx, p)
	})
	return err
}

func (b *BreakerStore) FindByID(ctx context.Context, id string) (*Product, error) {
	return execute(b.cb, func() (*Product, error) {
		return b.next.FindByID(ctx, id)
	})
}

func (b *BreakerStore) Delete(ctx context.Context, id string) error {
	_, err := execute(b.cb, func() (struct{}, error) {
		return struct{}{}, b.next.Delete(ctx, id)
	})
	return err
}

func (b *BreakerStore) Query(ctx context.Context, q Query) ([]Product, error) {
	return execute(b.cb, func() ([]Product, error) {
		return b.next.Query(ctx, q)
	})
}

func (b *BreakerStore) List(ctx context.Context, params ListParams) ([]Product, error) {
	return execute(b.cb, func() ([]Product, error) {
		return b.next.List(ctx, params)
	})
}

func (b *BreakerStore) Count(ctx context.Context) (int64, error) {
	return execute(b.cb, func() (int64, error) {
		return b.next.Count(ctx)
	})
}

func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (any, error) {
		return fn()
	})
	// res is nil when the breaker rejects the call.
	v, _ := res.(T)
	return v, err
}
