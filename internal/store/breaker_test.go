package store

import (
	"context"
	"errors"
	"testing"
	"time"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore fails every call with err and counts invocations.
type failingStore struct {
	InMemory
	err   error
	calls int
}

func (f *failingStore) FindByID(_ context.Context, _ string) (*Product, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Count(_ context.Context) (int64, error) {
	f.calls++
	return 0, f.err
}

var breakerCfg = config.CircuitBreakerConfig{
	Enabled:             true,
	MaxRequests:         1,
	ConsecutiveFailures: 3,
	ErrorRatePercent:    100,
	OpenTimeout:         time.Minute,
}

func TestBreakerStore_OpensAfterConsecutiveFailures(t *testing.T) {
	// given
	inner := &failingStore{err: errors.New("connection refused")}
	b := NewBreakerStore(inner, breakerCfg)

	// when
	for range 3 {
		_, err := b.Count(context.Background())
		require.Error(t, err)
	}
	_, err := b.Count(context.Background())

	// then
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, inner.calls, "open breaker must not reach the store")
	assert.Equal(t, gobreaker.StateOpen, b.State())
}

func TestBreakerStore_NotFoundIsNotAFailure(t *testing.T) {
	// given
	inner := &failingStore{err: perrors.ErrProductNotFound}
	b := NewBreakerStore(inner, breakerCfg)

	// when
	for range 5 {
		_, err := b.FindByID(context.Background(), "missing")
		require.ErrorIs(t, err, perrors.ErrProductNotFound)
	}

	// then
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, 5, inner.calls)
}

func TestBreakerStore_PassesResultsThrough(t *testing.T) {
	// given
	inner := NewInMemoryStore()
	b := NewBreakerStore(inner, breakerCfg)
	require.NoError(t, b.Save(context.Background(), Product{ID: "p1", Name: "Bib Set"}))

	// when
	found, err := b.FindByID(context.Background(), "p1")

	// then
	require.NoError(t, err)
	assert.Equal(t, "Bib Set", found.Name)
}
