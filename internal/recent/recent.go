// Package recent keeps a bounded, newest-first history of search terms per owner.
package recent

import (
	"context"
	"slices"
	"strings"
	"sync"
)

const DefaultCap = 10

// Store is a per-owner list of distinct search terms, newest first.
// Terms are trimmed and lowercased; empty terms are ignored.
type Store interface {
	// Add puts term at the front, moving it there if already present,
	// and evicts the oldest terms beyond the cap.
	Add(ctx context.Context, owner, term string) error
	// Remove deletes term; removing an absent term is a no-op.
	Remove(ctx context.Context, owner, term string) error
	Clear(ctx context.Context, owner string) error
	List(ctx context.Context, owner string) ([]string, error)
}

func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func capOrDefault(n int) int {
	if n <= 0 {
		return DefaultCap
	}
	return n
}

// Memory is a process-local Store.
type Memory struct {
	mu    sync.Mutex
	limit int
	terms map[string][]string
}

func NewMemory(capacity int) *Memory {
	return &Memory{limit: capOrDefault(capacity), terms: make(map[string][]string)}
}

func (m *Memory) Add(_ context.Context, owner, term string) error {
	term = normalize(term)
	if term == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	list := slices.DeleteFunc(m.terms[owner], func(t string) bool { return t == term })
	list = slices.Insert(list, 0, term)
	if len(list) > m.limit {
		list = list[:m.limit]
	}
	m.terms[owner] = list
	return nil
}

func (m *Memory) Remove(_ context.Context, owner, term string) error {
	term = normalize(term)
	m.mu.Lock()
	defer m.mu.Unlock()

	list, ok := m.terms[owner]
	if !ok {
		return nil
	}
	m.terms[owner] = slices.DeleteFunc(list, func(t string) bool { return t == term })
	return nil
}

func (m *Memory) Clear(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.terms, owner)
	return nil
}

func (m *Memory) List(_ context.Context, owner string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.terms[owner]...), nil
}
