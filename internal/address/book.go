package address

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dukerupert/shippor/internal/country"
	"github.com/dukerupert/shippor/internal/domain"
)

// Book is an in-memory address book. It is safe for concurrent use.
type Book struct {
	mu      sync.RWMutex
	entries []domain.Address
}

// NewBook returns a book seeded with entries.
func NewBook(entries ...domain.Address) *Book {
	return &Book{entries: slices.Clone(entries)}
}

// List returns a copy of every saved address, newest first.
func (b *Book) List(ctx context.Context) ([]domain.Address, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.entries), nil
}

// Search matches query the way the address picker does: word matches on
// the contact fields first, then postal codes compared without spaces. A
// blank query returns everything.
func (b *Book) Search(ctx context.Context, query string) ([]domain.Address, error) {
	if strings.TrimSpace(query) == "" {
		return b.List(ctx)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return mergeByID(FilterByWordMatch(b.entries, query), FilterByPostalCode(b.entries, query)), nil
}

// QuickSearch matches query against the one field the quick flow offers for
// the country. Countries without quick search match nothing.
func (b *Book) QuickSearch(ctx context.Context, meta *country.Meta, code, query string) ([]domain.Address, error) {
	field, _ := QuickSearchField(meta, code)

	b.mu.RLock()
	defer b.mu.RUnlock()

	switch field {
	case "":
		return []domain.Address{}, nil
	case "postalCode":
		return FilterByPostalCode(b.entries, query), nil
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Address, 0)
	for _, a := range b.entries {
		if v, _ := a.Field(field); strings.Contains(strings.ToLower(v), q) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Get returns the saved address with id.
func (b *Book) Get(ctx context.Context, id string) (domain.Address, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, a := range b.entries {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Address{}, false
}

// mergeByID appends the entries of rest not already in first.
func mergeByID(first, rest []domain.Address) []domain.Address {
	seen := make(map[string]bool, len(first))
	for _, a := range first {
		seen[a.ID] = true
	}
	for _, a := range rest {
		if !seen[a.ID] {
			seen[a.ID] = true
			first = append(first, a)
		}
	}
	return first
}

// Add stores a new address under a fresh id and returns it.
func (b *Book) Add(ctx context.Context, a domain.Address) (domain.Address, error) {
	a.ID = uuid.NewString()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append([]domain.Address{a}, b.entries...)
	return a, nil
}
