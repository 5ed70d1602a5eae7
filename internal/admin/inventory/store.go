package inventory

import (
	"sync"

	"github.com/shopspring/decimal"

	"finitefield.org/stock-admin/internal/admin/catalog"
)

// LowStockThreshold is the inclusive stock level at which a product counts as low.
const LowStockThreshold = 5

// Store holds the most recent catalog fetch. ReplaceAll is the only way to change it.
type Store struct {
	mu       sync.RWMutex
	products []catalog.Product
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// ReplaceAll swaps the stored list for a copy of products.
func (s *Store) ReplaceAll(products []catalog.Product) {
	next := make([]catalog.Product, len(products))
	copy(next, products)

	s.mu.Lock()
	s.products = next
	s.mu.Unlock()
}

// Products returns a copy of the stored list in remote order.
func (s *Store) Products() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Find returns the first product whose business key matches key.
func (s *Store) Find(key string) (catalog.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findByKey(s.products, key)
}

// Stats summarises a product list.
type Stats struct {
	Total      int
	LowCount   int
	TotalValue decimal.Decimal
}

// ComputeStats totals the list. Negative stock contributes its raw value.
func ComputeStats(products []catalog.Product) Stats {
	stats := Stats{Total: len(products), TotalValue: decimal.Zero}
	for _, p := range products {
		if p.Stock <= LowStockThreshold {
			stats.LowCount++
		}
		stats.TotalValue = stats.TotalValue.Add(p.Value())
	}
	return stats
}
