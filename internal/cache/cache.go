// Package cache provides the in-memory mirror of the remote product collection.
package cache

import (
	"iter"
	"slices"
	"sync"

	"github.com/abgdnv/checklist/internal/model"
)

// View is a lazily evaluated, read-only sequence of products in cache order.
type View iter.Seq[model.Product]

// Collect materializes the view.
func (v View) Collect() []model.Product {
	if v == nil {
		return []model.Product{}
	}
	list := make([]model.Product, 0)
	for p := range v {
		list = append(list, p)
	}
	return list
}

// ProductCache keeps products in insertion/fetch order with exactly one record per id.
// All methods are safe for concurrent use and never perform I/O.
type ProductCache struct {
	mu       sync.RWMutex
	products []model.Product
	index    map[string]int // id -> position in products
}

// New creates an empty ProductCache.
func New() *ProductCache {
	return &ProductCache{
		index: make(map[string]int),
	}
}

// ReplaceAll discards the current contents and stores products in the given order.
// A repeated id keeps its first position and the fields of its last occurrence.
func (c *ProductCache) ReplaceAll(products []model.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products = make([]model.Product, 0, len(products))
	c.index = make(map[string]int, len(products))
	for _, p := range products {
		c.upsertLocked(p)
	}
}

// Upsert inserts p if its id is unseen, otherwise replaces the stored record in place.
func (c *ProductCache) Upsert(p model.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.upsertLocked(p)
}

// Replace overwrites the record with p's id and reports whether one was present.
// Unlike Upsert it never inserts.
func (c *ProductCache) Replace(p model.Product) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[p.ID]
	if !ok {
		return false
	}
	c.products[i] = p
	return true
}

// Remove deletes the record with the given id. Absent ids are ignored.
func (c *ProductCache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return
	}
	c.products = slices.Delete(c.products, i, i+1)
	delete(c.index, id)
	for j := i; j < len(c.products); j++ {
		c.index[c.products[j].ID] = j
	}
}

// Get returns a copy of the record with the given id.
func (c *ProductCache) Get(id string) (model.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i], true
}

// Len returns the number of cached products.
func (c *ProductCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.products)
}

// All returns a copy of every cached product in stored order.
func (c *ProductCache) All() []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.products)
}

// FilterByBrand returns the products whose brand equals brand, in stored order.
// An empty brand selects everything. The view iterates over a snapshot taken at call time,
// so later cache mutations do not affect it.
func (c *ProductCache) FilterByBrand(brand string) View {
	snapshot := c.All()
	return func(yield func(model.Product) bool) {
		for _, p := range snapshot {
			if brand != "" && p.Brand != brand {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// UncheckedOf narrows view to the products that are not checked, keeping their order.
func UncheckedOf(view View) View {
	return func(yield func(model.Product) bool) {
		if view == nil {
			return
		}
		for p := range view {
			if p.Checked {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// DistinctBrands returns every brand present in the cache, deduplicated and sorted ascending.
func (c *ProductCache) DistinctBrands() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{}, len(c.products))
	brands := make([]string, 0, len(c.products))
	for _, p := range c.products {
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		brands = append(brands, p.Brand)
	}
	slices.Sort(brands)
	return brands
}

func (c *ProductCache) upsertLocked(p model.Product) {
	if i, ok := c.index[p.ID]; ok {
		c.products[i] = p
		return
	}
	c.index[p.ID] = len(c.products)
	c.products = append(c.products, p)
}
