// Package catalog holds the immutable product table and its precomputed embeddings.
package catalog

import (
	"fmt"

	"github.com/MSM2025CL/stproject/internal/domain"
)

// Catalog is the read-only product table addressed by row id.
// Safe for concurrent reads once constructed.
type Catalog struct {
	rows      []Product
	byID      map[int]int
	bySKU     map[string][]int
	providers []string
}

// NewCatalog validates row ids and builds the lookup tables.
// Row order is preserved; providers are listed in first-appearance order.
func NewCatalog(products []Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("catalog: %w", domain.ErrEmptyInput)
	}

	c := &Catalog{
		rows:  make([]Product, len(products)),
		byID:  make(map[int]int, len(products)),
		bySKU: make(map[string][]int),
	}
	copy(c.rows, products)

	seenProv := make(map[string]struct{})
	for i, p := range c.rows {
		if _, dup := c.byID[p.rowID]; dup {
			return nil, fmt.Errorf("catalog: duplicate row id %d", p.rowID)
		}
		c.byID[p.rowID] = i
		if p.sku != "" {
			c.bySKU[p.sku] = append(c.bySKU[p.sku], i)
		}
		if p.provider == "" {
			continue
		}
		if _, ok := seenProv[p.provider]; !ok {
			seenProv[p.provider] = struct{}{}
			c.providers = append(c.providers, p.provider)
		}
	}
	return c, nil
}

// Len returns the number of rows.
func (c *Catalog) Len() int { return len(c.rows) }

// Rows returns all rows in catalog order. The slice must not be modified.
func (c *Catalog) Rows() []Product { return c.rows }

// Get returns the row with the given id.
func (c *Catalog) Get(rowID int) (Product, bool) {
	i, ok := c.byID[rowID]
	if !ok {
		return Product{}, false
	}
	return c.rows[i], true
}

// Providers returns distinct provider names in first-appearance order.
func (c *Catalog) Providers() []string { return c.providers }

// BySKU returns rows whose provider code equals sku, in catalog order.
func (c *Catalog) BySKU(sku string) []Product {
	idx := c.bySKU[sku]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Product, len(idx))
	for i, j := range idx {
		out[i] = c.rows[j]
	}
	return out
}
