package catalog

import (
	"fmt"
	"math"
	"strings"
)

// Product is one immutable catalog row.
type Product struct {
	rowID       int
	sku         string
	provider    string
	description string
	info        string
	listPrice   float64
	offerPrice  float64
	searchText  string
}

// New validates and creates a Product. The search text is stored lower-cased.
func New(
	rowID int, sku, provider, description, info string,
	listPrice, offerPrice float64, searchText string,
) (Product, error) {
	if rowID < 0 {
		return Product{}, fmt.Errorf("row id must be non-negative, got %d", rowID)
	}
	if math.IsNaN(listPrice) || math.IsInf(listPrice, 0) {
		return Product{}, fmt.Errorf("row %d: list price is not a finite number", rowID)
	}
	if math.IsNaN(offerPrice) || math.IsInf(offerPrice, 0) {
		return Product{}, fmt.Errorf("row %d: offer price is not a finite number", rowID)
	}

	return Product{
		rowID:       rowID,
		sku:         sku,
		provider:    provider,
		description: description,
		info:        info,
		listPrice:   listPrice,
		offerPrice:  offerPrice,
		searchText:  strings.ToLower(searchText),
	}, nil
}

// RowID returns the dense catalog row identifier.
func (p *Product) RowID() int { return p.rowID }

// SKU returns the provider product code.
func (p *Product) SKU() string { return p.sku }

// Provider returns the provider name.
func (p *Product) Provider() string { return p.provider }

// Description returns the product description.
func (p *Product) Description() string { return p.description }

// Info returns the free-text product info field.
func (p *Product) Info() string { return p.info }

// ListPrice returns the list price.
func (p *Product) ListPrice() float64 { return p.listPrice }

// OfferPrice returns the offer price (0 when the product has no offer).
func (p *Product) OfferPrice() float64 { return p.offerPrice }

// SearchText returns the lower-cased indexed search text.
func (p *Product) SearchText() string { return p.searchText }
