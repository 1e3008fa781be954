// Package view derives display data from cache state. Everything here is a pure function.
package view

import (
	"fmt"
	"strings"

	"github.com/abgdnv/checklist/internal/model"
)

const (
	// AllProductsLabel labels the filter option that selects every brand.
	AllProductsLabel = "All products"
	// EmptyUntickedMessage replaces the unticked list when nothing is left unchecked.
	EmptyUntickedMessage = "No unticked products found."
)

// BrandOption is one entry of the brand filter.
type BrandOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// BrandOptions prefixes brands with the "all products" option, whose value is the empty filter.
func BrandOptions(brands []string) []BrandOption {
	options := make([]BrandOption, 0, len(brands)+1)
	options = append(options, BrandOption{Value: "", Label: AllProductsLabel})
	for _, b := range brands {
		options = append(options, BrandOption{Value: b, Label: b})
	}
	return options
}

// UntickedLine renders one product as "{name} ({brand})".
func UntickedLine(p model.Product) string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Brand)
}

// UntickedLines renders each product with UntickedLine, keeping order.
func UntickedLines(products []model.Product) []string {
	lines := make([]string, len(products))
	for i, p := range products {
		lines[i] = UntickedLine(p)
	}
	return lines
}

// UntickedText joins the rendered products with ", ", or returns EmptyUntickedMessage for an empty input.
func UntickedText(products []model.Product) string {
	if len(products) == 0 {
		return EmptyUntickedMessage
	}
	return strings.Join(UntickedLines(products), ", ")
}
