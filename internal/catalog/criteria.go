package catalog

import (
	"fmt"
	"strings"
)

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

var sortKeys = []SortKey{SortFeatured, SortPriceLow, SortPriceHigh, SortRating, SortNewest}

// SortKeys lists every accepted sort key in display order.
func SortKeys() []SortKey {
	out := make([]SortKey, len(sortKeys))
	copy(out, sortKeys)
	return out
}

func (k SortKey) String() string { return string(k) }

// ParseSortKey maps user input to a SortKey. Empty input selects SortFeatured;
// anything unrecognised is an error.
func ParseSortKey(raw string) (SortKey, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return SortFeatured, nil
	}
	for _, key := range sortKeys {
		if string(key) == trimmed {
			return key, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", raw)
}

// Criteria is the full filter and sort selection for one listing request.
// An empty Category matches every category and an empty Brands set matches
// every brand.
type Criteria struct {
	Category   string
	SearchText string
	Brands     []string
	PriceMin   float64
	PriceMax   float64
	Sort       SortKey
}

// DefaultCriteria selects everything within the default price bounds.
func DefaultCriteria(priceCeiling float64) Criteria {
	return Criteria{PriceMin: 0, PriceMax: priceCeiling, Sort: SortFeatured}
}
