package catalog

import (
	"fmt"
	"strings"

	"github.com/techstore/storefront-backend/pkg/config"
	"github.com/techstore/storefront-backend/pkg/db/models"
)

// PriceRange is one of the predefined price filter shortcuts.
type PriceRange struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// CategoryCount is a category name with the number of products in it.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Options is the catalog vocabulary shown to shoppers and admins.
type Options struct {
	AllSentinel   string       `json:"allSentinel"`
	Categories    []string     `json:"categories"`
	Brands        []string     `json:"brands"`
	CommonTags    []string     `json:"commonTags"`
	Colors        []string     `json:"colors"`
	PriceRanges   []PriceRange `json:"priceRanges"`
	PriceCeiling  float64      `json:"priceCeiling"`
	SortKeys      []SortKey    `json:"sortKeys"`
	FeaturedLimit int          `json:"-"`
	RelatedLimit  int          `json:"-"`
}

// NewOptions builds the catalog vocabulary from configuration.
func NewOptions(cfg config.CatalogConfig) Options {
	ceiling := cfg.PriceCeiling
	if ceiling <= 0 {
		ceiling = 10000
	}
	all := strings.TrimSpace(cfg.AllSentinel)
	if all == "" {
		all = "All Products"
	}
	return Options{
		AllSentinel:   all,
		Categories:    cleanList(cfg.Categories),
		Brands:        cleanList(cfg.Brands),
		CommonTags:    cleanList(cfg.CommonTags),
		Colors:        cleanList(cfg.Colors),
		PriceRanges:   defaultPriceRanges(ceiling),
		PriceCeiling:  ceiling,
		SortKeys:      SortKeys(),
		FeaturedLimit: positiveOr(cfg.FeaturedLimit, 8),
		RelatedLimit:  positiveOr(cfg.RelatedLimit, 4),
	}
}

// IsCategory reports whether name is a configured category.
func (o Options) IsCategory(name string) bool {
	for _, c := range o.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// NormalizeCategory maps the all sentinel and blank input to the empty
// category, which matches everything. Unknown categories are an error.
func (o Options) NormalizeCategory(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, o.AllSentinel) || strings.EqualFold(trimmed, "all") {
		return "", nil
	}
	for _, c := range o.Categories {
		if strings.EqualFold(c, trimmed) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// CategoryCounts returns the all sentinel with the total followed by one
// entry per configured category.
func (o Options) CategoryCounts(products []models.Product) []CategoryCount {
	perCategory := make(map[string]int, len(o.Categories))
	for _, p := range products {
		perCategory[p.Category]++
	}
	out := make([]CategoryCount, 0, len(o.Categories)+1)
	out = append(out, CategoryCount{Name: o.AllSentinel, Count: len(products)})
	for _, c := range o.Categories {
		out = append(out, CategoryCount{Name: c, Count: perCategory[c]})
	}
	return out
}

// Related picks up to limit featured products sharing product's category.
func Related(product models.Product, featured []models.Product, limit int) []models.Product {
	out := make([]models.Product, 0, limit)
	for _, p := range featured {
		if len(out) >= limit {
			break
		}
		if p.ID == product.ID || p.Category != product.Category {
			continue
		}
		out = append(out, p)
	}
	return out
}

func defaultPriceRanges(ceiling float64) []PriceRange {
	return []PriceRange{
		{Label: "Under $100", Min: 0, Max: 100},
		{Label: "$100 - $500", Min: 100, Max: 500},
		{Label: "$500 - $1000", Min: 500, Max: 1000},
		{Label: "Over $1000", Min: 1000, Max: ceiling},
	}
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
