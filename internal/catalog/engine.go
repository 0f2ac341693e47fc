package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/techstore/storefront-backend/pkg/db/models"
)

// Apply returns the products matching every predicate in c, ordered by c.Sort.
// The input slice is never modified and ties keep their input order.
func Apply(products []models.Product, c Criteria) []models.Product {
	brands := make(map[string]struct{}, len(c.Brands))
	for _, b := range c.Brands {
		if b = strings.TrimSpace(b); b != "" {
			brands[b] = struct{}{}
		}
	}
	search := strings.ToLower(strings.TrimSpace(c.SearchText))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !matchesCategory(p, c.Category) ||
			!matchesSearch(p, search) ||
			!matchesBrand(p, brands) ||
			p.Price < c.PriceMin || p.Price > c.PriceMax {
			continue
		}
		out = append(out, p)
	}

	less := comparator(c.Sort)
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

func matchesCategory(p models.Product, category string) bool {
	return category == "" || p.Category == category
}

func matchesSearch(p models.Product, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func matchesBrand(p models.Product, brands map[string]struct{}) bool {
	if len(brands) == 0 {
		return true
	}
	if p.Brand == "" {
		return false
	}
	_, ok := brands[p.Brand]
	return ok
}

func comparator(key SortKey) func(a, b *models.Product) bool {
	switch key {
	case SortFeatured, "":
		return func(a, b *models.Product) bool { return a.Featured && !b.Featured }
	case SortPriceLow:
		return func(a, b *models.Product) bool { return a.Price < b.Price }
	case SortPriceHigh:
		return func(a, b *models.Product) bool { return a.Price > b.Price }
	case SortRating:
		return func(a, b *models.Product) bool { return a.Rating > b.Rating }
	case SortNewest:
		return func(a, b *models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		// keys only enter through ParseSortKey
		panic(fmt.Sprintf("catalog: unhandled sort key %q", key))
	}
}
