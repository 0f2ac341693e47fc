package productform

import (
	"strings"
	"time"

	"github.com/techstore/storefront-backend/pkg/db/models"
	"github.com/techstore/storefront-backend/pkg/enums"
)

// Validate runs the checks that must pass before any upload or write.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.name) == "" ||
		!d.priceSet ||
		strings.TrimSpace(d.category) == "" ||
		strings.TrimSpace(d.description) == "" {
		return ErrRequiredFields
	}
	if len(d.existing)+len(d.staged) == 0 {
		return ErrNoImages
	}
	return nil
}

// Build produces the record to persist. Retained existing images come first,
// followed by uploaded in upload order.
func (d *Draft) Build(uploaded []string, now time.Time) models.Product {
	images := make([]string, 0, len(d.existing)+len(uploaded))
	images = append(images, d.existing...)
	images = append(images, uploaded...)

	var primary string
	if len(images) > 0 {
		primary = images[0]
	}

	createdAt := now
	if d.IsEditing() && !d.createdAt.IsZero() {
		createdAt = d.createdAt
	}

	var originalPrice *float64
	if d.originalPrice != nil {
		v := *d.originalPrice
		originalPrice = &v
	}

	return models.Product{
		ID:             d.productID,
		Name:           strings.TrimSpace(d.name),
		Description:    strings.TrimSpace(d.description),
		Price:          d.price,
		OriginalPrice:  originalPrice,
		Category:       d.category,
		Brand:          d.brand,
		Rating:         d.rating,
		ReviewCount:    d.reviewCount,
		Features:       nonBlank(d.lists[enums.ListFieldFeatures]),
		Specifications: collapseSpecs(d.specs),
		InStock:        d.inStock,
		IsNew:          d.isNew,
		Tags:           nonBlank(d.lists[enums.ListFieldTags]),
		Colors:         nonBlank(d.lists[enums.ListFieldColors]),
		SKU:            d.sku,
		Warranty:       d.warranty,
		Featured:       d.featured,
		Images:         images,
		Image:          primary,
		CreatedAt:      createdAt,
		UpdatedAt:      now,
	}
}

// collapseSpecs drops rows missing a key or a value; later duplicates win.
func collapseSpecs(pairs []SpecPair) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key := strings.TrimSpace(p.Key)
		value := strings.TrimSpace(p.Value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
