package productform

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/techstore/storefront-backend/pkg/db/models"
	"github.com/techstore/storefront-backend/pkg/enums"
)

const defaultRating = 4.0

// Submit-time validation messages shown to the admin.
const (
	MsgRequiredFields = "Please fill in all required fields"
	MsgNoImages       = "Please upload at least one product image"
)

var (
	ErrRequiredFields = errors.New(MsgRequiredFields)
	ErrNoImages       = errors.New(MsgNoImages)
)

// SpecPair is one editable specification row. Rows may be incomplete or
// duplicated while editing; Build resolves them.
type SpecPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SpecPart selects the half of a SpecPair being edited.
type SpecPart string

const (
	SpecKey   SpecPart = "key"
	SpecValue SpecPart = "value"
)

// StagedFile is an accepted image waiting to be uploaded.
type StagedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Preview is one entry of the unified image list, tagged with its pool.
type Preview struct {
	Source   enums.ImageSource `json:"source"`
	URL      string            `json:"url,omitempty"`
	Filename string            `json:"filename,omitempty"`
}

// Limits bound what a draft accepts.
type Limits struct {
	MaxImageBytes int64
	Categories    []string
}

// Draft is the admin's working copy of a product.
type Draft struct {
	limits Limits

	productID string
	createdAt time.Time

	name          string
	description   string
	price         float64
	priceSet      bool
	originalPrice *float64
	category      string
	brand         string
	rating        float64
	reviewCount   int
	inStock       bool
	isNew         bool
	featured      bool
	sku           string
	warranty      string

	lists map[enums.ListField][]string
	specs []SpecPair

	existing []string
	staged   []StagedFile
	previews []Preview
	removed  []string
}

// NewDraft returns an empty form: one blank row per list field and spec.
func NewDraft(limits Limits) *Draft {
	d := &Draft{limits: limits}
	d.Reset()
	return d
}

// Reset discards every edit, staged file and image removal.
func (d *Draft) Reset() {
	limits := d.limits
	*d = Draft{
		limits:  limits,
		rating:  defaultRating,
		inStock: true,
		lists: map[enums.ListField][]string{
			enums.ListFieldFeatures: {""},
			enums.ListFieldTags:     {""},
			enums.ListFieldColors:   {""},
		},
		specs: []SpecPair{{}},
	}
}

// Edit seeds the draft from a persisted product.
func (d *Draft) Edit(p models.Product) {
	d.Reset()
	d.productID = p.ID
	d.createdAt = p.CreatedAt

	d.name = p.Name
	d.description = p.Description
	d.price = p.Price
	d.priceSet = true
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		d.originalPrice = &v
	}
	d.category = p.Category
	d.brand = p.Brand
	d.rating = p.Rating
	d.reviewCount = p.ReviewCount
	d.inStock = p.InStock
	d.isNew = p.IsNew
	d.featured = p.Featured
	d.sku = p.SKU
	d.warranty = p.Warranty

	d.lists[enums.ListFieldFeatures] = seedList(p.Features)
	d.lists[enums.ListFieldTags] = seedList(p.Tags)
	d.lists[enums.ListFieldColors] = seedList(p.Colors)

	if len(p.Specifications) > 0 {
		keys := make([]string, 0, len(p.Specifications))
		for k := range p.Specifications {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d.specs = make([]SpecPair, 0, len(keys))
		for _, k := range keys {
			d.specs = append(d.specs, SpecPair{Key: k, Value: p.Specifications[k]})
		}
	}

	for _, url := range p.Gallery() {
		d.existing = append(d.existing, url)
		d.previews = append(d.previews, Preview{Source: enums.ImageSourceExisting, URL: url})
	}
}

func seedList(values []string) []string {
	if len(values) == 0 {
		return []string{""}
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func (d *Draft) ProductID() string { return d.productID }

// IsEditing reports whether the draft was seeded from a persisted product.
func (d *Draft) IsEditing() bool { return d.productID != "" }

// Scalar setters.

func (d *Draft) SetName(v string) {
	d.name = v
}

func (d *Draft) SetDescription(v string) {
	d.description = v
}

func (d *Draft) SetPrice(v float64) error {
	if v < 0 {
		return errors.New("price must not be negative")
	}
	d.price = v
	d.priceSet = true
	return nil
}

// SetOriginalPrice clears the original price when v is nil.
func (d *Draft) SetOriginalPrice(v *float64) error {
	if v == nil {
		d.originalPrice = nil
		return nil
	}
	if *v < 0 {
		return errors.New("original price must not be negative")
	}
	price := *v
	d.originalPrice = &price
	return nil
}

// SetCategory accepts blank input, which Validate later rejects, or one of
// the configured categories.
func (d *Draft) SetCategory(v string) error {
	v = strings.TrimSpace(v)
	if v != "" && len(d.limits.Categories) > 0 && !contains(d.limits.Categories, v) {
		return fmt.Errorf("unknown category %q", v)
	}
	d.category = v
	return nil
}

func (d *Draft) SetBrand(v string) {
	d.brand = strings.TrimSpace(v)
}

func (d *Draft) SetRating(v float64) error {
	if v < 0 || v > 5 {
		return errors.New("rating must be between 0 and 5")
	}
	d.rating = v
	return nil
}

func (d *Draft) SetReviewCount(v int) error {
	if v < 0 {
		return errors.New("review count must not be negative")
	}
	d.reviewCount = v
	return nil
}

func (d *Draft) SetInStock(v bool)  { d.inStock = v }
func (d *Draft) SetIsNew(v bool)    { d.isNew = v }
func (d *Draft) SetFeatured(v bool) { d.featured = v }
func (d *Draft) SetSKU(v string)    { d.sku = strings.TrimSpace(v) }

func (d *Draft) SetWarranty(v string) {
	d.warranty = strings.TrimSpace(v)
}

// List fields.

// List returns a copy of the rows of field.
func (d *Draft) List(field enums.ListField) []string {
	rows := d.lists[field]
	out := make([]string, len(rows))
	copy(out, rows)
	return out
}

// SetList replaces every row of field.
func (d *Draft) SetList(field enums.ListField, values []string) error {
	if !field.IsValid() {
		return fmt.Errorf("invalid list field %q", field)
	}
	d.lists[field] = seedList(values)
	return nil
}

// Append adds a blank row to field.
func (d *Draft) Append(field enums.ListField) error {
	if !field.IsValid() {
		return fmt.Errorf("invalid list field %q", field)
	}
	d.lists[field] = append(d.lists[field], "")
	return nil
}

func (d *Draft) Update(field enums.ListField, i int, v string) error {
	rows, err := d.rows(field, i)
	if err != nil {
		return err
	}
	rows[i] = v
	return nil
}

func (d *Draft) Remove(field enums.ListField, i int) error {
	rows, err := d.rows(field, i)
	if err != nil {
		return err
	}
	d.lists[field] = append(rows[:i:i], rows[i+1:]...)
	return nil
}

func (d *Draft) rows(field enums.ListField, i int) ([]string, error) {
	if !field.IsValid() {
		return nil, fmt.Errorf("invalid list field %q", field)
	}
	rows := d.lists[field]
	if i < 0 || i >= len(rows) {
		return nil, fmt.Errorf("%s index %d out of range", field, i)
	}
	return rows, nil
}

// AddCommonTag appends tag unless already present, dropping blank rows first.
func (d *Draft) AddCommonTag(tag string) {
	d.addCommon(enums.ListFieldTags, tag)
}

// AddCommonColor appends color unless already present, dropping blank rows first.
func (d *Draft) AddCommonColor(color string) {
	d.addCommon(enums.ListFieldColors, color)
}

func (d *Draft) addCommon(field enums.ListField, value string) {
	rows := d.lists[field]
	if contains(rows, value) {
		return
	}
	out := make([]string, 0, len(rows)+1)
	for _, r := range rows {
		if r != "" {
			out = append(out, r)
		}
	}
	d.lists[field] = append(out, value)
}

// Specifications.

func (d *Draft) Specs() []SpecPair {
	out := make([]SpecPair, len(d.specs))
	copy(out, d.specs)
	return out
}

// SetSpecs replaces every specification row.
func (d *Draft) SetSpecs(pairs []SpecPair) {
	if len(pairs) == 0 {
		d.specs = []SpecPair{{}}
		return
	}
	d.specs = make([]SpecPair, len(pairs))
	copy(d.specs, pairs)
}

func (d *Draft) AppendSpec() {
	d.specs = append(d.specs, SpecPair{})
}

func (d *Draft) UpdateSpec(i int, part SpecPart, v string) error {
	if i < 0 || i >= len(d.specs) {
		return fmt.Errorf("specification index %d out of range", i)
	}
	switch part {
	case SpecKey:
		d.specs[i].Key = v
	case SpecValue:
		d.specs[i].Value = v
	default:
		return fmt.Errorf("invalid specification part %q", part)
	}
	return nil
}

func (d *Draft) RemoveSpec(i int) error {
	if i < 0 || i >= len(d.specs) {
		return fmt.Errorf("specification index %d out of range", i)
	}
	d.specs = append(d.specs[:i:i], d.specs[i+1:]...)
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
