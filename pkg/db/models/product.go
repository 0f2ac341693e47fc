package models

import "time"

// Product is the catalog document. Field names match the hosted document
// store; the SQL drivers keep list and map fields as JSON columns.
type Product struct {
	ID             string            `json:"id" firestore:"-" gorm:"column:id;primaryKey"`
	Name           string            `json:"name" firestore:"name" gorm:"column:name;not null"`
	Description    string            `json:"description" firestore:"description" gorm:"column:description;not null"`
	Price          float64           `json:"price" firestore:"price" gorm:"column:price;not null"`
	OriginalPrice  *float64          `json:"originalPrice" firestore:"originalPrice" gorm:"column:original_price"`
	Category       string            `json:"category" firestore:"category" gorm:"column:category;not null;index"`
	Brand          string            `json:"brand" firestore:"brand" gorm:"column:brand"`
	Rating         float64           `json:"rating" firestore:"rating" gorm:"column:rating;not null;default:0"`
	ReviewCount    int               `json:"reviewCount" firestore:"reviewCount" gorm:"column:review_count;not null;default:0"`
	Features       []string          `json:"features" firestore:"features" gorm:"column:features;serializer:json"`
	Specifications map[string]string `json:"specifications" firestore:"specifications" gorm:"column:specifications;serializer:json"`
	InStock        bool              `json:"inStock" firestore:"inStock" gorm:"column:in_stock;not null"`
	IsNew          bool              `json:"isNew" firestore:"isNew" gorm:"column:is_new;not null"`
	Tags           []string          `json:"tags" firestore:"tags" gorm:"column:tags;serializer:json"`
	Colors         []string          `json:"colors" firestore:"colors" gorm:"column:colors;serializer:json"`
	SKU            string            `json:"sku" firestore:"sku" gorm:"column:sku"`
	Warranty       string            `json:"warranty" firestore:"warranty" gorm:"column:warranty"`
	Featured       bool              `json:"featured" firestore:"featured" gorm:"column:featured;not null;index"`
	Images         []string          `json:"images" firestore:"images" gorm:"column:images;serializer:json"`
	Image          string            `json:"image" firestore:"image" gorm:"column:image"`
	CreatedAt      time.Time         `json:"createdAt" firestore:"createdAt" gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt      time.Time         `json:"updatedAt" firestore:"updatedAt" gorm:"column:updated_at;autoUpdateTime:false"`
}

func (Product) TableName() string { return "products" }

// PrimaryImage returns the first gallery image, falling back to the legacy
// single image field.
func (p Product) PrimaryImage() string {
	if len(p.Images) > 0 && p.Images[0] != "" {
		return p.Images[0]
	}
	return p.Image
}

// Gallery returns every image of the product, including legacy records that
// only carry the single image field.
func (p Product) Gallery() []string {
	if len(p.Images) > 0 {
		out := make([]string, len(p.Images))
		copy(out, p.Images)
		return out
	}
	if p.Image != "" {
		return []string{p.Image}
	}
	return nil
}
