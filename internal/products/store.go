package products

import (
	"context"
	"errors"

	"github.com/techstore/storefront-backend/pkg/db/models"
)

// ErrNotFound is returned when a product id does not resolve to a document.
var ErrNotFound = errors.New("product not found")

// ErrAlreadyExists is returned when a create reuses an existing id.
var ErrAlreadyExists = errors.New("product already exists")

// Store is the document-store port for the product collection.
type Store interface {
	List(ctx context.Context) ([]models.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (string, error)
	Update(ctx context.Context, id string, product *models.Product) error
	Delete(ctx context.Context, id string) error
}
