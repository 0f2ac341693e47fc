package catalog

import (
	"context"

	"github.com/techstore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/techstore/storefront-backend/pkg/errors"
)

// ProductReader is the read side of the backend gateway.
type ProductReader interface {
	ListProducts(ctx context.Context) []models.Product
	ListFeatured(ctx context.Context, limit int) []models.Product
	GetProduct(ctx context.Context, id string) *models.Product
}

// Listing is a filtered page of the catalog plus counts over the whole catalog.
type Listing struct {
	Products   []models.Product `json:"products"`
	Categories []CategoryCount  `json:"categories"`
	Total      int              `json:"total"`
}

// Detail is a single product with its related products.
type Detail struct {
	Product models.Product   `json:"product"`
	Related []models.Product `json:"related"`
}

type Service struct {
	reader ProductReader
	opts   Options
}

func NewService(reader ProductReader, opts Options) *Service {
	return &Service{reader: reader, opts: opts}
}

func (s *Service) Options() Options {
	return s.opts
}

// List fetches the catalog once and applies c to it.
func (s *Service) List(ctx context.Context, c Criteria) Listing {
	all := s.reader.ListProducts(ctx)
	filtered := Apply(all, c)
	return Listing{
		Products:   filtered,
		Categories: s.opts.CategoryCounts(all),
		Total:      len(filtered),
	}
}

func (s *Service) Featured(ctx context.Context) []models.Product {
	return s.reader.ListFeatured(ctx, s.opts.FeaturedLimit)
}

// Detail returns a NOT_FOUND error when id does not resolve.
func (s *Service) Detail(ctx context.Context, id string) (*Detail, error) {
	product := s.reader.GetProduct(ctx, id)
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	featured := s.reader.ListFeatured(ctx, s.opts.FeaturedLimit)
	return &Detail{
		Product: *product,
		Related: Related(*product, featured, s.opts.RelatedLimit),
	}, nil
}
