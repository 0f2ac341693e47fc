package cart

import (
	"context"
	"strings"

	"github.com/techstore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/techstore/storefront-backend/pkg/errors"
)

// ProductLookup resolves products for snapshotting.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) *models.Product
}

type Service struct {
	store    Store
	products ProductLookup
}

func NewService(store Store, products ProductLookup) *Service {
	return &Service{store: store, products: products}
}

func (s *Service) Get(ctx context.Context, cartID string) (*Cart, error) {
	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load cart")
	}
	return c, nil
}

// AddItem snapshots the product at its current price and image.
func (s *Service) AddItem(ctx context.Context, cartID, productID string, qty int) (*Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	product := s.products.GetProduct(ctx, productID)
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	c.Add(*product, qty)
	return s.save(ctx, c)
}

// UpdateQuantity ignores quantities below one.
func (s *Service) UpdateQuantity(ctx context.Context, cartID, productID string, qty int) (*Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !c.SetQuantity(productID, qty) {
		return c, nil
	}
	return s.save(ctx, c)
}

func (s *Service) RemoveItem(ctx context.Context, cartID, productID string) (*Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	c.Remove(productID)
	return s.save(ctx, c)
}

func (s *Service) Clear(ctx context.Context, cartID string) error {
	if err := s.store.Delete(ctx, cartID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to clear cart")
	}
	return nil
}

func (s *Service) save(ctx context.Context, c *Cart) (*Cart, error) {
	if err := s.store.Save(ctx, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save cart")
	}
	return c, nil
}
