package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/techstore/storefront-backend/internal/repo"
	"github.com/techstore/storefront-backend/pkg/db/models"
)

// SQLStore persists products through GORM on postgres or sqlite.
type SQLStore struct {
	repo.Base
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{Base: repo.NewBase(db)}
}

func (s *SQLStore) List(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := s.DB(ctx).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	q := s.DB(ctx).Where("featured = ?", true).Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.First(ctx, &product, ErrNotFound, "id = ?", id); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *SQLStore) Create(ctx context.Context, product *models.Product) (string, error) {
	record := *product
	if strings.TrimSpace(record.ID) == "" {
		record.ID = uuid.NewString()
	}
	if err := s.Insert(ctx, &record, ErrAlreadyExists); err != nil {
		return "", err
	}
	return record.ID, nil
}

// Update overwrites every column of an existing product.
func (s *SQLStore) Update(ctx context.Context, id string, product *models.Product) error {
	record := *product
	record.ID = id
	res := s.DB(ctx).
		Model(&models.Product{ID: id}).
		Select("*").
		Omit("id").
		Updates(&record)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	return s.DB(ctx).Delete(&models.Product{}, "id = ?", id).Error
}
