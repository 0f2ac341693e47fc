package users

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/techstore/storefront-backend/internal/repo"
	"github.com/techstore/storefront-backend/pkg/db/models"
)

// SQLStore exposes user persistence on the relational store.
type SQLStore struct {
	repo.Base
}

// NewSQLStore constructs a users store bound to the provided GORM DB.
func NewSQLStore(conn *gorm.DB) *SQLStore {
	return &SQLStore{Base: repo.NewBase(conn)}
}

// Get loads a user by uid.
func (s *SQLStore) Get(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := s.First(ctx, &user, ErrNotFound, "uid = ?", uid); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (s *SQLStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.First(ctx, &user, ErrNotFound, "email = ?", strings.ToLower(strings.TrimSpace(email))); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user record.
func (s *SQLStore) Create(ctx context.Context, user *models.User) error {
	record := *user
	record.Email = strings.ToLower(strings.TrimSpace(record.Email))
	return s.Insert(ctx, &record, ErrAlreadyExists)
}
