package users

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/techstore/storefront-backend/internal/repo"
	"github.com/techstore/storefront-backend/pkg/db/models"
)

// CredentialStore holds password hashes for the local identity provider.
type CredentialStore struct {
	repo.Base
}

func NewCredentialStore(conn *gorm.DB) *CredentialStore {
	return &CredentialStore{Base: repo.NewBase(conn)}
}

// FindByEmail returns ErrNotFound when no credential is registered for email.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	var cred models.Credential
	if err := s.First(ctx, &cred, ErrNotFound, "email = ?", strings.ToLower(strings.TrimSpace(email))); err != nil {
		return nil, err
	}
	return &cred, nil
}

// Create returns ErrAlreadyExists when the email is taken.
func (s *CredentialStore) Create(ctx context.Context, cred *models.Credential) error {
	record := *cred
	record.Email = strings.ToLower(strings.TrimSpace(record.Email))
	return s.Insert(ctx, &record, ErrAlreadyExists)
}

// UpdatePasswordHash replaces the stored hash of uid.
func (s *CredentialStore) UpdatePasswordHash(ctx context.Context, uid, hash string) error {
	res := s.DB(ctx).Model(&models.Credential{}).Where("uid = ?", uid).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
