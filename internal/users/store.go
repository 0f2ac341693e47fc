package users

import (
	"context"
	"errors"

	"github.com/techstore/storefront-backend/pkg/db/models"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

// Store persists user profile records keyed by identity uid.
type Store interface {
	Get(ctx context.Context, uid string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}
