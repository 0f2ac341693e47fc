package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/techstore/storefront-backend/pkg/db"
)

// Base is embedded by the SQL document stores.
type Base struct {
	db *gorm.DB
}

func NewBase(conn *gorm.DB) Base {
	return Base{db: conn}
}

// DB returns the connection bound to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// First loads the first row matching query into dest and returns notFound
// when there is none.
func (b Base) First(ctx context.Context, dest any, notFound error, query string, args ...any) error {
	err := b.DB(ctx).Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// Insert creates record and returns conflict on a unique constraint violation.
func (b Base) Insert(ctx context.Context, record any, conflict error) error {
	err := b.DB(ctx).Create(record).Error
	if err != nil && conflict != nil && db.IsUniqueViolation(err, "") {
		return conflict
	}
	return err
}
