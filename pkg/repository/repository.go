// Package repository provides a small generic gorm-backed store shared by the
// domain repositories.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// QueryOption mutates the gorm statement before execution.
type QueryOption func(*gorm.DB) *gorm.DB

// WithLimit caps the number of rows returned.
func WithLimit(limit int) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}

// WithOrder applies an ORDER BY expression.
func WithOrder(expr string) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(expr)
	}
}

// Repository is the generic persistence contract used by the services.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Count(ctx context.Context, query *T) (int64, error)
}
