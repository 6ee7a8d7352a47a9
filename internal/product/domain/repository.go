package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	CategorySlug string
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Product, error)
	UpdateBaseline(ctx context.Context, db *gorm.DB, id int64, initialQuantity int64, updatedAt time.Time) error
	Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error)
	MaxID(ctx context.Context, db *gorm.DB) (int64, error)
}
