package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/stockroom/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (product_id, product_name, product_category, category_slug, initial_quantity, attributes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ProductID,
		product.Name,
		product.Category,
		product.CategorySlug,
		product.InitialQuantity,
		product.Attributes,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT product_id, product_name, product_category, category_slug, initial_quantity, attributes, created_at, updated_at
		 FROM products WHERE product_id = ?`,
		id,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Product, error) {
	var items []domain.Product
	stmt := db.WithContext(ctx).Model(&domain.Product{})
	if filter.CategorySlug != "" {
		stmt = stmt.Where("category_slug = ?", filter.CategorySlug)
	}
	if err := stmt.Order("product_id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateBaseline(ctx context.Context, db *gorm.DB, id int64, initialQuantity int64, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET initial_quantity = ?, updated_at = ? WHERE product_id = ?`,
		initialQuantity,
		updatedAt,
		id,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM products WHERE product_id = ?`, id)
	return result.RowsAffected, result.Error
}

func (r *repo) MaxID(ctx context.Context, db *gorm.DB) (int64, error) {
	var row struct {
		MaxID *int64
	}
	if err := db.WithContext(ctx).Raw(`SELECT MAX(product_id) AS max_id FROM products`).Scan(&row).Error; err != nil {
		return 0, err
	}
	if row.MaxID == nil {
		return 0, nil
	}
	return *row.MaxID, nil
}
