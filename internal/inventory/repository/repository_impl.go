package repository

import (
	"context"

	"github.com/smallbiznis/stockroom/internal/calendar"
	"github.com/smallbiznis/stockroom/internal/inventory/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const snapshotColumns = `id, product_id, inventory_date, revision, kind, quantity, remaining_quantity, created_at`

const saleColumns = `id, product_id, sale_date, units_sold, unit_price, total_revenue, remaining_quantity, created_at, updated_at`

func (r *repo) AppendSnapshot(ctx context.Context, db *gorm.DB, s *domain.Snapshot) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO inventory_snapshots (`+snapshotColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.ProductID,
		s.Date,
		s.Revision,
		string(s.Kind),
		s.Quantity,
		s.RemainingQuantity,
		s.CreatedAt,
	).Error
}

func (r *repo) ListSnapshots(ctx context.Context, db *gorm.DB, productID int64) ([]domain.Snapshot, error) {
	var items []domain.Snapshot
	err := db.WithContext(ctx).Raw(
		`SELECT `+snapshotColumns+` FROM inventory_snapshots
		 WHERE product_id = ?
		 ORDER BY inventory_date ASC, revision ASC`,
		productID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) LatestSnapshot(ctx context.Context, db *gorm.DB, productID int64) (*domain.Snapshot, error) {
	var items []domain.Snapshot
	err := db.WithContext(ctx).Raw(
		`SELECT `+snapshotColumns+` FROM inventory_snapshots
		 WHERE product_id = ?
		 ORDER BY inventory_date DESC, revision DESC
		 LIMIT 1`,
		productID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *repo) ListAllSnapshots(ctx context.Context, db *gorm.DB) ([]domain.Snapshot, error) {
	var items []domain.Snapshot
	err := db.WithContext(ctx).Raw(
		`SELECT ` + snapshotColumns + ` FROM inventory_snapshots
		 ORDER BY product_id ASC, inventory_date ASC, revision ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) AppendSale(ctx context.Context, db *gorm.DB, s *domain.Sale) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO sales (`+saleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.ProductID,
		s.Date,
		s.UnitsSold,
		s.UnitPrice,
		s.TotalRevenue,
		s.RemainingQuantity,
		s.CreatedAt,
		s.UpdatedAt,
	).Error
}

func (r *repo) UpdateSale(ctx context.Context, db *gorm.DB, s *domain.Sale) error {
	return db.WithContext(ctx).Exec(
		`UPDATE sales
		 SET units_sold = ?, unit_price = ?, total_revenue = ?, remaining_quantity = ?, updated_at = ?
		 WHERE id = ?`,
		s.UnitsSold,
		s.UnitPrice,
		s.TotalRevenue,
		s.RemainingQuantity,
		s.UpdatedAt,
		s.ID,
	).Error
}

func (r *repo) FindSale(ctx context.Context, db *gorm.DB, productID int64, date calendar.Date) (*domain.Sale, error) {
	var items []domain.Sale
	err := db.WithContext(ctx).Raw(
		`SELECT `+saleColumns+` FROM sales WHERE product_id = ? AND sale_date = ?`,
		productID,
		date,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *repo) LatestSale(ctx context.Context, db *gorm.DB, productID int64) (*domain.Sale, error) {
	var items []domain.Sale
	err := db.WithContext(ctx).Raw(
		`SELECT `+saleColumns+` FROM sales WHERE product_id = ? ORDER BY sale_date DESC LIMIT 1`,
		productID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *repo) ListSales(ctx context.Context, db *gorm.DB, productID int64) ([]domain.Sale, error) {
	var items []domain.Sale
	err := db.WithContext(ctx).Raw(
		`SELECT `+saleColumns+` FROM sales WHERE product_id = ? ORDER BY sale_date ASC`,
		productID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListAllSales(ctx context.Context, db *gorm.DB) ([]domain.Sale, error) {
	var items []domain.Sale
	err := db.WithContext(ctx).Raw(
		`SELECT ` + saleColumns + ` FROM sales ORDER BY product_id ASC, sale_date ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteByProduct(ctx context.Context, db *gorm.DB, productID int64) error {
	if err := db.WithContext(ctx).Exec(`DELETE FROM sales WHERE product_id = ?`, productID).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(`DELETE FROM inventory_snapshots WHERE product_id = ?`, productID).Error
}

func (r *repo) CountByProduct(ctx context.Context, db *gorm.DB, productID int64) (int64, int64, error) {
	var sales, snapshots int64
	if err := db.WithContext(ctx).Model(&domain.Sale{}).Where("product_id = ?", productID).Count(&sales).Error; err != nil {
		return 0, 0, err
	}
	if err := db.WithContext(ctx).Model(&domain.Snapshot{}).Where("product_id = ?", productID).Count(&snapshots).Error; err != nil {
		return 0, 0, err
	}
	return sales, snapshots, nil
}
