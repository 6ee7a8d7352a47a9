package domain

import (
	"context"

	"github.com/smallbiznis/stockroom/internal/calendar"
	"gorm.io/gorm"
)

// Repository is the persistence collaborator of the ledger. Snapshots have no
// update or delete path other than the product cascade.
type Repository interface {
	AppendSnapshot(ctx context.Context, db *gorm.DB, snapshot *Snapshot) error
	ListSnapshots(ctx context.Context, db *gorm.DB, productID int64) ([]Snapshot, error)
	LatestSnapshot(ctx context.Context, db *gorm.DB, productID int64) (*Snapshot, error)
	ListAllSnapshots(ctx context.Context, db *gorm.DB) ([]Snapshot, error)

	AppendSale(ctx context.Context, db *gorm.DB, sale *Sale) error
	UpdateSale(ctx context.Context, db *gorm.DB, sale *Sale) error
	FindSale(ctx context.Context, db *gorm.DB, productID int64, date calendar.Date) (*Sale, error)
	LatestSale(ctx context.Context, db *gorm.DB, productID int64) (*Sale, error)
	ListSales(ctx context.Context, db *gorm.DB, productID int64) ([]Sale, error)
	ListAllSales(ctx context.Context, db *gorm.DB) ([]Sale, error)

	DeleteByProduct(ctx context.Context, db *gorm.DB, productID int64) error
	CountByProduct(ctx context.Context, db *gorm.DB, productID int64) (sales int64, snapshots int64, err error)
}
