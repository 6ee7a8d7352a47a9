package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/calendar"
)

// SnapshotKind records why a snapshot revision was appended.
type SnapshotKind string

const (
	SnapshotKindBaseline   SnapshotKind = "baseline"
	SnapshotKindSale       SnapshotKind = "sale"
	SnapshotKindAdjustment SnapshotKind = "adjustment"
	SnapshotKindCorrection SnapshotKind = "correction"
)

// Snapshot is an immutable point-in-time inventory record. Rows are only ever
// appended; a later revision for the same product and date supersedes the
// earlier ones.
type Snapshot struct {
	ID                snowflake.ID  `gorm:"primaryKey;autoIncrement:false"`
	ProductID         int64         `gorm:"column:product_id;not null;uniqueIndex:ux_inventory_snapshots_product_date_rev,priority:1"`
	Date              calendar.Date `gorm:"column:inventory_date;type:varchar(10);not null;uniqueIndex:ux_inventory_snapshots_product_date_rev,priority:2"`
	Revision          int           `gorm:"column:revision;not null;uniqueIndex:ux_inventory_snapshots_product_date_rev,priority:3"`
	Kind              SnapshotKind  `gorm:"column:kind;type:varchar(16);not null"`
	Quantity          int64         `gorm:"column:quantity;not null"`
	RemainingQuantity int64         `gorm:"column:remaining_quantity;not null"`
	CreatedAt         time.Time     `gorm:"not null"`
}

func (Snapshot) TableName() string { return "inventory_snapshots" }

// Sale is one product's sales for one calendar date. TotalRevenue and
// RemainingQuantity are derived by the reconciler.
type Sale struct {
	ID                snowflake.ID    `gorm:"primaryKey;autoIncrement:false"`
	ProductID         int64           `gorm:"column:product_id;not null;uniqueIndex:ux_sales_product_date,priority:1"`
	Date              calendar.Date   `gorm:"column:sale_date;type:varchar(10);not null;uniqueIndex:ux_sales_product_date,priority:2"`
	UnitsSold         int64           `gorm:"column:units_sold;not null"`
	UnitPrice         decimal.Decimal `gorm:"column:unit_price;type:decimal(18,4);not null"`
	TotalRevenue      decimal.Decimal `gorm:"column:total_revenue;type:decimal(18,4);not null"`
	RemainingQuantity int64           `gorm:"column:remaining_quantity;not null"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

func (Sale) TableName() string { return "sales" }

// Revenue is units × price, the only way total_revenue is ever produced.
func Revenue(unitsSold int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(unitsSold))
}

// Effective keeps the highest revision per date, in ascending date order.
// The input must be ordered by date then revision.
func Effective(snapshots []Snapshot) []Snapshot {
	out := make([]Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if n := len(out); n > 0 && out[n-1].Date.Equal(s.Date) {
			if s.Revision > out[n-1].Revision {
				out[n-1] = s
			}
			continue
		}
		out = append(out, s)
	}
	return out
}
