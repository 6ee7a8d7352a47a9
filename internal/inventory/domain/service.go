package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/calendar"
	"gorm.io/gorm"
)

// Ledger owns the per-product quantity state.
type Ledger interface {
	RecordSale(ctx context.Context, req RecordSaleRequest) (*SaleResponse, error)
	CurrentQuantity(ctx context.Context, productID int64) (int64, error)
	Adjust(ctx context.Context, productID int64, initialQuantity int64) (*Reconciliation, error)
	History(ctx context.Context, productID int64) ([]Snapshot, error)
	Sales(ctx context.Context, productID int64) ([]Sale, error)
}

// Reconciler recomputes every derived value of one product inside tx.
type Reconciler interface {
	Reconcile(ctx context.Context, tx *gorm.DB, productID int64, source SnapshotKind) (*Reconciliation, error)
}

type RecordSaleRequest struct {
	ProductID int64
	Date      calendar.Date
	UnitsSold int64
	UnitPrice decimal.Decimal
}

type SaleResponse struct {
	ProductID         int64           `json:"product_id"`
	Date              string          `json:"date"`
	UnitsSold         int64           `json:"units_sold"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	RemainingQuantity int64           `json:"remaining_quantity"`
}

// Balance is the reconciled running balance at the end of one date.
type Balance struct {
	Date              calendar.Date
	UnitsSold         int64
	RemainingQuantity int64
}

type Reconciliation struct {
	ProductID         int64
	InitialQuantity   int64
	Balances          []Balance
	SalesUpdated      int
	SnapshotsAppended int
}

// Remaining returns the final balance, or the initial quantity when there are
// no dated balances.
func (r *Reconciliation) Remaining() int64 {
	if r == nil {
		return 0
	}
	if n := len(r.Balances); n > 0 {
		return r.Balances[n-1].RemainingQuantity
	}
	return r.InitialQuantity
}

var (
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrMissingBaseline   = errors.New("missing_baseline")
	ErrNoRecord          = errors.New("no_inventory_record")
	ErrDuplicateSale     = errors.New("duplicate_sale")
	ErrInvalidUnits      = errors.New("invalid_units_sold")
	ErrInvalidPrice      = errors.New("invalid_unit_price")
	ErrInvalidQuantity   = errors.New("invalid_initial_quantity")
	ErrInvalidDate       = errors.New("invalid_date")
)
