package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/calendar"
)

// Service is the operator-facing product contract. Every mutation goes through
// the inventory ledger and reconciler.
type Service interface {
	Add(ctx context.Context, req AddRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
}

// AddRequest creates a product. A zero ProductID assigns the next free id and
// a zero Date means today.
type AddRequest struct {
	ProductID       int64
	Name            string
	Category        string
	InitialQuantity int64
	UnitPrice       decimal.Decimal
	UnitsSold       int64
	Date            calendar.Date
	Attributes      map[string]any
}

// UpdateRequest changes the sale on Date (default: the latest sale) and/or the
// product's initial quantity. Nil fields are left as they are.
type UpdateRequest struct {
	ProductID       int64
	Date            *calendar.Date
	UnitsSold       *int64
	UnitPrice       *decimal.Decimal
	InitialQuantity *int64
}

type ListRequest struct {
	Category string
}

// Response.RemainingQuantity is nil when the product has no inventory record.
type Response struct {
	ProductID         int64          `json:"product_id"`
	Name              string         `json:"product_name"`
	Category          string         `json:"product_category"`
	CategorySlug      string         `json:"category_slug"`
	InitialQuantity   int64          `json:"initial_quantity"`
	RemainingQuantity *int64         `json:"remaining_quantity,omitempty"`
	Attributes        map[string]any `json:"attributes,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

var (
	ErrNotFound        = errors.New("not_found")
	ErrDuplicateID     = errors.New("duplicate_id")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrNothingToUpdate = errors.New("nothing_to_update")
)
