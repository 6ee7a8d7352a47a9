package domain

import (
	"context"

	"github.com/smallbiznis/stockroom/internal/calendar"
)

type Service interface {
	Rows(ctx context.Context, q Query) ([]Row, error)
	// MonthlyInventory uses the current month when month is zero.
	MonthlyInventory(ctx context.Context, month calendar.Date) (int64, error)
	MonthlyRevenue(ctx context.Context) ([]MonthRevenue, error)
}

// Headers are the spreadsheet column titles, in Columns order. Exports use
// them so an exported workbook imports back unchanged.
var Headers = []string{
	"Product ID",
	"Product Name",
	"Product Category",
	"Initial_Quantity",
	"Date",
	"Units Sold",
	"Unit Price",
	"Total Revenue",
	"Remaining Quantity",
}
