package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Column names accepted by search and sort.
const (
	ColumnProductID         = "product_id"
	ColumnProductName       = "product_name"
	ColumnProductCategory   = "product_category"
	ColumnInitialQuantity   = "initial_quantity"
	ColumnDate              = "date"
	ColumnUnitsSold         = "units_sold"
	ColumnUnitPrice         = "unit_price"
	ColumnTotalRevenue      = "total_revenue"
	ColumnRemainingQuantity = "remaining_quantity"
)

// Columns is the report column order used by every export.
var Columns = []string{
	ColumnProductID,
	ColumnProductName,
	ColumnProductCategory,
	ColumnInitialQuantity,
	ColumnDate,
	ColumnUnitsSold,
	ColumnUnitPrice,
	ColumnTotalRevenue,
	ColumnRemainingQuantity,
}

var (
	ErrUnknownColumn = errors.New("unknown_column")
	ErrInvalidOrder  = errors.New("invalid_sort_order")
)

// Query narrows and orders report rows. Zero values mean no search and the
// Build order.
type Query struct {
	SearchColumn string
	SearchTerm   string
	SortColumn   string
	SortOrder    string
}

// Apply filters rows whose SearchColumn contains SearchTerm (case-insensitive)
// and sorts by SortColumn. Rows is not modified.
func Apply(rows []Row, q Query) ([]Row, error) {
	out := make([]Row, 0, len(rows))

	searchColumn := normalizeColumn(q.SearchColumn)
	term := strings.ToLower(strings.TrimSpace(q.SearchTerm))
	if searchColumn != "" && !isColumn(searchColumn) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, q.SearchColumn)
	}
	for _, r := range rows {
		if searchColumn != "" && term != "" {
			if !strings.Contains(strings.ToLower(r.Value(searchColumn)), term) {
				continue
			}
		}
		out = append(out, r)
	}

	sortColumn := normalizeColumn(q.SortColumn)
	if sortColumn == "" {
		return out, nil
	}
	if !isColumn(sortColumn) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, q.SortColumn)
	}
	desc := false
	switch strings.ToUpper(strings.TrimSpace(q.SortOrder)) {
	case "", "ASC":
	case "DESC":
		desc = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrder, q.SortOrder)
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j], sortColumn)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out, nil
}

// Value renders one column as text, the form used by search and exports.
func (r Row) Value(column string) string {
	switch column {
	case ColumnProductID:
		return strconv.FormatInt(r.ProductID, 10)
	case ColumnProductName:
		return r.ProductName
	case ColumnProductCategory:
		return r.ProductCategory
	case ColumnInitialQuantity:
		return strconv.FormatInt(r.InitialQuantity, 10)
	case ColumnDate:
		return r.Date.String()
	case ColumnUnitsSold:
		return strconv.FormatInt(r.UnitsSold, 10)
	case ColumnUnitPrice:
		return r.UnitPrice.StringFixed(2)
	case ColumnTotalRevenue:
		return r.TotalRevenue.StringFixed(2)
	case ColumnRemainingQuantity:
		return strconv.FormatInt(r.RemainingQuantity, 10)
	}
	return ""
}

func compare(a, b Row, column string) int {
	switch column {
	case ColumnProductID:
		return cmpInt(a.ProductID, b.ProductID)
	case ColumnInitialQuantity:
		return cmpInt(a.InitialQuantity, b.InitialQuantity)
	case ColumnDate:
		return a.Date.Compare(b.Date)
	case ColumnUnitsSold:
		return cmpInt(a.UnitsSold, b.UnitsSold)
	case ColumnUnitPrice:
		return a.UnitPrice.Cmp(b.UnitPrice)
	case ColumnTotalRevenue:
		return a.TotalRevenue.Cmp(b.TotalRevenue)
	case ColumnRemainingQuantity:
		return cmpInt(a.RemainingQuantity, b.RemainingQuantity)
	default:
		return strings.Compare(strings.ToLower(a.Value(column)), strings.ToLower(b.Value(column)))
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// normalizeColumn accepts the spreadsheet headers too ("Units Sold", "Initial_Quantity").
func normalizeColumn(column string) string {
	column = strings.ToLower(strings.TrimSpace(column))
	column = strings.ReplaceAll(column, " ", "_")
	if column == "sale_date" || column == "inventory_date" {
		return ColumnDate
	}
	return column
}

func isColumn(column string) bool {
	for _, c := range Columns {
		if c == column {
			return true
		}
	}
	return false
}
