package domain

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/calendar"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
)

// Row is one product on one date. Rows are always derived, never stored.
type Row struct {
	ProductID         int64           `json:"product_id"`
	ProductName       string          `json:"product_name"`
	ProductCategory   string          `json:"product_category"`
	InitialQuantity   int64           `json:"initial_quantity"`
	Date              calendar.Date   `json:"date"`
	UnitsSold         int64           `json:"units_sold"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	RemainingQuantity int64           `json:"remaining_quantity"`
}

// Build joins products with their sales and effective snapshots, one row per
// product and date, ordered by product then date. Products without any dated
// record produce no rows.
func Build(products []productdomain.Product, sales []inventorydomain.Sale, snapshots []inventorydomain.Snapshot) []Row {
	salesByProduct := make(map[int64][]inventorydomain.Sale)
	for _, s := range sales {
		salesByProduct[s.ProductID] = append(salesByProduct[s.ProductID], s)
	}
	snapsByProduct := make(map[int64][]inventorydomain.Snapshot)
	for _, s := range snapshots {
		snapsByProduct[s.ProductID] = append(snapsByProduct[s.ProductID], s)
	}

	ordered := make([]productdomain.Product, len(products))
	copy(ordered, products)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	var rows []Row
	for _, p := range ordered {
		rows = append(rows, productRows(p, salesByProduct[p.ProductID], snapsByProduct[p.ProductID])...)
	}
	return rows
}

func productRows(p productdomain.Product, sales []inventorydomain.Sale, snapshots []inventorydomain.Snapshot) []Row {
	sort.SliceStable(sales, func(i, j int) bool { return sales[i].Date.Before(sales[j].Date) })
	sort.SliceStable(snapshots, func(i, j int) bool {
		if snapshots[i].Date.Equal(snapshots[j].Date) {
			return snapshots[i].Revision < snapshots[j].Revision
		}
		return snapshots[i].Date.Before(snapshots[j].Date)
	})
	effective := inventorydomain.Effective(snapshots)

	byDate := make(map[string]*Row)
	var rows []*Row
	rowFor := func(d calendar.Date) *Row {
		if r, ok := byDate[d.ISO()]; ok {
			return r
		}
		r := &Row{
			ProductID:       p.ProductID,
			ProductName:     p.Name,
			ProductCategory: p.Category,
			InitialQuantity: p.InitialQuantity,
			Date:            d,
			UnitPrice:       decimal.Zero,
			TotalRevenue:    decimal.Zero,
		}
		byDate[d.ISO()] = r
		rows = append(rows, r)
		return r
	}

	for _, s := range effective {
		rowFor(s.Date).RemainingQuantity = s.RemainingQuantity
	}
	for _, s := range sales {
		r := rowFor(s.Date)
		r.UnitsSold = s.UnitsSold
		r.UnitPrice = s.UnitPrice
		r.TotalRevenue = s.TotalRevenue
		r.RemainingQuantity = s.RemainingQuantity
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	return out
}
