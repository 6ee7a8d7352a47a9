package domain

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/calendar"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
)

var ErrNoData = errors.New("no_data")

// MonthRevenue is the revenue of one calendar month, keyed MM/YYYY.
type MonthRevenue struct {
	Month        string          `json:"month"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// MonthlyInventory sums, over products, the remaining quantity of each
// product's latest effective snapshot dated within month's calendar month.
func MonthlyInventory(snapshots []inventorydomain.Snapshot, month calendar.Date) (int64, error) {
	type latest struct {
		date     calendar.Date
		revision int
		qty      int64
	}
	byProduct := make(map[int64]latest)
	for _, s := range snapshots {
		if !s.Date.SameMonth(month) {
			continue
		}
		cur, ok := byProduct[s.ProductID]
		if !ok || s.Date.After(cur.date) || (s.Date.Equal(cur.date) && s.Revision > cur.revision) {
			byProduct[s.ProductID] = latest{date: s.Date, revision: s.Revision, qty: s.RemainingQuantity}
		}
	}
	if len(byProduct) == 0 {
		return 0, ErrNoData
	}

	var total int64
	for _, l := range byProduct {
		total += l.qty
	}
	return total, nil
}

// MonthlyRevenue totals revenue per month from the first to the last month
// with sales, ascending; months in between with no sales are reported as zero.
func MonthlyRevenue(sales []inventorydomain.Sale) ([]MonthRevenue, error) {
	if len(sales) == 0 {
		return nil, ErrNoData
	}

	totals := make(map[string]decimal.Decimal)
	first, last := sales[0].Date, sales[0].Date
	for _, s := range sales {
		key := s.Date.MonthKey()
		totals[key] = totals[key].Add(s.TotalRevenue)
		if s.Date.Before(first) {
			first = s.Date
		}
		if s.Date.After(last) {
			last = s.Date
		}
	}

	var out []MonthRevenue
	cursor := calendar.New(first.Time().Year(), first.Time().Month(), 1)
	end := calendar.New(last.Time().Year(), last.Time().Month(), 1)
	for !cursor.After(end) {
		key := cursor.MonthKey()
		total, ok := totals[key]
		if !ok {
			total = decimal.Zero
		}
		out = append(out, MonthRevenue{Month: key, TotalRevenue: total})
		cursor = calendar.FromTime(cursor.Time().AddDate(0, 1, 0))
	}

	return out, nil
}
