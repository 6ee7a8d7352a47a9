package reconcile

import (
	"fmt"

	"github.com/smallbiznis/stockroom/internal/calendar"
	"github.com/smallbiznis/stockroom/internal/inventory/domain"
)

// plan is the full set of writes one reconciliation needs. Building it touches
// no storage, so a rejected plan leaves nothing behind.
type plan struct {
	result  domain.Reconciliation
	sales   []domain.Sale
	appends []domain.Snapshot
}

// buildPlan walks the union of sale and snapshot dates in ascending order,
// carrying the balance from initialQuantity. Both inputs must be ordered by
// date (snapshots additionally by revision).
func buildPlan(productID, initialQuantity int64, sales []domain.Sale, snapshots []domain.Snapshot) (*plan, error) {
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("%w: product %d", domain.ErrMissingBaseline, productID)
	}
	effective := domain.Effective(snapshots)

	p := &plan{result: domain.Reconciliation{
		ProductID:       productID,
		InitialQuantity: initialQuantity,
	}}

	balance := initialQuantity
	i, j := 0, 0
	for i < len(sales) || j < len(effective) {
		date := nextDate(sales, i, effective, j)

		var sale *domain.Sale
		if i < len(sales) && sales[i].Date.Equal(date) {
			sale = &sales[i]
			i++
		}
		var snap *domain.Snapshot
		if j < len(effective) && effective[j].Date.Equal(date) {
			snap = &effective[j]
			j++
		}

		var units int64
		if sale != nil {
			units = sale.UnitsSold
		}
		balance -= units
		if balance < 0 {
			return nil, fmt.Errorf("%w: product %d would hold %d on %s",
				domain.ErrInsufficientStock, productID, balance, date)
		}

		if sale != nil {
			total := domain.Revenue(sale.UnitsSold, sale.UnitPrice)
			if sale.RemainingQuantity != balance || !sale.TotalRevenue.Equal(total) {
				updated := *sale
				updated.RemainingQuantity = balance
				updated.TotalRevenue = total
				p.sales = append(p.sales, updated)
			}
		}

		switch {
		case snap == nil:
			p.appends = append(p.appends, domain.Snapshot{
				ProductID:         productID,
				Date:              date,
				Revision:          1,
				Quantity:          initialQuantity,
				RemainingQuantity: balance,
			})
		case snap.Quantity != initialQuantity || snap.RemainingQuantity != balance:
			p.appends = append(p.appends, domain.Snapshot{
				ProductID:         productID,
				Date:              date,
				Revision:          snap.Revision + 1,
				Quantity:          initialQuantity,
				RemainingQuantity: balance,
			})
		}

		p.result.Balances = append(p.result.Balances, domain.Balance{
			Date:              date,
			UnitsSold:         units,
			RemainingQuantity: balance,
		})
	}

	p.result.SalesUpdated = len(p.sales)
	p.result.SnapshotsAppended = len(p.appends)
	return p, nil
}

func nextDate(sales []domain.Sale, i int, snaps []domain.Snapshot, j int) calendar.Date {
	switch {
	case i >= len(sales):
		return snaps[j].Date
	case j >= len(snaps):
		return sales[i].Date
	case snaps[j].Date.Before(sales[i].Date):
		return snaps[j].Date
	default:
		return sales[i].Date
	}
}
