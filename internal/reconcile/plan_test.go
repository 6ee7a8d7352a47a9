package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/calendar"
	"github.com/smallbiznis/stockroom/internal/inventory/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jan(d int) calendar.Date { return calendar.New(2024, time.January, d) }

func sale(d int, units int64, price string) domain.Sale {
	return domain.Sale{ProductID: 1, Date: jan(d), UnitsSold: units, UnitPrice: decimal.RequireFromString(price)}
}

func snapshot(d, rev int, quantity, remaining int64) domain.Snapshot {
	return domain.Snapshot{ProductID: 1, Date: jan(d), Revision: rev, Quantity: quantity, RemainingQuantity: remaining}
}

func TestBuildPlanRunningBalance(t *testing.T) {
	sales := []domain.Sale{sale(2, 10, "1.50"), sale(3, 20, "1.50"), sale(4, 30, "2")}
	snaps := []domain.Snapshot{snapshot(1, 1, 100, 100)}

	p, err := buildPlan(1, 100, sales, snaps)
	require.NoError(t, err)

	remaining := make([]int64, 0, len(p.result.Balances))
	for _, b := range p.result.Balances {
		remaining = append(remaining, b.RemainingQuantity)
	}
	assert.Equal(t, []int64{100, 90, 70, 40}, remaining)
	assert.Equal(t, int64(40), p.result.Remaining())

	require.Len(t, p.sales, 3)
	assert.True(t, p.sales[0].TotalRevenue.Equal(decimal.RequireFromString("15")))
	assert.True(t, p.sales[2].TotalRevenue.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, int64(40), p.sales[2].RemainingQuantity)

	// dates 2..4 have no snapshot yet.
	require.Len(t, p.appends, 3)
	for _, s := range p.appends {
		assert.Equal(t, 1, s.Revision)
		assert.Equal(t, int64(100), s.Quantity)
	}
}

func TestBuildPlanMissingBaseline(t *testing.T) {
	_, err := buildPlan(1, 100, []domain.Sale{sale(1, 1, "1")}, nil)
	require.ErrorIs(t, err, domain.ErrMissingBaseline)
}

func TestBuildPlanRejectsNegativeBalance(t *testing.T) {
	sales := []domain.Sale{sale(1, 60, "1"), sale(2, 50, "1")}
	_, err := buildPlan(1, 100, sales, []domain.Snapshot{snapshot(1, 1, 100, 40)})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestBuildPlanIsIdempotentOnConsistentData(t *testing.T) {
	s1 := sale(1, 10, "2")
	s1.TotalRevenue = decimal.NewFromInt(20)
	s1.RemainingQuantity = 90
	snaps := []domain.Snapshot{snapshot(1, 1, 100, 100), snapshot(1, 2, 100, 90)}

	p, err := buildPlan(1, 100, []domain.Sale{s1}, snaps)
	require.NoError(t, err)
	assert.Empty(t, p.sales)
	assert.Empty(t, p.appends)
}

func TestBuildPlanSupersedesStaleRevision(t *testing.T) {
	snaps := []domain.Snapshot{snapshot(1, 1, 100, 100), snapshot(1, 2, 100, 90)}

	p, err := buildPlan(1, 120, nil, snaps)
	require.NoError(t, err)
	require.Len(t, p.appends, 1)
	assert.Equal(t, 3, p.appends[0].Revision)
	assert.Equal(t, int64(120), p.appends[0].Quantity)
	assert.Equal(t, int64(120), p.appends[0].RemainingQuantity)
}

func TestBuildPlanBackDatedSaleShiftsLaterDates(t *testing.T) {
	later := sale(5, 10, "1")
	later.TotalRevenue = decimal.NewFromInt(10)
	later.RemainingQuantity = 90
	earlier := sale(3, 5, "1")
	snaps := []domain.Snapshot{snapshot(1, 1, 100, 100), snapshot(5, 1, 100, 90)}

	p, err := buildPlan(1, 100, []domain.Sale{earlier, later}, snaps)
	require.NoError(t, err)

	require.Len(t, p.sales, 2)
	assert.Equal(t, int64(95), p.sales[0].RemainingQuantity)
	assert.Equal(t, int64(85), p.sales[1].RemainingQuantity)

	require.Len(t, p.appends, 2)
	assert.Equal(t, jan(3), p.appends[0].Date)
	assert.Equal(t, 1, p.appends[0].Revision)
	assert.Equal(t, jan(5), p.appends[1].Date)
	assert.Equal(t, 2, p.appends[1].Revision)
	assert.Equal(t, int64(85), p.appends[1].RemainingQuantity)
}
