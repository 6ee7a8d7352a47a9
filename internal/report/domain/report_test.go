package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/calendar"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(month time.Month, day int) calendar.Date { return calendar.New(2024, month, day) }

func fixtureData() ([]productdomain.Product, []inventorydomain.Sale, []inventorydomain.Snapshot) {
	products := []productdomain.Product{
		{ProductID: 2, Name: "Gadget", Category: "Tools", InitialQuantity: 10},
		{ProductID: 1, Name: "Apple", Category: "Produce", InitialQuantity: 100},
	}
	sales := []inventorydomain.Sale{
		{ProductID: 1, Date: d(time.January, 2), UnitsSold: 10, UnitPrice: decimal.NewFromInt(2), TotalRevenue: decimal.NewFromInt(20), RemainingQuantity: 90},
		{ProductID: 1, Date: d(time.March, 5), UnitsSold: 20, UnitPrice: decimal.NewFromInt(2), TotalRevenue: decimal.NewFromInt(40), RemainingQuantity: 70},
		{ProductID: 2, Date: d(time.January, 3), UnitsSold: 4, UnitPrice: decimal.RequireFromString("1.5"), TotalRevenue: decimal.NewFromInt(6), RemainingQuantity: 6},
	}
	snapshots := []inventorydomain.Snapshot{
		{ProductID: 1, Date: d(time.January, 1), Revision: 1, Quantity: 100, RemainingQuantity: 100},
		{ProductID: 1, Date: d(time.January, 2), Revision: 1, Quantity: 100, RemainingQuantity: 95},
		{ProductID: 1, Date: d(time.January, 2), Revision: 2, Quantity: 100, RemainingQuantity: 90},
		{ProductID: 1, Date: d(time.March, 5), Revision: 1, Quantity: 100, RemainingQuantity: 70},
		{ProductID: 2, Date: d(time.January, 1), Revision: 1, Quantity: 10, RemainingQuantity: 10},
		{ProductID: 2, Date: d(time.January, 3), Revision: 1, Quantity: 10, RemainingQuantity: 6},
	}
	return products, sales, snapshots
}

func TestBuildOneRowPerProductDate(t *testing.T) {
	rows := Build(fixtureData())
	require.Len(t, rows, 5)

	assert.Equal(t, int64(1), rows[0].ProductID)
	assert.Equal(t, "01/01/2024", rows[0].Date.String())
	assert.Equal(t, int64(0), rows[0].UnitsSold)
	assert.Equal(t, int64(100), rows[0].RemainingQuantity)

	assert.Equal(t, "01/02/2024", rows[1].Date.String())
	assert.Equal(t, int64(90), rows[1].RemainingQuantity)
	assert.True(t, rows[1].TotalRevenue.Equal(decimal.NewFromInt(20)))

	assert.Equal(t, int64(2), rows[3].ProductID)
	assert.Equal(t, "Gadget", rows[4].ProductName)
	assert.Equal(t, int64(6), rows[4].RemainingQuantity)
}

func TestApplySearchIsCaseInsensitiveContains(t *testing.T) {
	rows := Build(fixtureData())

	got, err := Apply(rows, Query{SearchColumn: "Product Name", SearchTerm: "APP"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = Apply(rows, Query{SearchColumn: "date", SearchTerm: "01/03"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ProductID)
}

func TestApplySortNumericAndDirection(t *testing.T) {
	rows := Build(fixtureData())

	got, err := Apply(rows, Query{SortColumn: "units_sold", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(20), got[0].UnitsSold)
	assert.Equal(t, int64(10), got[1].UnitsSold)

	got, err = Apply(rows, Query{SortColumn: "Total Revenue"})
	require.NoError(t, err)
	assert.True(t, got[len(got)-1].TotalRevenue.Equal(decimal.NewFromInt(40)))
}

func TestApplyRejectsUnknownColumns(t *testing.T) {
	rows := Build(fixtureData())

	_, err := Apply(rows, Query{SearchColumn: "product_id; DROP TABLE sales", SearchTerm: "1"})
	require.ErrorIs(t, err, ErrUnknownColumn)
	_, err = Apply(rows, Query{SortColumn: "password_hash"})
	require.ErrorIs(t, err, ErrUnknownColumn)
	_, err = Apply(rows, Query{SortColumn: "date", SortOrder: "sideways"})
	require.ErrorIs(t, err, ErrInvalidOrder)
}

func TestMonthlyInventoryUsesLatestEffectivePerProduct(t *testing.T) {
	_, _, snapshots := fixtureData()

	total, err := MonthlyInventory(snapshots, d(time.January, 20))
	require.NoError(t, err)
	// product 1 ends January at 90 (rev 2), product 2 at 6.
	assert.Equal(t, int64(96), total)

	total, err = MonthlyInventory(snapshots, d(time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(70), total)

	_, err = MonthlyInventory(snapshots, d(time.February, 1))
	require.ErrorIs(t, err, ErrNoData)
}

func TestMonthlyRevenueFillsGaps(t *testing.T) {
	_, sales, _ := fixtureData()

	got, err := MonthlyRevenue(sales)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "01/2024", got[0].Month)
	assert.True(t, got[0].TotalRevenue.Equal(decimal.NewFromInt(26)))
	assert.Equal(t, "02/2024", got[1].Month)
	assert.True(t, got[1].TotalRevenue.IsZero())
	assert.Equal(t, "03/2024", got[2].Month)

	_, err = MonthlyRevenue(nil)
	require.ErrorIs(t, err, ErrNoData)
}
