package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/calendar"
	"github.com/smallbiznis/stockroom/internal/clock"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	inventoryrepo "github.com/smallbiznis/stockroom/internal/inventory/repository"
	inventorysvc "github.com/smallbiznis/stockroom/internal/inventory/service"
	"github.com/smallbiznis/stockroom/internal/lock"
	"github.com/smallbiznis/stockroom/internal/migration"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	productrepo "github.com/smallbiznis/stockroom/internal/product/repository"
	productsvc "github.com/smallbiznis/stockroom/internal/product/service"
	"github.com/smallbiznis/stockroom/internal/reconcile"
	"github.com/smallbiznis/stockroom/internal/report/domain"
	"github.com/smallbiznis/stockroom/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	reports  domain.Service
	products productdomain.Service
	ledger   inventorydomain.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 2, 20, 8, 0, 0, 0, time.UTC))
	products := productrepo.Provide()
	inventory := inventoryrepo.Provide()
	locker := lock.NewKeyedMutex()

	reconciler := reconcile.New(reconcile.Params{Log: zap.NewNop(), GenID: node, Clock: fake, Repo: inventory, Products: products})
	ledger := inventorysvc.New(inventorysvc.Params{
		DB: conn, Log: zap.NewNop(), GenID: node, Clock: fake, Repo: inventory,
		Products: products, Reconciler: reconciler, Locker: locker,
	})

	return &fixture{
		reports: New(Params{DB: conn, Log: zap.NewNop(), Clock: fake, Products: products, Inventory: inventory}),
		products: productsvc.New(productsvc.Params{
			DB: conn, Log: zap.NewNop(), GenID: node, Clock: fake, Repo: products, Inventory: inventory,
			Ledger: ledger, Reconciler: reconciler, Locker: locker,
		}),
		ledger: ledger,
	}
}

// seed stocks a widget with sales across January and February and a lamp
// that has never sold.
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	_, err := f.products.Add(ctx, productdomain.AddRequest{
		ProductID: 101, Name: "widget", Category: "tools", InitialQuantity: 100,
		Date: calendar.New(2024, time.January, 1),
	})
	require.NoError(t, err)
	_, err = f.products.Add(ctx, productdomain.AddRequest{
		ProductID: 102, Name: "lamp", Category: "home", InitialQuantity: 8,
		Date: calendar.New(2024, time.January, 15),
	})
	require.NoError(t, err)

	for _, s := range []struct {
		date  calendar.Date
		units int64
		price int64
	}{
		{calendar.New(2024, time.January, 2), 10, 2},
		{calendar.New(2024, time.January, 3), 20, 2},
		{calendar.New(2024, time.February, 5), 5, 3},
	} {
		_, err := f.ledger.RecordSale(ctx, inventorydomain.RecordSaleRequest{
			ProductID: 101, Date: s.date, UnitsSold: s.units, UnitPrice: decimal.NewFromInt(s.price),
		})
		require.NoError(t, err)
	}
}

func TestRowsJoinsProductsSalesAndSnapshots(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	rows, err := f.reports.Rows(context.Background(), domain.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 5)

	var got []string
	for _, r := range rows {
		got = append(got, r.Value(domain.ColumnProductID)+" "+r.Date.String()+" "+r.Value(domain.ColumnRemainingQuantity))
	}
	assert.Equal(t, []string{
		"101 01/01/2024 100",
		"101 01/02/2024 90",
		"101 01/03/2024 70",
		"101 02/05/2024 65",
		"102 01/15/2024 8",
	}, got)

	assert.Equal(t, "Widget", rows[1].ProductName)
	assert.Equal(t, "20.00", rows[1].Value(domain.ColumnTotalRevenue))
	assert.Equal(t, "0.00", rows[4].Value(domain.ColumnTotalRevenue))
}

func TestRowsSearchAndSort(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	rows, err := f.reports.Rows(ctx, domain.Query{
		SearchColumn: domain.ColumnProductCategory,
		SearchTerm:   "TOOL",
		SortColumn:   domain.ColumnUnitsSold,
		SortOrder:    "desc",
	})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, int64(20), rows[0].UnitsSold)
	assert.Equal(t, int64(0), rows[3].UnitsSold)

	_, err = f.reports.Rows(ctx, domain.Query{SortColumn: "colour"})
	require.ErrorIs(t, err, domain.ErrUnknownColumn)

	_, err = f.reports.Rows(ctx, domain.Query{SortColumn: domain.ColumnDate, SortOrder: "sideways"})
	require.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestMonthlyInventory(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	jan, err := f.reports.MonthlyInventory(ctx, calendar.New(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(78), jan)

	current, err := f.reports.MonthlyInventory(ctx, calendar.Date{})
	require.NoError(t, err)
	assert.Equal(t, int64(65), current)

	_, err = f.reports.MonthlyInventory(ctx, calendar.New(2024, time.March, 1))
	require.ErrorIs(t, err, domain.ErrNoData)
}

func TestMonthlyRevenue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reports.MonthlyRevenue(ctx)
	require.ErrorIs(t, err, domain.ErrNoData)

	f.seed(t)
	months, err := f.reports.MonthlyRevenue(ctx)
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, "01/2024", months[0].Month)
	assert.True(t, months[0].TotalRevenue.Equal(decimal.NewFromInt(60)), "got %s", months[0].TotalRevenue)
	assert.Equal(t, "02/2024", months[1].Month)
	assert.True(t, months[1].TotalRevenue.Equal(decimal.NewFromInt(15)), "got %s", months[1].TotalRevenue)
}
