package service

import (
	"context"

	"github.com/smallbiznis/stockroom/internal/calendar"
	"github.com/smallbiznis/stockroom/internal/clock"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Products  productdomain.Repository
	Inventory inventorydomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	products  productdomain.Repository
	inventory inventorydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("report.service"),
		clock:     p.Clock,
		products:  p.Products,
		inventory: p.Inventory,
	}
}

func (s *Service) Rows(ctx context.Context, q domain.Query) ([]domain.Row, error) {
	var rows []domain.Row
	// One read transaction so products, sales and snapshots are a consistent view.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.products.List(ctx, tx, productdomain.ListFilter{})
		if err != nil {
			return err
		}
		sales, err := s.inventory.ListAllSales(ctx, tx)
		if err != nil {
			return err
		}
		snapshots, err := s.inventory.ListAllSnapshots(ctx, tx)
		if err != nil {
			return err
		}
		rows = domain.Build(products, sales, snapshots)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return domain.Apply(rows, q)
}

func (s *Service) MonthlyInventory(ctx context.Context, month calendar.Date) (int64, error) {
	if month.IsZero() {
		month = calendar.FromTime(s.clock.Now())
	}
	snapshots, err := s.inventory.ListAllSnapshots(ctx, s.db)
	if err != nil {
		return 0, err
	}
	total, err := domain.MonthlyInventory(snapshots, month)
	if err != nil {
		return 0, err
	}
	s.log.Debug("monthly inventory", zap.String("month", month.MonthKey()), zap.Int64("total_quantity", total))
	return total, nil
}

func (s *Service) MonthlyRevenue(ctx context.Context) ([]domain.MonthRevenue, error) {
	sales, err := s.inventory.ListAllSales(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return domain.MonthlyRevenue(sales)
}
