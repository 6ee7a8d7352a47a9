package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/cache"
	"github.com/smallbiznis/stockroom/internal/calendar"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/inventory/domain"
	"github.com/smallbiznis/stockroom/internal/lock"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Products   productdomain.Repository
	Reconciler domain.Reconciler
	Locker     lock.Locker
	Cache      cache.ForecastCache `optional:"true"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	products   productdomain.Repository
	reconciler domain.Reconciler
	locker     lock.Locker
	cache      cache.ForecastCache
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Ledger {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("inventory.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		products:   p.Products,
		reconciler: p.Reconciler,
		locker:     p.Locker,
		cache:      p.Cache,
		obsMetrics: p.ObsMetrics,
	}
}

// mutate runs fn in a transaction under the product lock.
func (s *Service) mutate(ctx context.Context, productID int64, fn func(tx *gorm.DB) error) error {
	release, err := s.locker.Acquire(ctx, lock.ProductKey(productID))
	if err != nil {
		return err
	}
	defer release()

	if err := s.db.WithContext(ctx).Transaction(fn); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, productID)
	}
	return nil
}

func (s *Service) RecordSale(ctx context.Context, req domain.RecordSaleRequest) (*domain.SaleResponse, error) {
	if req.ProductID <= 0 {
		return nil, productdomain.ErrInvalidID
	}
	if req.UnitsSold <= 0 {
		return nil, domain.ErrInvalidUnits
	}
	if req.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	date := req.Date
	if date.IsZero() {
		date = calendar.FromTime(s.clock.Now())
	}

	var resp *domain.SaleResponse
	err := s.mutate(ctx, req.ProductID, func(tx *gorm.DB) error {
		product, err := s.products.FindByID(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return productdomain.ErrNotFound
		}

		latest, err := s.repo.LatestSnapshot(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}
		if latest == nil {
			return fmt.Errorf("%w: product %d", domain.ErrMissingBaseline, req.ProductID)
		}

		existing, err := s.repo.FindSale(ctx, tx, req.ProductID, date)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: product %d on %s", domain.ErrDuplicateSale, req.ProductID, date)
		}

		remaining := latest.RemainingQuantity - req.UnitsSold
		if remaining < 0 {
			return fmt.Errorf("%w: product %d has %d, sale needs %d",
				domain.ErrInsufficientStock, req.ProductID, latest.RemainingQuantity, req.UnitsSold)
		}

		now := s.clock.Now().UTC()
		sale := &domain.Sale{
			ID:                s.genID.Generate(),
			ProductID:         req.ProductID,
			Date:              date,
			UnitsSold:         req.UnitsSold,
			UnitPrice:         req.UnitPrice,
			TotalRevenue:      domain.Revenue(req.UnitsSold, req.UnitPrice),
			RemainingQuantity: remaining,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.repo.AppendSale(ctx, tx, sale); err != nil {
			return err
		}

		// A back-dated sale shifts every later balance; the reconciler re-derives them.
		rec, err := s.reconciler.Reconcile(ctx, tx, req.ProductID, domain.SnapshotKindSale)
		if err != nil {
			return err
		}
		for _, b := range rec.Balances {
			if b.Date.Equal(date) {
				sale.RemainingQuantity = b.RemainingQuantity
				break
			}
		}

		resp = toSaleResponse(sale)
		return nil
	})
	if err != nil {
		s.obsMetrics.RecordSaleRejected(ctx, rejectReason(err))
		return nil, err
	}

	s.obsMetrics.RecordSale(ctx)
	s.log.Info("sale recorded",
		zap.Int64("product_id", resp.ProductID),
		zap.String("date", resp.Date),
		zap.Int64("units_sold", resp.UnitsSold),
		zap.Int64("remaining_quantity", resp.RemainingQuantity),
	)
	return resp, nil
}

func (s *Service) CurrentQuantity(ctx context.Context, productID int64) (int64, error) {
	db := s.db.WithContext(ctx)
	product, err := s.products.FindByID(ctx, db, productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, productdomain.ErrNotFound
	}

	latest, err := s.repo.LatestSnapshot(ctx, db, productID)
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 0, domain.ErrNoRecord
	}
	return latest.RemainingQuantity, nil
}

func (s *Service) Adjust(ctx context.Context, productID int64, initialQuantity int64) (*domain.Reconciliation, error) {
	if initialQuantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var rec *domain.Reconciliation
	err := s.mutate(ctx, productID, func(tx *gorm.DB) error {
		product, err := s.products.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return productdomain.ErrNotFound
		}
		if err := s.products.UpdateBaseline(ctx, tx, productID, initialQuantity, s.clock.Now().UTC()); err != nil {
			return err
		}
		rec, err = s.reconciler.Reconcile(ctx, tx, productID, domain.SnapshotKindAdjustment)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("baseline adjusted",
		zap.Int64("product_id", productID),
		zap.Int64("initial_quantity", initialQuantity),
		zap.Int("snapshots_appended", rec.SnapshotsAppended),
	)
	return rec, nil
}

func (s *Service) History(ctx context.Context, productID int64) ([]domain.Snapshot, error) {
	db := s.db.WithContext(ctx)
	if err := s.requireProduct(ctx, db, productID); err != nil {
		return nil, err
	}
	return s.repo.ListSnapshots(ctx, db, productID)
}

func (s *Service) Sales(ctx context.Context, productID int64) ([]domain.Sale, error) {
	db := s.db.WithContext(ctx)
	if err := s.requireProduct(ctx, db, productID); err != nil {
		return nil, err
	}
	return s.repo.ListSales(ctx, db, productID)
}

func (s *Service) requireProduct(ctx context.Context, db *gorm.DB, productID int64) error {
	product, err := s.products.FindByID(ctx, db, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return productdomain.ErrNotFound
	}
	return nil
}

func rejectReason(err error) string {
	for _, sentinel := range []error{
		domain.ErrInsufficientStock,
		domain.ErrDuplicateSale,
		domain.ErrMissingBaseline,
		productdomain.ErrNotFound,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "error"
}

func toSaleResponse(sale *domain.Sale) *domain.SaleResponse {
	return &domain.SaleResponse{
		ProductID:         sale.ProductID,
		Date:              sale.Date.String(),
		UnitsSold:         sale.UnitsSold,
		UnitPrice:         sale.UnitPrice,
		TotalRevenue:      sale.TotalRevenue,
		RemainingQuantity: sale.RemainingQuantity,
	}
}
