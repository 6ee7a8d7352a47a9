package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/cache"
	"github.com/smallbiznis/stockroom/internal/calendar"
	"github.com/smallbiznis/stockroom/internal/clock"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	"github.com/smallbiznis/stockroom/internal/lock"
	"github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// firstProductID is where auto-assigned ids start; catalog ids are five digits.
const firstProductID int64 = 10000

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Inventory  inventorydomain.Repository
	Ledger     inventorydomain.Ledger
	Reconciler inventorydomain.Reconciler
	Locker     lock.Locker
	Cache      cache.ForecastCache `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	inventory  inventorydomain.Repository
	ledger     inventorydomain.Ledger
	reconciler inventorydomain.Reconciler
	locker     lock.Locker
	cache      cache.ForecastCache
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("product.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		inventory:  p.Inventory,
		ledger:     p.Ledger,
		reconciler: p.Reconciler,
		locker:     p.Locker,
		cache:      p.Cache,
	}
}

func (s *Service) Add(ctx context.Context, req domain.AddRequest) (*domain.Response, error) {
	if req.ProductID < 0 {
		return nil, domain.ErrInvalidID
	}
	name := s.normalize(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	category := s.normalize(req.Category)
	if category == "" {
		return nil, domain.ErrInvalidCategory
	}
	if req.InitialQuantity < 0 {
		return nil, inventorydomain.ErrInvalidQuantity
	}
	if req.UnitsSold < 0 {
		return nil, inventorydomain.ErrInvalidUnits
	}
	if req.UnitPrice.IsNegative() {
		return nil, inventorydomain.ErrInvalidPrice
	}
	if req.UnitsSold > req.InitialQuantity {
		return nil, fmt.Errorf("%w: %d sold of %d", inventorydomain.ErrInsufficientStock, req.UnitsSold, req.InitialQuantity)
	}

	date := req.Date
	if date.IsZero() {
		date = calendar.FromTime(s.clock.Now())
	}

	release, err := s.locker.Acquire(ctx, lock.CatalogKey)
	if err != nil {
		return nil, err
	}
	defer release()

	var product *domain.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id := req.ProductID
		if id == 0 {
			maxID, err := s.repo.MaxID(ctx, tx)
			if err != nil {
				return err
			}
			id = max(maxID+1, firstProductID)
		}

		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %d", domain.ErrDuplicateID, id)
		}

		now := s.clock.Now().UTC()
		product = &domain.Product{
			ProductID:       id,
			Name:            name,
			Category:        category,
			CategorySlug:    slug.Make(category),
			InitialQuantity: req.InitialQuantity,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if len(req.Attributes) > 0 {
			product.Attributes = datatypes.JSONMap(req.Attributes)
		}
		if err := s.repo.Create(ctx, tx, product); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return fmt.Errorf("%w: %d", domain.ErrDuplicateID, id)
			}
			return err
		}

		remaining := req.InitialQuantity - req.UnitsSold
		if err := s.inventory.AppendSnapshot(ctx, tx, &inventorydomain.Snapshot{
			ID:                s.genID.Generate(),
			ProductID:         id,
			Date:              date,
			Revision:          1,
			Kind:              inventorydomain.SnapshotKindBaseline,
			Quantity:          req.InitialQuantity,
			RemainingQuantity: remaining,
			CreatedAt:         now,
		}); err != nil {
			return err
		}

		if req.UnitsSold > 0 {
			if err := s.inventory.AppendSale(ctx, tx, &inventorydomain.Sale{
				ID:                s.genID.Generate(),
				ProductID:         id,
				Date:              date,
				UnitsSold:         req.UnitsSold,
				UnitPrice:         req.UnitPrice,
				TotalRevenue:      inventorydomain.Revenue(req.UnitsSold, req.UnitPrice),
				RemainingQuantity: remaining,
				CreatedAt:         now,
				UpdatedAt:         now,
			}); err != nil {
				return err
			}
		}

		_, err = s.reconciler.Reconcile(ctx, tx, id, inventorydomain.SnapshotKindBaseline)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, product.ProductID)
	s.log.Info("product added",
		zap.Int64("product_id", product.ProductID),
		zap.String("category_slug", product.CategorySlug),
		zap.Int64("initial_quantity", product.InitialQuantity),
	)
	return s.Get(ctx, product.ProductID)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	if req.ProductID <= 0 {
		return nil, domain.ErrInvalidID
	}
	if req.UnitsSold == nil && req.UnitPrice == nil && req.InitialQuantity == nil {
		return nil, domain.ErrNothingToUpdate
	}
	if req.UnitsSold != nil && *req.UnitsSold < 0 {
		return nil, inventorydomain.ErrInvalidUnits
	}
	if req.UnitPrice != nil && req.UnitPrice.IsNegative() {
		return nil, inventorydomain.ErrInvalidPrice
	}
	if req.InitialQuantity != nil && *req.InitialQuantity < 0 {
		return nil, inventorydomain.ErrInvalidQuantity
	}

	release, err := s.locker.Acquire(ctx, lock.ProductKey(req.ProductID))
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.repo.FindByID(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		now := s.clock.Now().UTC()

		if req.UnitsSold != nil || req.UnitPrice != nil {
			if err := s.updateSale(ctx, tx, req, now); err != nil {
				return err
			}
		}

		source := inventorydomain.SnapshotKindCorrection
		if req.InitialQuantity != nil {
			if err := s.repo.UpdateBaseline(ctx, tx, req.ProductID, *req.InitialQuantity, now); err != nil {
				return err
			}
			source = inventorydomain.SnapshotKindAdjustment
		}

		_, err = s.reconciler.Reconcile(ctx, tx, req.ProductID, source)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, req.ProductID)
	s.log.Info("product updated", zap.Int64("product_id", req.ProductID))
	return s.Get(ctx, req.ProductID)
}

// updateSale rewrites the targeted sale's inputs, or creates it when the
// product has no sale yet. Derived columns are left to the reconciler.
func (s *Service) updateSale(ctx context.Context, tx *gorm.DB, req domain.UpdateRequest, now time.Time) error {
	var (
		sale *inventorydomain.Sale
		err  error
	)
	if req.Date != nil {
		sale, err = s.inventory.FindSale(ctx, tx, req.ProductID, *req.Date)
	} else {
		sale, err = s.inventory.LatestSale(ctx, tx, req.ProductID)
	}
	if err != nil {
		return err
	}

	if sale != nil {
		if req.UnitsSold != nil {
			sale.UnitsSold = *req.UnitsSold
		}
		if req.UnitPrice != nil {
			sale.UnitPrice = *req.UnitPrice
		}
		sale.UpdatedAt = now
		return s.inventory.UpdateSale(ctx, tx, sale)
	}

	if req.UnitsSold == nil || *req.UnitsSold == 0 {
		return inventorydomain.ErrInvalidUnits
	}
	date := calendar.FromTime(s.clock.Now())
	if req.Date != nil {
		date = *req.Date
	}
	price := decimal.Zero
	if req.UnitPrice != nil {
		price = *req.UnitPrice
	}
	return s.inventory.AppendSale(ctx, tx, &inventorydomain.Sale{
		ID:           s.genID.Generate(),
		ProductID:    req.ProductID,
		Date:         date,
		UnitsSold:    *req.UnitsSold,
		UnitPrice:    price,
		TotalRevenue: inventorydomain.Revenue(*req.UnitsSold, price),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}

	release, err := s.locker.Acquire(ctx, lock.ProductKey(id))
	if err != nil {
		return err
	}
	defer release()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if err := s.inventory.DeleteByProduct(ctx, tx, id); err != nil {
			return err
		}
		_, err = s.repo.Delete(ctx, tx, id)
		return err
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.log.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Response, error) {
	product, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(product)

	remaining, err := s.ledger.CurrentQuantity(ctx, id)
	switch {
	case err == nil:
		resp.RemainingQuantity = &remaining
	case errors.Is(err, inventorydomain.ErrNoRecord):
	default:
		return nil, err
	}
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{}
	if category := strings.TrimSpace(req.Category); category != "" {
		filter.CategorySlug = slug.Make(category)
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Response, 0, len(items))
	for i := range items {
		resp := toResponse(&items[i])
		remaining, err := s.ledger.CurrentQuantity(ctx, items[i].ProductID)
		if err == nil {
			resp.RemainingQuantity = &remaining
		} else if !errors.Is(err, inventorydomain.ErrNoRecord) {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *Service) normalize(value string) string {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return ""
	}
	// Casers carry state, so one per call.
	return cases.Title(language.Und).String(value)
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}

func toResponse(p *domain.Product) domain.Response {
	var attrs map[string]any
	if len(p.Attributes) > 0 {
		attrs = map[string]any(p.Attributes)
	}
	return domain.Response{
		ProductID:       p.ProductID,
		Name:            p.Name,
		Category:        p.Category,
		CategorySlug:    p.CategorySlug,
		InitialQuantity: p.InitialQuantity,
		Attributes:      attrs,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
