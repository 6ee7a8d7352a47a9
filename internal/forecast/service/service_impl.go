package service

import (
	"context"
	"errors"

	"github.com/smallbiznis/stockroom/internal/cache"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/forecast/domain"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
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
	Clock      clock.Clock
	Products   productdomain.Repository
	Inventory  inventorydomain.Repository
	Cache      cache.ForecastCache `optional:"true"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	products   productdomain.Repository
	inventory  inventorydomain.Repository
	cache      cache.ForecastCache
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("forecast.service"),
		clock:      p.Clock,
		products:   p.Products,
		inventory:  p.Inventory,
		cache:      p.Cache,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Forecast(ctx context.Context, productID int64) (*domain.Forecast, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, productID); ok {
			s.obsMetrics.RecordForecast(ctx, "cache_hit")
			return cached, nil
		}
	}

	product, err := s.products.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, productdomain.ErrNotFound
	}

	sales, err := s.inventory.ListSales(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	days := make([]domain.DailyUnits, 0, len(sales))
	for _, sale := range sales {
		days = append(days, domain.DailyUnits{Date: sale.Date, Units: sale.UnitsSold})
	}

	proj, err := domain.Project(product.InitialQuantity, days)
	if errors.Is(err, domain.ErrNoData) {
		s.obsMetrics.RecordForecast(ctx, "no_data")
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	forecast := &domain.Forecast{
		ProductID:       productID,
		InitialQuantity: product.InitialQuantity,
		CurrentQuantity: proj.CurrentQuantity,
		AverageDelta:    proj.AverageDelta,
		Points:          proj.Points,
		GeneratedAt:     s.clock.Now().UTC(),
	}
	if s.cache != nil {
		s.cache.Set(ctx, productID, forecast)
	}
	s.obsMetrics.RecordForecast(ctx, "ok")
	s.log.Debug("forecast computed",
		zap.Int64("product_id", productID),
		zap.Int64("current_quantity", forecast.CurrentQuantity),
		zap.Float64("average_delta", forecast.AverageDelta),
	)
	return forecast, nil
}
