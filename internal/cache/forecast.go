package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	forecastdomain "github.com/smallbiznis/stockroom/internal/forecast/domain"
	"go.uber.org/zap"
)

// ForecastCache stores computed forecasts per product. Every mutation of a
// product must call Invalidate.
type ForecastCache interface {
	Get(ctx context.Context, productID int64) (*forecastdomain.Forecast, bool)
	Set(ctx context.Context, productID int64, forecast *forecastdomain.Forecast)
	Invalidate(ctx context.Context, productID int64)
}

type memoryForecastCache struct {
	entries Cache[int64, *forecastdomain.Forecast]
	ttl     time.Duration
}

// NewMemoryForecastCache keeps forecasts for the life of the process.
func NewMemoryForecastCache(ttl time.Duration) ForecastCache {
	return &memoryForecastCache{
		entries: NewTTLCache[int64, *forecastdomain.Forecast](),
		ttl:     ttl,
	}
}

func (c *memoryForecastCache) Get(_ context.Context, productID int64) (*forecastdomain.Forecast, bool) {
	return c.entries.Get(productID)
}

func (c *memoryForecastCache) Set(_ context.Context, productID int64, forecast *forecastdomain.Forecast) {
	if forecast == nil {
		return
	}
	c.entries.Set(productID, forecast, c.ttl)
}

func (c *memoryForecastCache) Invalidate(_ context.Context, productID int64) {
	c.entries.Delete(productID)
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisForecastCache stores forecasts as JSON so separate CLI runs share them.
// Redis failures degrade to cache misses.
func NewRedisForecastCache(client *redis.Client, ttl time.Duration, log *zap.Logger) ForecastCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &redisForecastCache{client: client, ttl: ttl, log: log.Named("cache.forecast")}
}

func forecastKey(productID int64) string {
	return "stockroom:forecast:" + strconv.FormatInt(productID, 10)
}

func (c *redisForecastCache) Get(ctx context.Context, productID int64) (*forecastdomain.Forecast, bool) {
	raw, err := c.client.Get(ctx, forecastKey(productID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("forecast cache read failed", zap.Int64("product_id", productID), zap.Error(err))
		}
		return nil, false
	}
	var forecast forecastdomain.Forecast
	if err := json.Unmarshal(raw, &forecast); err != nil {
		c.log.Warn("forecast cache entry unreadable", zap.Int64("product_id", productID), zap.Error(err))
		return nil, false
	}
	return &forecast, true
}

func (c *redisForecastCache) Set(ctx context.Context, productID int64, forecast *forecastdomain.Forecast) {
	if forecast == nil {
		return
	}
	raw, err := json.Marshal(forecast)
	if err != nil {
		c.log.Warn("forecast cache encode failed", zap.Int64("product_id", productID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, forecastKey(productID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("forecast cache write failed", zap.Int64("product_id", productID), zap.Error(err))
	}
}

func (c *redisForecastCache) Invalidate(ctx context.Context, productID int64) {
	if err := c.client.Del(ctx, forecastKey(productID)).Err(); err != nil {
		c.log.Warn("forecast cache invalidate failed", zap.Int64("product_id", productID), zap.Error(err))
	}
}
