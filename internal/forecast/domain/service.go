package domain

import "context"

// Service produces forecasts for catalog products.
type Service interface {
	Forecast(ctx context.Context, productID int64) (*Forecast, error)
}
