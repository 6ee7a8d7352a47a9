package observability

import (
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		MetricsConfig,
		metrics.NewProvider,
		metrics.New,
	),
)
