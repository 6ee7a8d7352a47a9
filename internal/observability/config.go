package observability

import (
	"os"
	"strings"

	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/observability/metrics"
)

// MetricsConfig derives the metrics settings. The standard OTEL_EXPORTER_OTLP_*
// variables win over stockroom.yml so a collector can be pointed at without
// editing config.
func MetricsConfig(cfg config.Config) metrics.Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "stockroom"
	}
	return metrics.Config{
		Enabled:          cfg.MetricsEnabled,
		ExporterEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.MetricsEndpoint),
		ExporterProtocol: strings.ToLower(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", cfg.MetricsProtocol)),
		ServiceName:      serviceName,
		Environment:      strings.TrimSpace(cfg.Environment),
	}
}

func getenv(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return strings.TrimSpace(def)
}
