package importer

import "go.uber.org/fx"

var Module = fx.Module("importer.service",
	fx.Provide(New),
)
