package auth

import (
	"github.com/smallbiznis/stockroom/internal/auth/repository"
	"github.com/smallbiznis/stockroom/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
