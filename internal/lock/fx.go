package lock

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/stockroom/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config config.Config
	Redis  *redis.Client `optional:"true"`
	Log    *zap.Logger
}

// Provide picks the redis locker when a redis client is configured.
func Provide(p Params) Locker {
	if p.Redis != nil {
		p.Log.Debug("using redis product locks", zap.Duration("ttl", p.Config.LockTTL))
		return NewRedisLocker(p.Redis, p.Config.LockTTL, p.Log)
	}
	return NewKeyedMutex()
}

var Module = fx.Module("lock",
	fx.Provide(Provide),
)
