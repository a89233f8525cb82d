package cache

import (
	"go.uber.org/zap"

	"github.com/wimotos/backend/internal/infrastructure/config"
)

// LockerFactory picks the Locker implementation from configuration
type LockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to an in-process lock.
// Default is true.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(cfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateLocker returns a Redis locker when Redis is enabled and reachable.
// Otherwise it returns an in-process locker, or the connection error when fallback is off.
func (f *LockerFactory) CreateLocker() (Locker, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-process cycle lock")
		return NewInMemoryLocker(), nil
	}
	client, err := NewRedisClient(f.redisConfig)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, err
		}
		f.logger.Warn("Redis unavailable, falling back to in-process cycle lock",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err))
		return NewInMemoryLocker(), nil
	}
	f.logger.Info("Using Redis cycle lock", zap.String("addr", f.redisConfig.Addr()))
	return NewRedisLocker(client, ""), nil
}
