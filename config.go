package messenger

import "time"

// Config holds messenger settings.
// Designed for environment-based configuration, see core/config.
type Config struct {
	CleanupInterval  time.Duration `env:"MESSENGER_CLEANUP_INTERVAL" envDefault:"60s"`
	CleanupThreshold int           `env:"MESSENGER_CLEANUP_THRESHOLD" envDefault:"20"`
	ShutdownTimeout  time.Duration `env:"MESSENGER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	TypeCacheSize    int           `env:"MESSENGER_TYPE_CACHE_SIZE" envDefault:"256"`
}

// DefaultConfig returns the defaults used by New.
func DefaultConfig() Config {
	return Config{
		CleanupInterval:  DefaultCleanupInterval,
		CleanupThreshold: DefaultCleanupThreshold,
		ShutdownTimeout:  DefaultShutdownTimeout,
		TypeCacheSize:    DefaultTypeCacheSize,
	}
}

// NewFromConfig creates a Messenger from configuration.
// Zero fields keep their defaults; opts override config values.
func NewFromConfig(cfg Config, opts ...Option) *Messenger {
	allOpts := append([]Option{
		WithCleanupInterval(cfg.CleanupInterval),
		WithCleanupThreshold(cfg.CleanupThreshold),
		WithShutdownTimeout(cfg.ShutdownTimeout),
		WithTypeCacheSize(cfg.TypeCacheSize),
	}, opts...)

	return New(allOpts...)
}
