package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Supported document store backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config selects and configures the document store backend.
type Config struct {
	Backend string       `yaml:"backend" env:"CACHE_BACKEND"`
	Redis   RedisConfig  `yaml:"redis"`
	Memory  MemoryConfig `yaml:"memory"`
}

// RedisConfig configures the RedisJSON backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Username string `yaml:"username" env:"REDIS_USERNAME"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`

	// OpTimeout bounds every cache call; a timeout surfaces as a cache failure.
	OpTimeout time.Duration `yaml:"op_timeout" env:"REDIS_OP_TIMEOUT"`
}

// MemoryConfig mirrors the sturdyc options used by the in-process backend.
type MemoryConfig struct {
	// Capacity is the maximum number of documents. The key set is fixed and
	// small, so the default never triggers eviction.
	Capacity int `yaml:"capacity"`

	NumShards int `yaml:"num_shards"`

	// TTL is the backstop lifetime of a stored envelope. Per-key expiry set
	// through Expire is enforced independently and must stay below it.
	TTL time.Duration `yaml:"ttl"`

	EvictionPercentage int           `yaml:"eviction_percentage"`
	EvictionInterval   time.Duration `yaml:"eviction_interval"`
}

// DefaultConfig returns a Config using the in-process backend.
func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			OpTimeout: 5 * time.Second,
		},
		Memory: DefaultMemoryConfig(),
	}
}

// DefaultMemoryConfig returns the in-process backend defaults.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity:           1024,
		NumShards:          16,
		TTL:                48 * time.Hour,
		EvictionPercentage: 10,
	}
}

// Validate checks the selected backend's settings.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendRedis, BackendMemory)),
	); err != nil {
		return err
	}
	if c.Backend == BackendRedis {
		return c.Redis.Validate()
	}
	return c.Memory.Validate()
}

// Validate checks the RedisJSON settings.
func (c RedisConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DB, validation.Min(0)),
		validation.Field(&c.OpTimeout, validation.Required, validation.Min(time.Millisecond)),
	)
}

// Validate checks the sturdyc settings.
func (c MemoryConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(CatalogTTL)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
}
