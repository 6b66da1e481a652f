// Package config loads the application configuration from an optional YAML
// file and PHOTOVAULT_ environment variables, with sane defaults for local
// development.
package config

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/jmgilman/go/errors"
)

const envPrefix = "PHOTOVAULT"

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full application configuration tree.
type Config struct {
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Blob     BlobConfig     `mapstructure:"blob"`
	Log      LogConfig      `mapstructure:"log"`
}

// CacheConfig selects and sizes the cache backend. TTL applies to every
// entry regardless of backend.
type CacheConfig struct {
	Backend            string        `mapstructure:"backend"`
	Capacity           int           `mapstructure:"capacity"`
	NumShards          int           `mapstructure:"num_shards"`
	TTL                time.Duration `mapstructure:"ttl"`
	EvictionPercentage int           `mapstructure:"eviction_percentage"`
}

// RedisConfig holds the shared cache connection, used when the backend is
// "redis".
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatabaseConfig selects the record store.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// BlobConfig holds the object store connection.
type BlobConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	BaseURL   string `mapstructure:"base_url"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from path (optional, empty means defaults and
// environment only) and from PHOTOVAULT_ environment variables. Nested keys
// map with underscores, e.g. PHOTOVAULT_CACHE_BACKEND.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, errors.CodeInvalidInput, "config file %s cannot be read", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "config cannot be decoded")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "config is invalid")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.capacity", 10000)
	v.SetDefault("cache.num_shards", 256)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.eviction_percentage", 10)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "file:photovault.db?_fk=1")

	v.SetDefault("blob.endpoint", "localhost:9000")
	v.SetDefault("blob.bucket", "photos")
	v.SetDefault("blob.base_url", "http://localhost:9000/photos")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks cross-field constraints the decoders cannot express.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Cache, validation.Required),
		validation.Field(&c.Database, validation.Required),
	)
	if err != nil {
		return err
	}

	if err := validation.ValidateStruct(&c.Cache,
		validation.Field(&c.Cache.Backend, validation.Required, validation.In(CacheBackendMemory, CacheBackendRedis)),
		validation.Field(&c.Cache.Capacity, validation.Min(1)),
		validation.Field(&c.Cache.NumShards, validation.Min(1)),
		validation.Field(&c.Cache.EvictionPercentage, validation.Min(0), validation.Max(100)),
	); err != nil {
		return err
	}

	if err := validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Driver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
		validation.Field(&c.Database.DSN, validation.Required),
	); err != nil {
		return err
	}

	if c.Cache.Backend == CacheBackendRedis {
		if err := validation.ValidateStruct(&c.Redis,
			validation.Field(&c.Redis.Addr, validation.Required),
		); err != nil {
			return err
		}
	}

	return validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Log.Format, validation.In("json", "console")),
	)
}
