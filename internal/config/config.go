package config

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	StoreMemory = "memory"
	StoreHybrid = "hybrid"
)

// Config is the runtime configuration of the nyt binary.
type Config struct {
	Addr         string
	Store        string
	RedisAddr    string
	BadgerPath   string
	SeedCount    int
	CacheEnabled bool
	GCInterval   time.Duration
	Dev          bool
	LogLevel     string
}

func Default() Config {
	return Config{
		Addr:         ":8080",
		Store:        StoreMemory,
		RedisAddr:    "localhost:6379",
		BadgerPath:   "./badger-data",
		SeedCount:    1000,
		CacheEnabled: true,
		GCInterval:   5 * time.Minute,
		LogLevel:     "info",
	}
}

// BindFlags registers every field on fs, using the current values as defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
	fs.StringVar(&c.Store, "store", c.Store, "Article store: memory or hybrid (Redis + Badger)")
	fs.StringVar(&c.RedisAddr, "redis", c.RedisAddr, "Address of Redis server")
	fs.StringVar(&c.BadgerPath, "badger", c.BadgerPath, "Path to BadgerDB data directory (empty keeps it in memory)")
	fs.IntVar(&c.SeedCount, "seed", c.SeedCount, "Number of fixture articles loaded into the memory store")
	fs.BoolVar(&c.CacheEnabled, "cache", c.CacheEnabled, "Cache article reads in process")
	fs.DurationVar(&c.GCInterval, "gc-interval", c.GCInterval, "BadgerDB value log GC interval")
	fs.BoolVar(&c.Dev, "dev", c.Dev, "Human-readable development logging")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn or error")
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.Store, validation.Required, validation.In(StoreMemory, StoreHybrid)),
		validation.Field(&c.RedisAddr, validation.When(c.Store == StoreHybrid, validation.Required)),
		validation.Field(&c.SeedCount, validation.Min(0)),
		validation.Field(&c.GCInterval, validation.Min(time.Second)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

// NewLogger builds the zap logger described by the config.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.Dev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
