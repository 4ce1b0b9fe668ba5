// Package config handles configuration for the server component: defaults,
// an optional JSON file, .env plus process environment, and command-line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"os"
	"time"
)

// Config holds runtime settings for the authdir server.
type Config struct {
	EndpointAddrGRPC string        `env:"PORT" validate:"required"`
	MetricsAddr      string        `env:"METRICS_ADDR"`
	DatabaseDSN      string        `env:"DATABASE_URL" validate:"required"`
	CacheURL         string        `env:"REDIS_URL" validate:"required"`
	SecretKey        string        `env:"JWT_SECRET" validate:"required"`
	TokenTTL         time.Duration `env:"TOKEN_TTL" validate:"required,gt=0"`
	BcryptCost       int           `env:"BCRYPT_COST" validate:"min=4,max=31"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" validate:"gt=0"`
	CacheTimeout     time.Duration `env:"CACHE_TIMEOUT" validate:"gt=0"`
	DBMaxOpenConns   int           `env:"DB_MAX_OPEN_CONNS" validate:"gt=0"`
	CachePoolSize    int           `env:"REDIS_POOL_SIZE" validate:"gt=0"`
	LogFile          string        `env:"LOG_FILE"`
}

// LoadDefaults populates the optional settings. The store URLs, the secret
// and the token TTL have no defaults and must be supplied.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.MetricsAddr = ":9090"
	c.BcryptCost = 10
	c.RequestTimeout = 5 * time.Second
	c.CacheTimeout = 200 * time.Millisecond
	c.DBMaxOpenConns = 20
	c.CachePoolSize = 20
}

// LoadConfig reads the process command line and environment (after loading
// .env if present) and returns the validated Config.
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	return Load(os.Args[1:], os.LookupEnv)
}

// Load builds a Config from args and lookupEnv. Every problem found is
// reported in a single joined error.
func Load(args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	var errs []error

	if err := parseJson(cfg, args); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, parseEnv(cfg, lookupEnv)...)
	if err := parseFlags(cfg, args); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, validate(cfg)...)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}
