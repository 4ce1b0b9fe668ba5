package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv exports the variables of path into the process environment
// without overriding ones already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

const maxSeconds = math.MaxInt64 / int64(time.Second)

// seconds converts a whole number of seconds, rejecting values a
// time.Duration cannot hold.
func seconds(n int64) (time.Duration, error) {
	if n > maxSeconds || n < -maxSeconds {
		return 0, fmt.Errorf("%d seconds is out of range", n)
	}
	return time.Duration(n) * time.Second, nil
}

// parseEnv overlays environment variables. Malformed numbers are collected
// rather than silently ignored.
func parseEnv(config *Config, lookupEnv func(string) (string, bool)) []error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookupEnv(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not an integer", key, v))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not a duration", key, v))
				return
			}
			*dst = d
		}
	}

	if port, ok := lookupEnv("PORT"); ok && port != "" {
		config.EndpointAddrGRPC = ":" + port
	}
	str("METRICS_ADDR", &config.MetricsAddr)
	str("DATABASE_URL", &config.DatabaseDSN)
	str("REDIS_URL", &config.CacheURL)
	str("JWT_SECRET", &config.SecretKey)
	str("LOG_FILE", &config.LogFile)

	if v, ok := lookupEnv("TOKEN_TTL"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("TOKEN_TTL: %q is not an integer number of seconds", v))
		} else if d, err := seconds(n); err != nil {
			errs = append(errs, fmt.Errorf("TOKEN_TTL: %w", err))
		} else {
			config.TokenTTL = d
		}
	}

	integer("BCRYPT_COST", &config.BcryptCost)
	integer("DB_MAX_OPEN_CONNS", &config.DBMaxOpenConns)
	integer("REDIS_POOL_SIZE", &config.CachePoolSize)
	duration("REQUEST_TIMEOUT", &config.RequestTimeout)
	duration("CACHE_TIMEOUT", &config.CacheTimeout)

	return errs
}
