package config

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/authdir/internal/flagx"
	"github.com/dmitrijs2005/authdir/internal/timex"
	"github.com/goccy/go-json"
)

// JsonConfig is the on-disk shape of the optional config file. Durations
// accept both "5s" strings and integer nanoseconds; token_ttl is in seconds.
type JsonConfig struct {
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	MetricsAddr      *string        `json:"metrics_addr"`
	DatabaseDSN      string         `json:"database_dsn"`
	CacheURL         string         `json:"cache_url"`
	SecretKey        string         `json:"secret_key"`
	TokenTTLSeconds  int64          `json:"token_ttl"`
	BcryptCost       int            `json:"bcrypt_cost"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	CacheTimeout     timex.Duration `json:"cache_timeout"`
	DBMaxOpenConns   int            `json:"db_max_open_conns"`
	CachePoolSize    int            `json:"cache_pool_size"`
	LogFile          string         `json:"log_file"`
}

// parseJson overlays values from the file named by -c/-config. Only keys
// present with non-zero values replace what is already in config; a null or
// missing metrics_addr keeps the default, an empty one disables metrics.
func parseJson(config *Config, args []string) error {

	jsonConfigFile := flagx.JsonConfigFlags(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("config file %s: %w", jsonConfigFile, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	if c.MetricsAddr != nil {
		config.MetricsAddr = *c.MetricsAddr
	}
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.CacheURL, c.CacheURL)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenTTLSeconds != 0 {
		ttl, err := seconds(c.TokenTTLSeconds)
		if err != nil {
			return fmt.Errorf("config file %s: token_ttl: %w", jsonConfigFile, err)
		}
		config.TokenTTL = ttl
	}
	setInt(&config.BcryptCost, c.BcryptCost)
	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.CacheTimeout.Duration != 0 {
		config.CacheTimeout = c.CacheTimeout.Duration
	}
	setInt(&config.DBMaxOpenConns, c.DBMaxOpenConns)
	setInt(&config.CachePoolSize, c.CachePoolSize)
	setString(&config.LogFile, c.LogFile)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
