package config

import (
	"fmt"

	"github.com/dmitrijs2005/authdir/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-r string   Redis URL
//	-s string   JWT HMAC secret key
//	-t int      token validity, seconds
//	-m string   metrics bind address, empty disables
//	-b int      bcrypt cost
//	-l string   log file, empty logs to stdout
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-r", "-s", "-t", "-m", "-b", "-l"})

	fs := flagx.NewFlagSet("main")

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.CacheURL, "r", config.CacheURL, "redis URL")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenTTL := fs.Int64("t", int64(config.TokenTTL.Seconds()), "token validity (in seconds)")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics address")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogFile, "l", config.LogFile, "log file")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	ttl, err := seconds(*tokenTTL)
	if err != nil {
		return fmt.Errorf("flags: -t: %w", err)
	}
	config.TokenTTL = ttl
	return nil
}
