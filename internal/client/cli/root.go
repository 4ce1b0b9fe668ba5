// Package cli implements the authdir command-line client: register, login
// and validate against a running server.
package cli

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/dmitrijs2005/authdir/internal/client/client"
	"github.com/spf13/cobra"
)

// AuthClient is the part of client.GRPCClient the commands use.
type AuthClient interface {
	Register(ctx context.Context, userName, password, role string) error
	Authenticate(ctx context.Context, userName, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (*client.TokenInfo, error)
	Close() error
}

// dial is a test seam.
var dial = func(addr string) (AuthClient, error) {
	return client.NewAuthClient(addr)
}

type rootConfig struct {
	addr    string
	timeout time.Duration
}

func defaultAddr() string {
	if v := os.Getenv("AUTHDIR_ADDR"); v != "" {
		return v
	}
	return "localhost:50051"
}

// NewRootCmd creates the root command of the client CLI.
func NewRootCmd() *cobra.Command {
	cfg := &rootConfig{}

	cmd := &cobra.Command{
		Use:           "authdir",
		Short:         "authdir client",
		Long:          `Register users, sign in and check session tokens against an authdir server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&cfg.addr, "addr", "a", defaultAddr(), "server address (env AUTHDIR_ADDR)")
	cmd.PersistentFlags().DurationVar(&cfg.timeout, "timeout", 10*time.Second, "per-call timeout")

	cmd.AddCommand(newRegisterCmd(cfg))
	cmd.AddCommand(newLoginCmd(cfg))
	cmd.AddCommand(newValidateCmd(cfg))

	return cmd
}

// withClient dials, runs fn with a per-call deadline, and closes the
// connection.
func withClient(cmd *cobra.Command, cfg *rootConfig, fn func(ctx context.Context, c AuthClient) error) error {
	c, err := dial(cfg.addr)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	return fn(ctx, c)
}

// username returns the flag value or prompts for it.
func username(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return GetSimpleText(bufio.NewReader(cmd.InOrStdin()), "Enter username", cmd.OutOrStdout())
}
