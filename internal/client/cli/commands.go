package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRegisterCmd(root *rootConfig) *cobra.Command {
	var userName, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := username(cmd, userName)
			if err != nil {
				return err
			}
			password, err := GetPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return withClient(cmd, root, func(ctx context.Context, c AuthClient) error {
				if err := c.Register(ctx, name, password, role); err != nil {
					return fmt.Errorf("register: %w", err)
				}
				cmd.Printf("registered %s (%s)\n", name, role)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userName, "username", "u", "", "user name (prompted when empty)")
	cmd.Flags().StringVarP(&role, "role", "r", "", "role: team_manager or insurance")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func newLoginCmd(root *rootConfig) *cobra.Command {
	var userName string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := username(cmd, userName)
			if err != nil {
				return err
			}
			password, err := GetPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return withClient(cmd, root, func(ctx context.Context, c AuthClient) error {
				token, err := c.Authenticate(ctx, name, password)
				if err != nil {
					return fmt.Errorf("login: %w", err)
				}
				cmd.Println(token)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userName, "username", "u", "", "user name (prompted when empty)")

	return cmd
}

func newValidateCmd(root *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "validate TOKEN",
		Short: "Check a session token and show its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, root, func(ctx context.Context, c AuthClient) error {
				info, err := c.ValidateToken(ctx, args[0])
				if err != nil {
					return fmt.Errorf("validate: %w", err)
				}
				cmd.Printf("username: %s\nrole: %s\nexpires: %s\n", info.Username, info.Role, info.ExpiresAt.UTC().Format(time.RFC3339))
				return nil
			})
		},
	}
}
