// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/canonical/tenant-auth-service/pkg/identity"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Register, log in and refresh tokens against a running service",
}

var registerCmd = &cobra.Command{
	Use:   "register [tenant-id] [email]",
	Short: "Register a user in a tenant, admins can only be registered with an admin token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")

		req := identity.RegisterRequest{
			TenantID: args[0],
			Email:    args[1],
			Password: password,
			Name:     name,
			Role:     role,
		}

		resp := new(identity.AuthResult)
		if err := getClient().do(cmd.Context(), http.MethodPost, "/auth/register", req, resp); err != nil {
			return fmt.Errorf("failed to register user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User registered: %s (ID: %s, role: %s)\n", resp.User.Email, resp.User.ID, resp.User.Role)
		printTokens(cmd.OutOrStdout(), resp.TokenPair)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login [tenant-id] [email]",
	Short: "Log in and print a token pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")

		req := identity.LoginRequest{
			TenantID: args[0],
			Email:    args[1],
			Password: password,
		}

		resp := new(identity.AuthResult)
		if err := getClient().do(cmd.Context(), http.MethodPost, "/auth/login", req, resp); err != nil {
			return fmt.Errorf("failed to log in: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in: %s (role: %s)\n", resp.User.Email, resp.User.Role)
		printTokens(cmd.OutOrStdout(), resp.TokenPair)
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh [refresh-token]",
	Short: "Exchange a refresh token for a new access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp := new(identity.RefreshResult)
		if err := getClient().do(cmd.Context(), http.MethodPost, "/auth/refresh", identity.RefreshRequest{RefreshToken: args[0]}, resp); err != nil {
			return fmt.Errorf("failed to refresh token: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Access token: %s\nExpires in: %ds\n", resp.AccessToken, resp.ExpiresIn)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(refreshCmd)

	registerCmd.Flags().String("password", "", "Password, 8 to 72 characters")
	registerCmd.Flags().String("name", "", "Display name")
	registerCmd.Flags().String("role", "", "Role (admin, staff or customer), defaults to staff")
	_ = registerCmd.MarkFlagRequired("password")
	_ = registerCmd.MarkFlagRequired("name")

	loginCmd.Flags().String("password", "", "Password")
	_ = loginCmd.MarkFlagRequired("password")
}
