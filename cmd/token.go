// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/tracing"
	"github.com/canonical/tenant-auth-service/internal/types"
	"github.com/canonical/tenant-auth-service/pkg/token"
)

// tokenSpec is the part of the environment needed to sign tokens offline
type tokenSpec struct {
	JWTSecret        string        `envconfig:"jwt_secret" required:"true"`
	JWTRefreshSecret string        `envconfig:"jwt_refresh_secret" required:"true"`
	JWTAccessTTL     time.Duration `envconfig:"jwt_access_ttl" default:"1h"`
	JWTRefreshTTL    time.Duration `envconfig:"jwt_refresh_ttl" default:"168h"`
	JWTIssuer        string        `envconfig:"jwt_issuer" default:"tenant-auth-service"`
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a token pair locally with the secrets from the environment",
	Long:  `Mint a token pair locally with the secrets from the environment. Intended for operators and tests, the user is not looked up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		tenantID, _ := cmd.Flags().GetString("tenant-id")
		email, _ := cmd.Flags().GetString("email")
		roleFlag, _ := cmd.Flags().GetString("role")

		role, err := types.ParseRole(roleFlag)
		if err != nil {
			return err
		}

		specs := new(tokenSpec)
		if err := envconfig.Process("", specs); err != nil {
			return fmt.Errorf("issues with environment sourcing: %w", err)
		}

		tokens, err := token.NewService(
			token.Config{
				AccessSecret:  specs.JWTSecret,
				RefreshSecret: specs.JWTRefreshSecret,
				AccessTTL:     specs.JWTAccessTTL,
				RefreshTTL:    specs.JWTRefreshTTL,
				Issuer:        specs.JWTIssuer,
			},
			tracing.NewNoopTracer(),
			monitoring.NewNoopMonitor("tenant-auth-service"),
			logging.NewNoopLogger(),
		)
		if err != nil {
			return err
		}

		pair, err := tokens.IssuePair(
			cmd.Context(),
			types.TokenPayload{Subject: subject, TenantID: tenantID, Email: email, Role: role},
		)
		if err != nil {
			return fmt.Errorf("failed to issue tokens: %w", err)
		}

		printTokens(cmd.OutOrStdout(), *pair)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("subject", "", "User ID carried as the token subject")
	tokenCmd.Flags().String("tenant-id", "", "Tenant ID")
	tokenCmd.Flags().String("email", "", "User email")
	tokenCmd.Flags().String("role", string(types.RoleStaff), "Role (admin, staff or customer)")

	_ = tokenCmd.MarkFlagRequired("subject")
	_ = tokenCmd.MarkFlagRequired("tenant-id")
}
