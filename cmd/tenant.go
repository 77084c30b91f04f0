// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canonical/tenant-auth-service/internal/types"
	"github.com/canonical/tenant-auth-service/pkg/identity"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var createTenantCmd = &cobra.Command{
	Use:   "create [name] [subdomain]",
	Short: "Provision a new tenant together with its first admin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		adminEmail, _ := cmd.Flags().GetString("admin-email")
		adminPassword, _ := cmd.Flags().GetString("admin-password")
		adminName, _ := cmd.Flags().GetString("admin-name")
		accentColor, _ := cmd.Flags().GetString("accent-color")

		req := identity.ProvisionTenantRequest{
			Name:          args[0],
			Subdomain:     args[1],
			AccentColor:   accentColor,
			AdminEmail:    adminEmail,
			AdminPassword: adminPassword,
			AdminName:     adminName,
		}

		resp := new(identity.ProvisionResult)
		if err := getClient().do(cmd.Context(), http.MethodPost, "/tenants", req, resp); err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Tenant created: %s (ID: %s, subdomain: %s)\n", resp.Tenant.Name, resp.Tenant.ID, resp.Tenant.Subdomain)
		fmt.Fprintf(out, "Admin created: %s (ID: %s)\n", resp.Admin.Email, resp.Admin.ID)
		printTokens(out, resp.TokenPair)
		return nil
	},
}

var getTenantCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a tenant, requires a token of one of its users",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant := new(types.Tenant)
		if err := getClient().do(cmd.Context(), http.MethodGet, "/tenants/"+url.PathEscape(args[0]), nil, tenant); err != nil {
			return fmt.Errorf("failed to get tenant: %w", err)
		}

		printTenant(cmd.OutOrStdout(), tenant)
		return nil
	},
}

var updateTenantCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update tenant branding, requires an admin token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := new(identity.UpdateTenantRequest)

		for flag, dst := range map[string]**string{
			"name":          &req.Name,
			"logo-url":      &req.LogoURL,
			"accent-color":  &req.AccentColor,
			"theme":         &req.Theme,
			"custom-domain": &req.CustomDomain,
		} {
			if !cmd.Flags().Changed(flag) {
				continue
			}
			v, _ := cmd.Flags().GetString(flag)
			*dst = &v
		}

		tenant := new(types.Tenant)
		if err := getClient().do(cmd.Context(), http.MethodPatch, "/tenants/"+url.PathEscape(args[0]), req, tenant); err != nil {
			return fmt.Errorf("failed to update tenant: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Tenant updated: %s\n", tenant.ID)
		printTenant(cmd.OutOrStdout(), tenant)
		return nil
	},
}

func printTenant(out io.Writer, t *types.Tenant) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSUBDOMAIN\tACCENT\tTHEME\tPLAN\tACTIVE")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%v\n", t.ID, t.Name, t.Subdomain, t.AccentColor, t.Theme, t.Plan, t.IsActive)
	w.Flush()
}

func printTokens(out io.Writer, pair types.TokenPair) {
	fmt.Fprintf(out, "Access token: %s\n", pair.AccessToken)
	if pair.RefreshToken != "" {
		fmt.Fprintf(out, "Refresh token: %s\n", pair.RefreshToken)
	}
	fmt.Fprintf(out, "Expires in: %ds\n", pair.ExpiresIn)
}

func init() {
	rootCmd.AddCommand(tenantCmd)
	tenantCmd.AddCommand(createTenantCmd)
	tenantCmd.AddCommand(getTenantCmd)
	tenantCmd.AddCommand(updateTenantCmd)

	createTenantCmd.Flags().String("admin-email", "", "Email of the first admin")
	createTenantCmd.Flags().String("admin-password", "", "Password of the first admin")
	createTenantCmd.Flags().String("admin-name", "", "Display name of the first admin")
	createTenantCmd.Flags().String("accent-color", "", "Accent color, defaults to "+types.DefaultAccentColor)
	_ = createTenantCmd.MarkFlagRequired("admin-email")
	_ = createTenantCmd.MarkFlagRequired("admin-password")
	_ = createTenantCmd.MarkFlagRequired("admin-name")

	updateTenantCmd.Flags().String("name", "", "Tenant display name")
	updateTenantCmd.Flags().String("logo-url", "", "Logo URL")
	updateTenantCmd.Flags().String("accent-color", "", "Accent color (#RRGGBB)")
	updateTenantCmd.Flags().String("theme", "", "Theme (light, dark or auto)")
	updateTenantCmd.Flags().String("custom-domain", "", "Custom domain")
}
