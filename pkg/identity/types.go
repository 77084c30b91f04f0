// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"github.com/canonical/tenant-auth-service/internal/types"
)

type RegisterInput struct {
	TenantID string
	Email    string
	Password string
	Name     string
	Role     types.Role

	// Caller is the authenticated principal, if any. Only tenant admins may create admins.
	Caller *types.Principal
}

type LoginInput struct {
	TenantID string
	Email    string
	Password string
	ClientIP string
}

type ProvisionInput struct {
	Name          string
	Subdomain     string
	AccentColor   string
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

type AuthResult struct {
	User *types.User `json:"user"`

	types.TokenPair
}

type RefreshResult struct {
	AccessToken string `json:"token"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type ProvisionResult struct {
	Tenant *types.Tenant `json:"tenant"`
	Admin  *types.User   `json:"admin"`

	types.TokenPair
}

// request bodies

type RegisterRequest struct {
	TenantID string `json:"tenantId" validate:"required,uuid"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Role     string `json:"role" validate:"omitempty,role"`
}

type LoginRequest struct {
	TenantID string `json:"tenantId" validate:"required,uuid"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ProvisionTenantRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=255"`
	Subdomain     string `json:"subdomain" validate:"required,subdomain"`
	AccentColor   string `json:"accentColor" validate:"omitempty,accentcolor"`
	AdminEmail    string `json:"adminEmail" validate:"required,email"`
	AdminPassword string `json:"adminPassword" validate:"required,min=8,maxbytes=72"`
	AdminName     string `json:"adminName" validate:"required,min=1,max=255"`
}

type UpdateTenantRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=255"`
	LogoURL      *string `json:"logoUrl" validate:"omitempty,url"`
	AccentColor  *string `json:"accentColor" validate:"omitempty,accentcolor"`
	Theme        *string `json:"theme" validate:"omitempty,oneof=light dark auto"`
	CustomDomain *string `json:"customDomain" validate:"omitempty,hostname"`
}

func (r *UpdateTenantRequest) toUpdate() *types.TenantUpdate {
	return &types.TenantUpdate{
		Name:         r.Name,
		LogoURL:      r.LogoURL,
		AccentColor:  r.AccentColor,
		Theme:        r.Theme,
		CustomDomain: r.CustomDomain,
	}
}
