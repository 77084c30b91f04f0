// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/tenant-auth-service/internal/types"
)

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error)
	UpdateTenant(ctx context.Context, id string, update *types.TenantUpdate) (*types.Tenant, error)

	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
	GetUserByTenantAndEmail(ctx context.Context, tenantID, email string) (*types.User, error)
	UpdateUserLastLogin(ctx context.Context, id string, at time.Time) error
}
