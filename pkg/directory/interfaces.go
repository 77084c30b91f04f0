// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"context"

	"github.com/canonical/tenant-auth-service/internal/types"
)

type ServiceInterface interface {
	FindByID(ctx context.Context, id string) (*types.Tenant, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error)
	GetByID(ctx context.Context, id string) (*types.Tenant, error)
	Create(ctx context.Context, draft *types.Tenant) (*types.Tenant, error)
	Update(ctx context.Context, id string, update *types.TenantUpdate) (*types.Tenant, error)
}

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error)
	UpdateTenant(ctx context.Context, id string, update *types.TenantUpdate) (*types.Tenant, error)
}

type CacheInterface interface {
	GetByID(ctx context.Context, id string) (*types.Tenant, bool)
	GetBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, bool)
	Set(ctx context.Context, t *types.Tenant)
	Invalidate(ctx context.Context, t *types.Tenant)
}
