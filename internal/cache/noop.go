// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cache

import (
	"context"

	"github.com/canonical/tenant-auth-service/internal/types"
)

var _ TenantCacheInterface = (*NoopCache)(nil)

// NoopCache is used when no redis address is configured
type NoopCache struct{}

func (NoopCache) GetByID(context.Context, string) (*types.Tenant, bool) {
	return nil, false
}

func (NoopCache) GetBySubdomain(context.Context, string) (*types.Tenant, bool) {
	return nil, false
}

func (NoopCache) Set(context.Context, *types.Tenant) {}

func (NoopCache) Invalidate(context.Context, *types.Tenant) {}

func NewNoopCache() *NoopCache {
	return new(NoopCache)
}
