// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/canonical/tenant-auth-service/internal/types"
)

type TenantCacheInterface interface {
	GetByID(ctx context.Context, id string) (*types.Tenant, bool)
	GetBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, bool)
	Set(ctx context.Context, t *types.Tenant)
	Invalidate(ctx context.Context, t *types.Tenant)
}

// RedisClientInterface is the subset of redis.Cmdable the cache needs
type RedisClientInterface interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}
