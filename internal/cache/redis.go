// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/tracing"
	"github.com/canonical/tenant-auth-service/internal/types"
)

var _ TenantCacheInterface = (*RedisCache)(nil)

func IDKey(id string) string {
	return fmt.Sprintf("tenant:id:%s", id)
}

func SubdomainKey(subdomain string) string {
	return fmt.Sprintf("tenant:subdomain:%s", subdomain)
}

// RedisCache stores tenants as JSON under both lookup keys. Every failure is
// logged and reported as a miss.
type RedisCache struct {
	client RedisClientInterface
	ttl    time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *RedisCache) GetByID(ctx context.Context, id string) (*types.Tenant, bool) {
	ctx, span := c.tracer.Start(ctx, "cache.RedisCache.GetByID")
	defer span.End()

	return c.get(ctx, IDKey(id))
}

func (c *RedisCache) GetBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, bool) {
	ctx, span := c.tracer.Start(ctx, "cache.RedisCache.GetBySubdomain")
	defer span.End()

	return c.get(ctx, SubdomainKey(subdomain))
}

func (c *RedisCache) Set(ctx context.Context, t *types.Tenant) {
	ctx, span := c.tracer.Start(ctx, "cache.RedisCache.Set")
	defer span.End()

	raw, err := json.Marshal(t)
	if err != nil {
		c.logger.Errorf("failed to encode tenant %s for cache: %v", t.ID, err)
		return
	}

	for _, key := range []string{IDKey(t.ID), SubdomainKey(t.Subdomain)} {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.unavailable(err)
			return
		}
	}
	c.available()
}

func (c *RedisCache) Invalidate(ctx context.Context, t *types.Tenant) {
	ctx, span := c.tracer.Start(ctx, "cache.RedisCache.Invalidate")
	defer span.End()

	if err := c.client.Del(ctx, IDKey(t.ID), SubdomainKey(t.Subdomain)).Err(); err != nil {
		c.unavailable(err)
		return
	}
	c.available()
}

func (c *RedisCache) get(ctx context.Context, key string) (*types.Tenant, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.available()
		return nil, false
	}
	if err != nil {
		c.unavailable(err)
		return nil, false
	}
	c.available()

	t := new(types.Tenant)
	if err := json.Unmarshal(raw, t); err != nil {
		c.logger.Warnf("discarding undecodable cache entry %s: %v", key, err)
		return nil, false
	}

	return t, true
}

func (c *RedisCache) available() {
	_ = c.monitor.SetDependencyAvailability(map[string]string{"component": "redis"}, 1)
}

func (c *RedisCache) unavailable(err error) {
	c.logger.Warnf("tenant cache unavailable: %v", err)
	_ = c.monitor.SetDependencyAvailability(map[string]string{"component": "redis"}, 0)
}

func NewRedisCache(client RedisClientInterface, ttl time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *RedisCache {
	c := new(RedisCache)

	c.client = client
	c.ttl = ttl

	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	return c
}
