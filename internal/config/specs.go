// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	AllowedOrigins []string `envconfig:"allowed_origins" default:"http://localhost:3000"`
	// only enable behind a proxy that overwrites X-Forwarded-For and X-Real-IP
	TrustProxyHeaders bool `envconfig:"trust_proxy_headers" default:"false"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	JWTSecret        string        `envconfig:"jwt_secret" required:"true"`
	JWTRefreshSecret string        `envconfig:"jwt_refresh_secret" required:"true"`
	JWTAccessTTL     time.Duration `envconfig:"jwt_access_ttl" default:"1h"`
	JWTRefreshTTL    time.Duration `envconfig:"jwt_refresh_ttl" default:"168h"`
	JWTIssuer        string        `envconfig:"jwt_issuer" default:"tenant-auth-service"`

	BcryptCost int `envconfig:"bcrypt_cost" default:"12"`

	RedisAddr      string        `envconfig:"redis_addr"`
	RedisPassword  string        `envconfig:"redis_password"`
	RedisDB        int           `envconfig:"redis_db" default:"0"`
	TenantCacheTTL time.Duration `envconfig:"tenant_cache_ttl" default:"5m"`
}
