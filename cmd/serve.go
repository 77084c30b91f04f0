// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-auth-service/internal/cache"
	"github.com/canonical/tenant-auth-service/internal/config"
	"github.com/canonical/tenant-auth-service/internal/credentials"
	"github.com/canonical/tenant-auth-service/internal/db"
	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/monitoring/prometheus"
	"github.com/canonical/tenant-auth-service/internal/storage"
	"github.com/canonical/tenant-auth-service/internal/tracing"
	"github.com/canonical/tenant-auth-service/pkg/authentication"
	"github.com/canonical/tenant-auth-service/pkg/directory"
	"github.com/canonical/tenant-auth-service/pkg/identity"
	"github.com/canonical/tenant-auth-service/pkg/token"
	"github.com/canonical/tenant-auth-service/pkg/web"
)

const serviceName = "tenant-auth-service"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		main()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return fmt.Errorf("issues with environment sourcing: %w", err)
	}

	logger := logging.NewLogger(specs.LogLevel)
	defer logger.Sync()

	monitor := prometheus.NewMonitor(serviceName, logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbConfig := db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		TracingEnabled:  specs.TracingEnabled,
	}
	dbClient, err := db.NewDBClient(dbConfig, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	tenantCache, closeCache := newTenantCache(specs, tracer, monitor, logger)
	defer closeCache()

	hasher, err := credentials.NewHasher(specs.BcryptCost, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("invalid credential configuration: %w", err)
	}

	tokens, err := token.NewService(
		token.Config{
			AccessSecret:  specs.JWTSecret,
			RefreshSecret: specs.JWTRefreshSecret,
			AccessTTL:     specs.JWTAccessTTL,
			RefreshTTL:    specs.JWTRefreshTTL,
			Issuer:        specs.JWTIssuer,
		},
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return fmt.Errorf("invalid token configuration: %w", err)
	}

	tenantDirectory := directory.NewService(s, tenantCache, tracer, monitor, logger)
	resolver := authentication.NewResolver(tokens, tenantDirectory, tracer, monitor, logger)

	identityService := identity.NewService(
		tenantDirectory,
		s,
		dbClient,
		tokens,
		hasher,
		tracer,
		monitor,
		logger,
	)

	router := web.NewRouter(
		identityService,
		resolver,
		dbClient,
		specs.AllowedOrigins,
		specs.TrustProxyHeaders,
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}

// newTenantCache returns the redis backed tenant cache, or a noop one when REDIS_ADDR is unset
func newTenantCache(specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (cache.TenantCacheInterface, func()) {
	if specs.RedisAddr == "" {
		logger.Info("Tenant cache disabled")
		return cache.NewNoopCache(), func() {}
	}

	client := redis.NewClient(
		&redis.Options{
			Addr:     specs.RedisAddr,
			Password: specs.RedisPassword,
			DB:       specs.RedisDB,
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// an unreachable redis is not fatal, lookups fall through to postgres
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warnf("redis at %s is not reachable: %v", specs.RedisAddr, err)
	}

	return cache.NewRedisCache(client, specs.TenantCacheTTL, tracer, monitor, logger), func() {
		if err := client.Close(); err != nil {
			logger.Errorf("failed to close redis client: %v", err)
		}
	}
}

func main() {
	if err := serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
