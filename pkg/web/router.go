// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/tenant-auth-service/internal/db"
	"github.com/canonical/tenant-auth-service/internal/http/types"
	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/tracing"
	"github.com/canonical/tenant-auth-service/pkg/authentication"
	"github.com/canonical/tenant-auth-service/pkg/identity"
	"github.com/canonical/tenant-auth-service/pkg/metrics"
	"github.com/canonical/tenant-auth-service/pkg/status"
)

func NewRouter(
	service identity.ServiceInterface,
	resolver *authentication.Resolver,
	dbClient db.DBClientInterface,
	allowedOrigins []string,
	trustProxyHeaders bool,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(middlewares, middleware.RequestID)

	// RealIP rewrites RemoteAddr from client supplied headers, the audit trail records that address
	if trustProxyHeaders {
		middlewares = append(middlewares, middleware.RealIP)
	}

	middlewares = append(
		middlewares,
		middleware.Recoverer,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(allowedOrigins),
	)

	router.Use(middlewares...)
	router.NotFound(types.NotFoundHandler(logger))

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(dbClient, tracer, monitor, logger).RegisterEndpoints(router)

	router.Group(func(r chi.Router) {
		// mutating requests share one transaction with everything the handler does
		r.Use(db.TransactionMiddleware(dbClient, logger))

		identity.NewAPI(service, resolver, types.NewValidator(), tracer, monitor, logger).RegisterEndpoints(r)
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
