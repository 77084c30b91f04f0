// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/tenant-auth-service/internal/http/types"
	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/tracing"
	"github.com/canonical/tenant-auth-service/internal/version"
)

const pingTimeout = 2 * time.Second

type Status struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type API struct {
	db PingerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/status", a.alive)
	mux.Get("/health", a.health)
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	httptypes.WriteJSON(w, http.StatusOK, Status{Status: "ok", Version: version.Version}, a.logger)
}

// health reports ready only when the database answers a ping
func (a *API) health(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.health")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	tags := map[string]string{"component": "database"}

	if err := a.db.Ping(ctx); err != nil {
		a.logger.Errorf("database ping failed: %v", err)
		_ = a.monitor.SetDependencyAvailability(tags, 0)

		httptypes.WriteJSON(w, http.StatusServiceUnavailable, Health{Status: "unavailable", Database: "down"}, a.logger)
		return
	}

	_ = a.monitor.SetDependencyAvailability(tags, 1)

	httptypes.WriteJSON(w, http.StatusOK, Health{Status: "ok", Database: "up"}, a.logger)
}

func NewAPI(db PingerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.db = db

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
