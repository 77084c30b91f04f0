// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-auth-service/internal/apierrors"
	httptypes "github.com/canonical/tenant-auth-service/internal/http/types"
	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/tracing"
	"github.com/canonical/tenant-auth-service/internal/types"
	"github.com/canonical/tenant-auth-service/pkg/authentication"
)

const tenantIDParam = "tenantId"

type API struct {
	service   ServiceInterface
	resolver  *authentication.Resolver
	validator *httptypes.Validator

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Post("/tenants", a.provisionTenant)

	mux.With(a.resolver.Chain(a.resolver.TenantFromHost())).
		Get("/tenants/current", a.currentTenant)

	mux.Route("/tenants/{"+tenantIDParam+"}", func(r chi.Router) {
		r.Use(
			a.resolver.Chain(
				a.resolver.TenantFromPath(tenantIDParam),
				a.resolver.RequireToken(),
				a.resolver.RequireTenantAccess(),
			),
		)

		r.Get("/", a.getTenant)
		r.With(a.resolver.Chain(a.resolver.RequireRole(types.RoleAdmin))).
			Patch("/", a.updateTenant)
	})

	mux.With(a.resolver.Chain(a.resolver.OptionalToken())).
		Post("/auth/register", a.register)
	mux.Post("/auth/login", a.login)
	mux.Post("/auth/refresh", a.refresh)
}

func (a *API) provisionTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "identity.API.provisionTenant")
	defer span.End()

	req := new(ProvisionTenantRequest)
	if err := a.validator.Decode(r, req); err != nil {
		httptypes.WriteError(w, r, err, a.logger)
		return
	}

	res, err := a.service.ProvisionTenant(
		ctx,
		ProvisionInput{
			Name:          req.Name,
			Subdomain:     req.Subdomain,
			AccentColor:   req.AccentColor,
			AdminEmail:    req.AdminEmail,
			AdminPassword: req.AdminPassword,
			AdminName:     req.AdminName,
		},
	)
	if err != nil {
		httptypes.WriteError(w, r, err, a.logger)
		return
	}

	httptypes.WriteJSON(w, http.StatusCreated, res, a.logger)
}

// currentTenant serves the branding of the tenant named by the request host
func (a *API) currentTenant(w http.ResponseWriter, r *http.Request) {
	ac, _ := authentication.FromContext(r.Context())

	tenant, ok := ac.Tenant()
	if !ok {
		httptypes.WriteError(w, r, apierrors.NotFound("Tenant not found"), a.logger)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, tenant, a.logger)
}

func (a *API) getTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "identity.API.getTenant")
	defer span.End()

	tenant, err := a.service.GetTenant(ctx, a.scopedTenantID(r))
	if err != nil {
		httptypes.WriteError(w, r, err, a.logger)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, tenant, a.logger)
}

func (a *API) updateTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "identity.API.updateTenant")
	defer span.End()

	req := new(UpdateTenantRequest)
	if err := a.validator.Decode(r, req); err != nil {
		httptypes.WriteError(w, r, err, a.logger)
		return
	}

	tenant, err := a.service.UpdateTenant(ctx, a.scopedTenantID(r), req.toUpdate())
	if err != nil {
		httptypes.WriteError(w, r, err, a.logger)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, tenant, a.logger)
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "identity.API.register")
	defer span.End()

	req := new(RegisterRequest)
	if err := a.validator.Decode(r, req); err != nil {
		httptypes.WriteError(w, r, err, a.logger)
		return
	}

	in := RegisterInput{
		TenantID: req.TenantID,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     types.Role(req.Role),
	}

	if ac, ok := authentication.FromContext(ctx); ok {
		if p, ok := ac.Principal(); ok {
			in.Caller = &p
		}
	}

	res, err := a.service.Register(ctx, in)
	if err != nil {
		httptypes.WriteError(w, r, err, a.logger)
		return
	}

	httptypes.WriteJSON(w, http.StatusCreated, res, a.logger)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "identity.API.login")
	defer span.End()

	req := new(LoginRequest)
	if err := a.validator.Decode(r, req); err != nil {
		httptypes.WriteError(w, r, err, a.logger)
		return
	}

	res, err := a.service.Login(
		ctx,
		LoginInput{
			TenantID: req.TenantID,
			Email:    req.Email,
			Password: req.Password,
			ClientIP: authentication.ClientIP(r),
		},
	)
	if err != nil {
		httptypes.WriteError(w, r, err, a.logger)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, res, a.logger)
}

func (a *API) refresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "identity.API.refresh")
	defer span.End()

	req := new(RefreshRequest)
	if err := a.validator.Decode(r, req); err != nil {
		httptypes.WriteError(w, r, err, a.logger)
		return
	}

	res, err := a.service.RefreshAccessToken(ctx, req.RefreshToken)
	if err != nil {
		httptypes.WriteError(w, r, err, a.logger)
		return
	}

	httptypes.WriteJSON(w, http.StatusOK, res, a.logger)
}

// scopedTenantID returns the tenant resolved by the chain, which has already
// been checked against the principal
func (a *API) scopedTenantID(r *http.Request) string {
	if ac, ok := authentication.FromContext(r.Context()); ok {
		if t, ok := ac.Tenant(); ok {
			return t.ID
		}
	}
	return chi.URLParam(r, tenantIDParam)
}

func NewAPI(
	service ServiceInterface,
	resolver *authentication.Resolver,
	validator *httptypes.Validator,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	a := new(API)

	a.service = service
	a.resolver = resolver
	a.validator = validator

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
