// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-auth-service/internal/apierrors"
	httptypes "github.com/canonical/tenant-auth-service/internal/http/types"
	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/tracing"
	"github.com/canonical/tenant-auth-service/internal/types"
	"github.com/canonical/tenant-auth-service/pkg/directory"
	"github.com/canonical/tenant-auth-service/pkg/token"
)

// Step is one stage of request resolution. It receives the context built so far
// and returns either an extended copy or an error that ends the chain.
type Step func(*http.Request, AuthContext) (AuthContext, error)

var reservedSubdomains = []string{"www", "api"}

type Resolver struct {
	tokens    TokenVerifierInterface
	directory TenantDirectoryInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Chain runs steps in order and stores the resulting AuthContext in the request
// context. The first failing step writes the error response.
func (m *Resolver) Chain(steps ...Step) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "authentication.Resolver.Chain")
			defer span.End()

			r = r.WithContext(ctx)

			ac, ok := FromContext(ctx)
			if !ok {
				ac = NewAuthContext(ClientIP(r))
			}

			for _, step := range steps {
				var err error
				if ac, err = step(r, ac); err != nil {
					httptypes.WriteError(w, r, err, m.logger)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithAuthContext(ctx, ac)))
		})
	}
}

// TenantFromPath resolves the tenant named by the chi URL parameter param.
func (m *Resolver) TenantFromPath(param string) Step {
	return func(r *http.Request, ac AuthContext) (AuthContext, error) {
		id := chi.URLParam(r, param)
		if id == "" {
			return ac, apierrors.BadRequest("Tenant ID required")
		}

		t, err := m.directory.GetByID(r.Context(), id)
		if errors.Is(err, directory.ErrTenantNotFound) {
			return ac, apierrors.NotFound("Tenant not found")
		}
		if err != nil {
			return ac, apierrors.Internal("failed to resolve tenant", err)
		}

		if !t.IsActive {
			return ac, apierrors.Forbidden("Tenant account is inactive")
		}

		return ac.WithTenant(*t), nil
	}
}

// TenantFromHost resolves the tenant from the leftmost label of the Host header.
// It never fails: an unknown or inactive subdomain leaves the tenant unset, so
// it must only guard public routes.
func (m *Resolver) TenantFromHost() Step {
	return func(r *http.Request, ac AuthContext) (AuthContext, error) {
		subdomain, ok := subdomainFromHost(r.Host)
		if !ok {
			return ac, nil
		}

		t, err := m.directory.FindBySubdomain(r.Context(), subdomain)
		if err != nil {
			if !errors.Is(err, directory.ErrTenantNotFound) {
				m.logger.Warnf("subdomain lookup for %q failed: %v", subdomain, err)
			}
			return ac, nil
		}

		return ac.WithTenant(*t), nil
	}
}

// RequireToken rejects requests without a valid access token.
func (m *Resolver) RequireToken() Step {
	return func(r *http.Request, ac AuthContext) (AuthContext, error) {
		raw, found := getBearerToken(r.Header)
		if !found {
			return ac, apierrors.Unauthorized("No token provided")
		}

		p, err := m.tokens.Verify(r.Context(), raw, token.KindAccess)
		if err != nil {
			m.logger.Security().AuthnTokenInvalid(string(token.KindAccess), ac.ClientIP())
			return ac, apierrors.Unauthorized("Invalid or expired token")
		}

		return ac.WithPrincipal(*p), nil
	}
}

// OptionalToken attaches the principal when a valid access token is present and
// otherwise lets the request through anonymously.
func (m *Resolver) OptionalToken() Step {
	return func(r *http.Request, ac AuthContext) (AuthContext, error) {
		raw, found := getBearerToken(r.Header)
		if !found {
			return ac, nil
		}

		p, err := m.tokens.Verify(r.Context(), raw, token.KindAccess)
		if err != nil {
			m.logger.Warnf("ignoring invalid token from %s", ac.ClientIP())
			return ac, nil
		}

		return ac.WithPrincipal(*p), nil
	}
}

// RequireTenantAccess enforces that the principal belongs to the resolved tenant.
// It must be part of every chain guarding tenant scoped data.
func (m *Resolver) RequireTenantAccess() Step {
	return func(r *http.Request, ac AuthContext) (AuthContext, error) {
		p, ok := ac.Principal()
		if !ok {
			return ac, apierrors.Unauthorized("Authentication required")
		}

		t, ok := ac.Tenant()
		if !ok {
			return ac, apierrors.BadRequest("Tenant context not set")
		}

		if p.TenantID != t.ID {
			m.logger.Security().CrossTenantAccess(p.Subject, p.TenantID, t.ID, ac.ClientIP())
			return ac, apierrors.Forbidden("Access denied to this tenant")
		}

		return ac, nil
	}
}

// RequireRole admits principals holding one of roles.
func (m *Resolver) RequireRole(roles ...types.Role) Step {
	allowed := types.NewRoleSet(roles...)

	return func(r *http.Request, ac AuthContext) (AuthContext, error) {
		p, ok := ac.Principal()
		if !ok {
			return ac, apierrors.Unauthorized("Authentication required")
		}

		if !allowed.Contains(p.Role) {
			m.logger.Security().AuthzFailure(p.Subject, r.Method+" "+r.URL.Path)
			return ac, apierrors.Forbidden("Insufficient permissions")
		}

		return ac, nil
	}
}

func getBearerToken(headers http.Header) (string, bool) {
	bearer := headers.Get("Authorization")
	if bearer == "" {
		return "", false
	}

	// Only support "Bearer <token>" format (RFC 6750)
	if !strings.HasPrefix(bearer, "Bearer ") {
		return "", false
	}

	raw := strings.TrimSpace(strings.TrimPrefix(bearer, "Bearer "))
	return raw, raw != ""
}

func subdomainFromHost(host string) (string, bool) {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.Trim(host, "[]"))

	if host == "" || net.ParseIP(host) != nil {
		return "", false
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return "", false
	}

	sub := labels[0]
	for _, reserved := range reservedSubdomains {
		if sub == reserved {
			return "", false
		}
	}

	if !types.ValidSubdomain(sub) {
		return "", false
	}

	return sub, true
}

// ClientIP is the host part of the request remote address, chi RealIP rewrites it from proxy headers
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func NewResolver(tokens TokenVerifierInterface, directory TenantDirectoryInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Resolver {
	return &Resolver{
		tokens:    tokens,
		directory: directory,
		tracer:    tracer,
		monitor:   monitor,
		logger:    logger,
	}
}
