// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/tracing"
	"github.com/canonical/tenant-auth-service/internal/types"
	"github.com/canonical/tenant-auth-service/pkg/directory"
	"github.com/canonical/tenant-auth-service/pkg/token"
)

//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_interfaces.go -source=./interfaces.go

var (
	tenantA = &types.Tenant{ID: "tenant-a", Subdomain: "acme", IsActive: true}
	tenantB = &types.Tenant{ID: "tenant-b", Subdomain: "bolt", IsActive: true}

	adminOfA = &types.TokenPayload{Subject: "user-1", TenantID: "tenant-a", Email: "a@acme.io", Role: types.RoleAdmin}
	staffOfA = &types.TokenPayload{Subject: "user-2", TenantID: "tenant-a", Email: "s@acme.io", Role: types.RoleStaff}
)

func newObservedResolver(tokens TokenVerifierInterface, dir TenantDirectoryInterface) (*Resolver, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.NewLoggerFromZap(zap.New(core))

	return NewResolver(tokens, dir, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logger), logs
}

// serve mounts the chain on a chi route so URL params resolve like in production
func serve(t *testing.T, chain func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, AuthContext) {
	t.Helper()

	var got AuthContext
	router := chi.NewRouter()
	router.With(chain).Get("/tenants/{tenantId}", func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	router.With(chain).Get("/public", func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr, got
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rr.Body.String(), err)
	}
	return body.Error
}

func TestResolver_TenantScopedChain(t *testing.T) {
	tests := []struct {
		name            string
		path            string
		authHeader      string
		setupMocks      func(*MockTokenVerifierInterface, *MockTenantDirectoryInterface)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "unknown tenant",
			path: "/tenants/missing",
			setupMocks: func(v *MockTokenVerifierInterface, d *MockTenantDirectoryInterface) {
				d.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, directory.ErrTenantNotFound)
			},
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Tenant not found",
		},
		{
			name: "inactive tenant",
			path: "/tenants/tenant-a",
			setupMocks: func(v *MockTokenVerifierInterface, d *MockTenantDirectoryInterface) {
				d.EXPECT().GetByID(gomock.Any(), "tenant-a").Return(&types.Tenant{ID: "tenant-a"}, nil)
			},
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "Tenant account is inactive",
		},
		{
			name: "directory failure is internal",
			path: "/tenants/tenant-a",
			setupMocks: func(v *MockTokenVerifierInterface, d *MockTenantDirectoryInterface) {
				d.EXPECT().GetByID(gomock.Any(), "tenant-a").Return(nil, errors.New("db down"))
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Internal server error",
		},
		{
			name: "missing token",
			path: "/tenants/tenant-a",
			setupMocks: func(v *MockTokenVerifierInterface, d *MockTenantDirectoryInterface) {
				d.EXPECT().GetByID(gomock.Any(), "tenant-a").Return(tenantA, nil)
			},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "No token provided",
		},
		{
			name:       "non bearer header",
			path:       "/tenants/tenant-a",
			authHeader: "Basic dXNlcjpwYXNz",
			setupMocks: func(v *MockTokenVerifierInterface, d *MockTenantDirectoryInterface) {
				d.EXPECT().GetByID(gomock.Any(), "tenant-a").Return(tenantA, nil)
			},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "No token provided",
		},
		{
			name:       "invalid token",
			path:       "/tenants/tenant-a",
			authHeader: "Bearer bad",
			setupMocks: func(v *MockTokenVerifierInterface, d *MockTenantDirectoryInterface) {
				d.EXPECT().GetByID(gomock.Any(), "tenant-a").Return(tenantA, nil)
				v.EXPECT().Verify(gomock.Any(), "bad", token.KindAccess).Return(nil, token.ErrInvalidToken)
			},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid or expired token",
		},
		{
			name:       "cross tenant",
			path:       "/tenants/tenant-b",
			authHeader: "Bearer good",
			setupMocks: func(v *MockTokenVerifierInterface, d *MockTenantDirectoryInterface) {
				d.EXPECT().GetByID(gomock.Any(), "tenant-b").Return(tenantB, nil)
				v.EXPECT().Verify(gomock.Any(), "good", token.KindAccess).Return(adminOfA, nil)
			},
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "Access denied to this tenant",
		},
		{
			name:       "same tenant",
			path:       "/tenants/tenant-a",
			authHeader: "Bearer good",
			setupMocks: func(v *MockTokenVerifierInterface, d *MockTenantDirectoryInterface) {
				d.EXPECT().GetByID(gomock.Any(), "tenant-a").Return(tenantA, nil)
				v.EXPECT().Verify(gomock.Any(), "good", token.KindAccess).Return(adminOfA, nil)
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockVerifier := NewMockTokenVerifierInterface(ctrl)
			mockDirectory := NewMockTenantDirectoryInterface(ctrl)
			tt.setupMocks(mockVerifier, mockDirectory)

			resolver, _ := newObservedResolver(mockVerifier, mockDirectory)
			chain := resolver.Chain(resolver.TenantFromPath("tenantId"), resolver.RequireToken(), resolver.RequireTenantAccess())

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rr, ac := serve(t, chain, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if tt.expectedMessage != "" {
				if msg := errorMessage(t, rr); msg != tt.expectedMessage {
					t.Errorf("expected message %q, got %q", tt.expectedMessage, msg)
				}
				return
			}

			p, ok := ac.Principal()
			if !ok || p.Subject != adminOfA.Subject {
				t.Errorf("expected principal %s in context, got %+v", adminOfA.Subject, p)
			}
			tenant, ok := ac.Tenant()
			if !ok || tenant.ID != tenantA.ID {
				t.Errorf("expected tenant %s in context, got %+v", tenantA.ID, tenant)
			}
		})
	}
}

func TestResolver_CrossTenantAuditEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVerifier := NewMockTokenVerifierInterface(ctrl)
	mockDirectory := NewMockTenantDirectoryInterface(ctrl)
	mockDirectory.EXPECT().GetByID(gomock.Any(), "tenant-b").Return(tenantB, nil)
	mockVerifier.EXPECT().Verify(gomock.Any(), "good", token.KindAccess).Return(staffOfA, nil)

	resolver, logs := newObservedResolver(mockVerifier, mockDirectory)
	chain := resolver.Chain(resolver.TenantFromPath("tenantId"), resolver.RequireToken(), resolver.RequireTenantAccess())

	req := httptest.NewRequest(http.MethodGet, "/tenants/tenant-b", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("Authorization", "Bearer good")

	rr, _ := serve(t, chain, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}

	events := logs.FilterMessage("Cross-tenant access attempt blocked").All()
	if len(events) != 1 {
		t.Fatalf("expected one audit event, got %d", len(events))
	}

	event := events[0]
	if event.Level != zapcore.WarnLevel {
		t.Errorf("expected warn level, got %s", event.Level)
	}

	fields := event.ContextMap()
	expected := map[string]string{
		"user_id":             "user-2",
		"user_tenant_id":      "tenant-a",
		"requested_tenant_id": "tenant-b",
		"ip":                  "203.0.113.7",
	}
	for k, v := range expected {
		if fields[k] != v {
			t.Errorf("expected %s=%s, got %v", k, v, fields[k])
		}
	}
}

func TestResolver_RequireRole(t *testing.T) {
	tests := []struct {
		name           string
		principal      *types.TokenPayload
		expectedStatus int
	}{
		{name: "admin allowed", principal: adminOfA, expectedStatus: http.StatusOK},
		{name: "staff rejected", principal: staffOfA, expectedStatus: http.StatusForbidden},
		{name: "anonymous rejected", principal: nil, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockVerifier := NewMockTokenVerifierInterface(ctrl)
			if tt.principal != nil {
				mockVerifier.EXPECT().Verify(gomock.Any(), "good", token.KindAccess).Return(tt.principal, nil)
			}

			resolver, logs := newObservedResolver(mockVerifier, NewMockTenantDirectoryInterface(ctrl))
			chain := resolver.Chain(resolver.OptionalToken(), resolver.RequireRole(types.RoleAdmin))

			req := httptest.NewRequest(http.MethodGet, "/public", nil)
			if tt.principal != nil {
				req.Header.Set("Authorization", "Bearer good")
			}

			rr, _ := serve(t, chain, req)
			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			if tt.expectedStatus == http.StatusForbidden {
				if msg := errorMessage(t, rr); msg != "Insufficient permissions" {
					t.Errorf("unexpected message %q", msg)
				}
				if logs.FilterField(zap.String("event", "authz_fail")).Len() != 1 {
					t.Error("expected an authz_fail audit event")
				}
			}
		})
	}
}

func TestResolver_RequireTenantAccessWithoutTenant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVerifier := NewMockTokenVerifierInterface(ctrl)
	mockVerifier.EXPECT().Verify(gomock.Any(), "good", token.KindAccess).Return(adminOfA, nil)

	resolver, _ := newObservedResolver(mockVerifier, NewMockTenantDirectoryInterface(ctrl))
	chain := resolver.Chain(resolver.RequireToken(), resolver.RequireTenantAccess())

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer good")

	rr, _ := serve(t, chain, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Tenant context not set" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestResolver_OptionalToken(t *testing.T) {
	tests := []struct {
		name          string
		authHeader    string
		setupMocks    func(*MockTokenVerifierInterface)
		withPrincipal bool
	}{
		{
			name:       "no header",
			setupMocks: func(v *MockTokenVerifierInterface) {},
		},
		{
			name:       "invalid token proceeds anonymously",
			authHeader: "Bearer bad",
			setupMocks: func(v *MockTokenVerifierInterface) {
				v.EXPECT().Verify(gomock.Any(), "bad", token.KindAccess).Return(nil, token.ErrInvalidToken)
			},
		},
		{
			name:       "valid token",
			authHeader: "Bearer good",
			setupMocks: func(v *MockTokenVerifierInterface) {
				v.EXPECT().Verify(gomock.Any(), "good", token.KindAccess).Return(staffOfA, nil)
			},
			withPrincipal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockVerifier := NewMockTokenVerifierInterface(ctrl)
			tt.setupMocks(mockVerifier)

			resolver, _ := newObservedResolver(mockVerifier, NewMockTenantDirectoryInterface(ctrl))

			req := httptest.NewRequest(http.MethodGet, "/public", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rr, ac := serve(t, resolver.Chain(resolver.OptionalToken()), req)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}

			if _, ok := ac.Principal(); ok != tt.withPrincipal {
				t.Errorf("expected principal present %v, got %v", tt.withPrincipal, ok)
			}
		})
	}
}

func TestResolver_TenantFromHost(t *testing.T) {
	tests := []struct {
		name       string
		host       string
		setupMocks func(*MockTenantDirectoryInterface)
		withTenant bool
	}{
		{
			name: "subdomain resolves",
			host: "acme.example.com",
			setupMocks: func(d *MockTenantDirectoryInterface) {
				d.EXPECT().FindBySubdomain(gomock.Any(), "acme").Return(tenantA, nil)
			},
			withTenant: true,
		},
		{
			name: "port and case are ignored",
			host: "ACME.example.com:8080",
			setupMocks: func(d *MockTenantDirectoryInterface) {
				d.EXPECT().FindBySubdomain(gomock.Any(), "acme").Return(tenantA, nil)
			},
			withTenant: true,
		},
		{
			name: "unknown subdomain fails open",
			host: "nobody.example.com",
			setupMocks: func(d *MockTenantDirectoryInterface) {
				d.EXPECT().FindBySubdomain(gomock.Any(), "nobody").Return(nil, directory.ErrTenantNotFound)
			},
		},
		{
			name: "lookup error fails open",
			host: "acme.example.com",
			setupMocks: func(d *MockTenantDirectoryInterface) {
				d.EXPECT().FindBySubdomain(gomock.Any(), "acme").Return(nil, errors.New("db down"))
			},
		},
		{name: "www is reserved", host: "www.example.com", setupMocks: func(*MockTenantDirectoryInterface) {}},
		{name: "api is reserved", host: "api.example.com", setupMocks: func(*MockTenantDirectoryInterface) {}},
		{name: "bare host", host: "localhost:8080", setupMocks: func(*MockTenantDirectoryInterface) {}},
		{name: "ipv4 literal", host: "10.0.0.1:8080", setupMocks: func(*MockTenantDirectoryInterface) {}},
		{name: "ipv6 literal", host: "[::1]:8080", setupMocks: func(*MockTenantDirectoryInterface) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockDirectory := NewMockTenantDirectoryInterface(ctrl)
			tt.setupMocks(mockDirectory)

			resolver, _ := newObservedResolver(NewMockTokenVerifierInterface(ctrl), mockDirectory)

			req := httptest.NewRequest(http.MethodGet, "/public", nil)
			req.Host = tt.host

			rr, ac := serve(t, resolver.Chain(resolver.TenantFromHost()), req)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}

			if _, ok := ac.Tenant(); ok != tt.withTenant {
				t.Errorf("expected tenant present %v, got %v", tt.withTenant, ok)
			}
		})
	}
}

func TestAuthContextIsAValue(t *testing.T) {
	base := NewAuthContext("127.0.0.1")
	withTenant := base.WithTenant(*tenantA)

	if _, ok := base.Tenant(); ok {
		t.Error("WithTenant must not modify the receiver")
	}

	got, _ := withTenant.Tenant()
	got.ID = "changed"
	if again, _ := withTenant.Tenant(); again.ID != tenantA.ID {
		t.Error("Tenant must return a copy")
	}

	ctx := WithAuthContext(context.Background(), withTenant)
	if fromCtx, ok := FromContext(ctx); !ok || fromCtx.ClientIP() != "127.0.0.1" {
		t.Errorf("unexpected context value %+v", fromCtx)
	}
}

func TestGetBearerToken(t *testing.T) {
	tests := []struct {
		name          string
		authHeader    string
		expectedToken string
		expectedFound bool
	}{
		{
			name:          "No Authorization header",
			authHeader:    "",
			expectedToken: "",
			expectedFound: false,
		},
		{
			name:          "Bearer token",
			authHeader:    "Bearer my-token-123",
			expectedToken: "my-token-123",
			expectedFound: true,
		},
		{
			name:          "Raw token without Bearer prefix",
			authHeader:    "my-token-123",
			expectedToken: "",
			expectedFound: false,
		},
		{
			name:          "Empty bearer",
			authHeader:    "Bearer ",
			expectedToken: "",
			expectedFound: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			headers := http.Header{}
			if test.authHeader != "" {
				headers.Set("Authorization", test.authHeader)
			}

			token, found := getBearerToken(headers)

			if token != test.expectedToken {
				t.Errorf("expected token %q, got %q", test.expectedToken, token)
			}
			if found != test.expectedFound {
				t.Errorf("expected found %v, got %v", test.expectedFound, found)
			}
		})
	}
}
