// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-auth-service/internal/apierrors"
	httptypes "github.com/canonical/tenant-auth-service/internal/http/types"
	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/tracing"
	"github.com/canonical/tenant-auth-service/internal/types"
	"github.com/canonical/tenant-auth-service/pkg/authentication"
	"github.com/canonical/tenant-auth-service/pkg/directory"
	"github.com/canonical/tenant-auth-service/pkg/token"
)

const otherTenantID = "0190a5f2-7c1d-7b3e-9a4f-ffffffffffff"

type apiMocks struct {
	service   *MockServiceInterface
	tokens    *authentication.MockTokenVerifierInterface
	directory *authentication.MockTenantDirectoryInterface
}

func newTestRouter(ctrl *gomock.Controller) (http.Handler, *apiMocks) {
	m := &apiMocks{
		service:   NewMockServiceInterface(ctrl),
		tokens:    authentication.NewMockTokenVerifierInterface(ctrl),
		directory: authentication.NewMockTenantDirectoryInterface(ctrl),
	}

	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test")
	logger := logging.NewNoopLogger()

	resolver := authentication.NewResolver(m.tokens, m.directory, tracer, monitor, logger)

	mux := chi.NewMux()
	NewAPI(m.service, resolver, httptypes.NewValidator(), tracer, monitor, logger).RegisterEndpoints(mux)

	return mux, m
}

func doRequest(h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httptypes.ErrorResponse {
	t.Helper()

	var body httptypes.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

func principal(tenant string, role types.Role) *types.TokenPayload {
	return &types.TokenPayload{Subject: "user-1", TenantID: tenant, Email: "jo@acme.test", Role: role}
}

func TestAPI_ProvisionTenant(t *testing.T) {
	testCases := []struct {
		name           string
		body           string
		setupMocks     func(*apiMocks)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "created",
			body: `{"name":"Silver Artisan","subdomain":"silver-artisan","adminEmail":"owner@silver.test","adminPassword":"password123","adminName":"Owner"}`,
			setupMocks: func(m *apiMocks) {
				m.service.EXPECT().ProvisionTenant(gomock.Any(), ProvisionInput{
					Name:          "Silver Artisan",
					Subdomain:     "silver-artisan",
					AdminEmail:    "owner@silver.test",
					AdminPassword: "password123",
					AdminName:     "Owner",
				}).Return(&ProvisionResult{
					Tenant:    &types.Tenant{ID: tenantID, Subdomain: "silver-artisan", AccentColor: types.DefaultAccentColor},
					Admin:     &types.User{ID: "admin-1", Role: types.RoleAdmin, HashedPassword: "digest"},
					TokenPair: types.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresIn: 3600},
				}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid subdomain",
			body:           `{"name":"Silver Artisan","subdomain":"Silver_Artisan","adminEmail":"owner@silver.test","adminPassword":"password123","adminName":"Owner"}`,
			setupMocks:     func(*apiMocks) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Validation failed",
		},
		{
			name:           "short password",
			body:           `{"name":"Silver Artisan","subdomain":"silver-artisan","adminEmail":"owner@silver.test","adminPassword":"short","adminName":"Owner"}`,
			setupMocks:     func(*apiMocks) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Validation failed",
		},
		{
			name:           "malformed json",
			body:           `{"name":`,
			setupMocks:     func(*apiMocks) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Validation failed",
		},
		{
			name: "subdomain taken",
			body: `{"name":"Silver Artisan","subdomain":"silver-artisan","adminEmail":"owner@silver.test","adminPassword":"password123","adminName":"Owner"}`,
			setupMocks: func(m *apiMocks) {
				m.service.EXPECT().ProvisionTenant(gomock.Any(), gomock.Any()).Return(nil, apierrors.Conflict("Subdomain already taken"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Subdomain already taken",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			h, m := newTestRouter(ctrl)
			tc.setupMocks(m)

			rec := doRequest(h, http.MethodPost, "/tenants", tc.body, nil)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.expectedStatus, rec.Code, rec.Body.String())
			}

			if tc.expectedError != "" {
				if got := decodeError(t, rec).Error; got != tc.expectedError {
					t.Errorf("expected error %q, got %q", tc.expectedError, got)
				}
				return
			}

			var body map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			for _, key := range []string{"tenant", "admin", "token", "refreshToken", "expiresIn"} {
				if _, ok := body[key]; !ok {
					t.Errorf("expected %q in response", key)
				}
			}
			if admin, _ := body["admin"].(map[string]any); admin != nil {
				if _, leaked := admin["hashedPassword"]; leaked {
					t.Error("password digest must not be serialised")
				}
			}
		})
	}
}

func TestAPI_Login(t *testing.T) {
	testCases := []struct {
		name           string
		body           string
		setupMocks     func(*apiMocks)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "success",
			body: `{"tenantId":"` + tenantID + `","email":"jo@acme.test","password":"password123"}`,
			setupMocks: func(m *apiMocks) {
				m.service.EXPECT().Login(gomock.Any(), LoginInput{TenantID: tenantID, Email: "jo@acme.test", Password: "password123", ClientIP: "192.0.2.1"}).
					Return(&AuthResult{User: &types.User{ID: "user-1"}, TokenPair: types.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresIn: 3600}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			body: `{"tenantId":"` + tenantID + `","email":"jo@acme.test","password":"wrong-password"}`,
			setupMocks: func(m *apiMocks) {
				m.service.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, apierrors.Unauthorized("Invalid credentials"))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid credentials",
		},
		{
			name:           "tenant id must be a uuid",
			body:           `{"tenantId":"acme","email":"jo@acme.test","password":"password123"}`,
			setupMocks:     func(*apiMocks) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Validation failed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			h, m := newTestRouter(ctrl)
			tc.setupMocks(m)

			rec := doRequest(h, http.MethodPost, "/auth/login", tc.body, nil)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.expectedStatus, rec.Code, rec.Body.String())
			}
			if tc.expectedError != "" {
				if got := decodeError(t, rec).Error; got != tc.expectedError {
					t.Errorf("expected error %q, got %q", tc.expectedError, got)
				}
			}
		})
	}
}

func TestAPI_Register(t *testing.T) {
	body := `{"tenantId":"` + tenantID + `","email":"new@acme.test","password":"password123","name":"New","role":"admin"}`

	testCases := []struct {
		name           string
		headers        map[string]string
		setupMocks     func(*apiMocks)
		expectedCaller bool
	}{
		{
			name:    "anonymous",
			headers: nil,
			setupMocks: func(m *apiMocks) {
				m.service.EXPECT().Register(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ any, in RegisterInput) (*AuthResult, error) {
						if in.Caller != nil {
							t.Error("expected no caller")
						}
						return &AuthResult{User: &types.User{ID: "user-2"}}, nil
					},
				)
			},
		},
		{
			name:    "authenticated admin",
			headers: map[string]string{"Authorization": "Bearer good"},
			setupMocks: func(m *apiMocks) {
				m.tokens.EXPECT().Verify(gomock.Any(), "good", token.KindAccess).Return(principal(tenantID, types.RoleAdmin), nil)
				m.service.EXPECT().Register(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ any, in RegisterInput) (*AuthResult, error) {
						if in.Caller == nil || in.Caller.Role != types.RoleAdmin || in.Caller.TenantID != tenantID {
							t.Errorf("expected admin caller, got %+v", in.Caller)
						}
						if in.Role != types.RoleAdmin {
							t.Errorf("expected requested role admin, got %s", in.Role)
						}
						return &AuthResult{User: &types.User{ID: "user-2"}}, nil
					},
				)
			},
		},
		{
			name:    "invalid token is ignored",
			headers: map[string]string{"Authorization": "Bearer bad"},
			setupMocks: func(m *apiMocks) {
				m.tokens.EXPECT().Verify(gomock.Any(), "bad", token.KindAccess).Return(nil, token.ErrInvalidToken)
				m.service.EXPECT().Register(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ any, in RegisterInput) (*AuthResult, error) {
						if in.Caller != nil {
							t.Error("expected no caller")
						}
						return &AuthResult{User: &types.User{ID: "user-2"}}, nil
					},
				)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			h, m := newTestRouter(ctrl)
			tc.setupMocks(m)

			rec := doRequest(h, http.MethodPost, "/auth/register", body, tc.headers)

			if rec.Code != http.StatusCreated {
				t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAPI_Refresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newTestRouter(ctrl)
	m.service.EXPECT().RefreshAccessToken(gomock.Any(), "refresh").Return(&RefreshResult{AccessToken: "new", ExpiresIn: 3600}, nil)

	rec := doRequest(h, http.MethodPost, "/auth/refresh", `{"refreshToken":"refresh"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["token"] != "new" || body["expiresIn"] != float64(3600) {
		t.Errorf("unexpected body %v", body)
	}
	if _, ok := body["refreshToken"]; ok {
		t.Error("refresh token must not be rotated")
	}
}

func TestAPI_TenantRoutes(t *testing.T) {
	tenant := &types.Tenant{ID: tenantID, Subdomain: "acme", IsActive: true}

	testCases := []struct {
		name           string
		method         string
		target         string
		body           string
		token          string
		setupMocks     func(*apiMocks)
		expectedStatus int
		expectedError  string
	}{
		{
			name:   "member reads own tenant",
			method: http.MethodGet,
			target: "/tenants/" + tenantID,
			token:  "staff",
			setupMocks: func(m *apiMocks) {
				m.directory.EXPECT().GetByID(gomock.Any(), tenantID).Return(tenant, nil)
				m.tokens.EXPECT().Verify(gomock.Any(), "staff", token.KindAccess).Return(principal(tenantID, types.RoleStaff), nil)
				m.service.EXPECT().GetTenant(gomock.Any(), tenantID).Return(tenant, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "cross tenant read is denied",
			method: http.MethodGet,
			target: "/tenants/" + tenantID,
			token:  "foreign",
			setupMocks: func(m *apiMocks) {
				m.directory.EXPECT().GetByID(gomock.Any(), tenantID).Return(tenant, nil)
				m.tokens.EXPECT().Verify(gomock.Any(), "foreign", token.KindAccess).Return(principal(otherTenantID, types.RoleAdmin), nil)
			},
			expectedStatus: http.StatusForbidden,
			expectedError:  "Access denied to this tenant",
		},
		{
			name:   "missing token",
			method: http.MethodGet,
			target: "/tenants/" + tenantID,
			setupMocks: func(m *apiMocks) {
				m.directory.EXPECT().GetByID(gomock.Any(), tenantID).Return(tenant, nil)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "No token provided",
		},
		{
			name:   "unknown tenant",
			method: http.MethodGet,
			target: "/tenants/" + otherTenantID,
			token:  "staff",
			setupMocks: func(m *apiMocks) {
				m.directory.EXPECT().GetByID(gomock.Any(), otherTenantID).Return(nil, directory.ErrTenantNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "Tenant not found",
		},
		{
			name:   "admin updates tenant",
			method: http.MethodPatch,
			target: "/tenants/" + tenantID,
			body:   `{"accentColor":"#112233","theme":"dark"}`,
			token:  "admin",
			setupMocks: func(m *apiMocks) {
				m.directory.EXPECT().GetByID(gomock.Any(), tenantID).Return(tenant, nil)
				m.tokens.EXPECT().Verify(gomock.Any(), "admin", token.KindAccess).Return(principal(tenantID, types.RoleAdmin), nil)
				m.service.EXPECT().UpdateTenant(gomock.Any(), tenantID, gomock.Any()).DoAndReturn(
					func(_ any, _ string, u *types.TenantUpdate) (*types.Tenant, error) {
						if u.AccentColor == nil || *u.AccentColor != "#112233" || u.Theme == nil || *u.Theme != "dark" {
							t.Errorf("unexpected update %+v", u)
						}
						if u.Name != nil || u.LogoURL != nil || u.CustomDomain != nil {
							t.Errorf("absent fields must stay nil, got %+v", u)
						}
						return tenant, nil
					},
				)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "staff cannot update tenant",
			method: http.MethodPatch,
			target: "/tenants/" + tenantID,
			body:   `{"accentColor":"#112233"}`,
			token:  "staff",
			setupMocks: func(m *apiMocks) {
				m.directory.EXPECT().GetByID(gomock.Any(), tenantID).Return(tenant, nil)
				m.tokens.EXPECT().Verify(gomock.Any(), "staff", token.KindAccess).Return(principal(tenantID, types.RoleStaff), nil)
			},
			expectedStatus: http.StatusForbidden,
			expectedError:  "Insufficient permissions",
		},
		{
			name:   "invalid theme",
			method: http.MethodPatch,
			target: "/tenants/" + tenantID,
			body:   `{"theme":"neon"}`,
			token:  "admin",
			setupMocks: func(m *apiMocks) {
				m.directory.EXPECT().GetByID(gomock.Any(), tenantID).Return(tenant, nil)
				m.tokens.EXPECT().Verify(gomock.Any(), "admin", token.KindAccess).Return(principal(tenantID, types.RoleAdmin), nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Validation failed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			h, m := newTestRouter(ctrl)
			tc.setupMocks(m)

			var headers map[string]string
			if tc.token != "" {
				headers = map[string]string{"Authorization": "Bearer " + tc.token}
			}

			rec := doRequest(h, tc.method, tc.target, tc.body, headers)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.expectedStatus, rec.Code, rec.Body.String())
			}
			if tc.expectedError != "" {
				if got := decodeError(t, rec).Error; got != tc.expectedError {
					t.Errorf("expected error %q, got %q", tc.expectedError, got)
				}
			}
		})
	}
}

func TestAPI_CurrentTenant(t *testing.T) {
	tenant := &types.Tenant{ID: tenantID, Subdomain: "acme", IsActive: true}

	testCases := []struct {
		name           string
		host           string
		setupMocks     func(*apiMocks)
		expectedStatus int
	}{
		{
			name: "resolved from subdomain",
			host: "acme.example.com",
			setupMocks: func(m *apiMocks) {
				m.directory.EXPECT().FindBySubdomain(gomock.Any(), "acme").Return(tenant, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown subdomain",
			host: "nobody.example.com",
			setupMocks: func(m *apiMocks) {
				m.directory.EXPECT().FindBySubdomain(gomock.Any(), "nobody").Return(nil, directory.ErrTenantNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bare host",
			host:           "localhost:8000",
			setupMocks:     func(*apiMocks) {},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			h, m := newTestRouter(ctrl)
			tc.setupMocks(m)

			req := httptest.NewRequest(http.MethodGet, "/tenants/current", nil)
			req.Host = tc.host

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.expectedStatus, rec.Code, rec.Body.String())
			}
		})
	}
}
