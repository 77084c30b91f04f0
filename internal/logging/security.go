// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"go.uber.org/zap"
)

const (
	eventKey = "event"

	eventSystemStartup     = "system_startup"
	eventSystemShutdown    = "system_shutdown"
	eventLoginSuccess      = "authn_login_success"
	eventLoginFail         = "authn_login_fail"
	eventTokenInvalid      = "authn_token_invalid"
	eventAuthzFail         = "authz_fail"
	eventCrossTenant       = "authz_cross_tenant"
	eventTenantProvisioned = "tenant_provisioned"
	eventUserRegistered    = "user_registered"
)

var _ SecurityLoggerInterface = (*SecurityLogger)(nil)

type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) SystemStartup() {
	s.l.Info("system started", zap.String(eventKey, eventSystemStartup))
}

func (s *SecurityLogger) SystemShutdown() {
	s.l.Info("system shutting down", zap.String(eventKey, eventSystemShutdown))
}

func (s *SecurityLogger) AuthnLoginSuccess(userID, tenantID string) {
	s.l.Info(
		"user logged in",
		zap.String(eventKey, eventLoginSuccess),
		zap.String("user_id", userID),
		zap.String("tenant_id", tenantID),
	)
}

// AuthnLoginFail deliberately carries no user identifier, the caller does not know
// whether the account exists.
func (s *SecurityLogger) AuthnLoginFail(tenantID, ip string) {
	s.l.Warn(
		"login failed",
		zap.String(eventKey, eventLoginFail),
		zap.String("tenant_id", tenantID),
		zap.String("ip", ip),
	)
}

func (s *SecurityLogger) AuthnTokenInvalid(kind, ip string) {
	s.l.Info(
		"token rejected",
		zap.String(eventKey, eventTokenInvalid),
		zap.String("token_kind", kind),
		zap.String("ip", ip),
	)
}

func (s *SecurityLogger) AuthzFailure(userID, resource string) {
	s.l.Warn(
		"authorization failed",
		zap.String(eventKey, eventAuthzFail),
		zap.String("user_id", userID),
		zap.String("resource", resource),
	)
}

func (s *SecurityLogger) CrossTenantAccess(userID, userTenantID, requestedTenantID, ip string) {
	s.l.Warn(
		"Cross-tenant access attempt blocked",
		zap.String(eventKey, eventCrossTenant),
		zap.String("user_id", userID),
		zap.String("user_tenant_id", userTenantID),
		zap.String("requested_tenant_id", requestedTenantID),
		zap.String("ip", ip),
	)
}

func (s *SecurityLogger) TenantProvisioned(tenantID, subdomain, adminID string) {
	s.l.Info(
		"tenant provisioned",
		zap.String(eventKey, eventTenantProvisioned),
		zap.String("tenant_id", tenantID),
		zap.String("subdomain", subdomain),
		zap.String("admin_id", adminID),
	)
}

func (s *SecurityLogger) UserRegistered(userID, tenantID, role string) {
	s.l.Info(
		"user registered",
		zap.String(eventKey, eventUserRegistered),
		zap.String("user_id", userID),
		zap.String("tenant_id", tenantID),
		zap.String("role", role),
	)
}
