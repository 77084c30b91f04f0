// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	Fatalf(string, ...interface{})
	Error(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Debug(...interface{})
	Fatal(...interface{})
	Errorw(string, ...interface{})
	Infow(string, ...interface{})
	Warnw(string, ...interface{})
	Debugw(string, ...interface{})
	Sync() error

	Security() SecurityLoggerInterface
}

// SecurityLoggerInterface emits audit events in a stable, machine readable shape.
// Implementations must never receive secrets (passwords, raw tokens).
type SecurityLoggerInterface interface {
	SystemStartup()
	SystemShutdown()

	AuthnLoginSuccess(userID, tenantID string)
	AuthnLoginFail(tenantID, ip string)
	AuthnTokenInvalid(kind, ip string)

	AuthzFailure(userID, resource string)
	CrossTenantAccess(userID, userTenantID, requestedTenantID, ip string)

	TenantProvisioned(tenantID, subdomain, adminID string)
	UserRegistered(userID, tenantID, role string)
}
