// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/canonical/tenant-auth-service/internal/types"
)

// Define a private custom type to avoid collisions
type contextKey struct{}

var authContextKey = contextKey{}

// AuthContext is what the resolver knows about a request. It is a value:
// every With method returns a modified copy and getters hand out copies.
type AuthContext struct {
	principal *types.Principal
	tenant    *types.Tenant
	clientIP  string
}

func NewAuthContext(clientIP string) AuthContext {
	return AuthContext{clientIP: clientIP}
}

func (a AuthContext) WithPrincipal(p types.Principal) AuthContext {
	a.principal = &p
	return a
}

func (a AuthContext) WithTenant(t types.Tenant) AuthContext {
	a.tenant = &t
	return a
}

func (a AuthContext) Principal() (types.Principal, bool) {
	if a.principal == nil {
		return types.Principal{}, false
	}
	return *a.principal, true
}

func (a AuthContext) Tenant() (types.Tenant, bool) {
	if a.tenant == nil {
		return types.Tenant{}, false
	}
	return *a.tenant, true
}

func (a AuthContext) ClientIP() string {
	return a.clientIP
}

// WithAuthContext returns a new context carrying a.
func WithAuthContext(ctx context.Context, a AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, a)
}

// FromContext retrieves the AuthContext stored by a resolver chain.
func FromContext(ctx context.Context) (AuthContext, bool) {
	a, ok := ctx.Value(authContextKey).(AuthContext)
	return a, ok
}
