// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/canonical/tenant-auth-service/internal/types"
	"github.com/canonical/tenant-auth-service/pkg/token"
)

type TokenVerifierInterface interface {
	// Verify checks signature, expiry, issuer and kind of a raw JWT and returns its payload
	Verify(ctx context.Context, raw string, kind token.Kind) (*types.TokenPayload, error)
}

type TenantDirectoryInterface interface {
	// GetByID returns the tenant whether active or not
	GetByID(ctx context.Context, id string) (*types.Tenant, error)
	// FindBySubdomain returns active tenants only
	FindBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error)
}
