// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"context"
	"time"

	"github.com/canonical/tenant-auth-service/internal/types"
	"github.com/canonical/tenant-auth-service/pkg/token"
)

type ServiceInterface interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*RefreshResult, error)
	ProvisionTenant(ctx context.Context, in ProvisionInput) (*ProvisionResult, error)
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	UpdateTenant(ctx context.Context, id string, update *types.TenantUpdate) (*types.Tenant, error)
}

type DirectoryInterface interface {
	FindByID(ctx context.Context, id string) (*types.Tenant, error)
	GetByID(ctx context.Context, id string) (*types.Tenant, error)
	Create(ctx context.Context, draft *types.Tenant) (*types.Tenant, error)
	Update(ctx context.Context, id string, update *types.TenantUpdate) (*types.Tenant, error)
}

type UserStorageInterface interface {
	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
	GetUserByTenantAndEmail(ctx context.Context, tenantID, email string) (*types.User, error)
	UpdateUserLastLogin(ctx context.Context, id string, at time.Time) error
}

type TokenServiceInterface interface {
	IssueAccessToken(ctx context.Context, payload types.TokenPayload) (string, error)
	IssuePair(ctx context.Context, payload types.TokenPayload) (*types.TokenPair, error)
	Verify(ctx context.Context, raw string, kind token.Kind) (*types.TokenPayload, error)
	AccessTTL() time.Duration
}

type HasherInterface interface {
	Hash(ctx context.Context, plain string) (string, error)
	Compare(ctx context.Context, plain, digest string) bool
	CompareDummy(ctx context.Context, plain string)
}

type TxRunnerInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}
