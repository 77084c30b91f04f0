// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/tenant-auth-service/internal/storage"
	"github.com/canonical/tenant-auth-service/internal/types"
)

func TestWithTxRollsBackOnError(t *testing.T) {
	s := New()
	boom := errors.New("boom")

	err := s.WithTx(context.Background(), func(ctx context.Context) error {
		tenant, err := s.CreateTenant(ctx, &types.Tenant{Name: "Acme", Subdomain: "acme", IsActive: true})
		require.NoError(t, err)

		// nested transactions join the outer one
		return s.WithTx(ctx, func(ctx context.Context) error {
			_, err := s.CreateUser(ctx, &types.User{TenantID: tenant.ID, Email: "a@acme.io", Role: types.RoleAdmin})
			require.NoError(t, err)
			return boom
		})
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Tenants())
	assert.Equal(t, 0, s.Users())
}

func TestUniqueConstraints(t *testing.T) {
	s := New()
	ctx := context.Background()

	a, err := s.CreateTenant(ctx, &types.Tenant{Subdomain: "acme"})
	require.NoError(t, err)
	b, err := s.CreateTenant(ctx, &types.Tenant{Subdomain: "bolt"})
	require.NoError(t, err)

	_, err = s.CreateTenant(ctx, &types.Tenant{Subdomain: "acme"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = s.CreateUser(ctx, &types.User{TenantID: a.ID, Email: "a@acme.io"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, &types.User{TenantID: b.ID, Email: "a@acme.io"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, &types.User{TenantID: a.ID, Email: "a@acme.io"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = s.CreateUser(ctx, &types.User{TenantID: "missing", Email: "a@acme.io"})
	assert.ErrorIs(t, err, storage.ErrForeignKeyViolation)
}

func TestCustomDomainIsUniqueButClearable(t *testing.T) {
	s := New()
	ctx := context.Background()

	a, err := s.CreateTenant(ctx, &types.Tenant{Subdomain: "acme"})
	require.NoError(t, err)
	b, err := s.CreateTenant(ctx, &types.Tenant{Subdomain: "bolt"})
	require.NoError(t, err)

	domain := "shop.acme.io"
	_, err = s.UpdateTenant(ctx, a.ID, &types.TenantUpdate{CustomDomain: &domain})
	require.NoError(t, err)

	_, err = s.UpdateTenant(ctx, b.ID, &types.TenantUpdate{CustomDomain: &domain})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	empty := ""
	for _, id := range []string{a.ID, b.ID} {
		tenant, err := s.UpdateTenant(ctx, id, &types.TenantUpdate{CustomDomain: &empty})
		require.NoError(t, err)
		assert.Nil(t, tenant.CustomDomain)
	}
}
