// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package storagetest provides an in-memory store with transaction rollback
// for tests that exercise the full request path without PostgreSQL.
package storagetest

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenant-auth-service/internal/db"
	"github.com/canonical/tenant-auth-service/internal/storage"
	"github.com/canonical/tenant-auth-service/internal/types"
)

var (
	_ storage.StorageInterface = (*Store)(nil)
	_ db.DBClientInterface     = (*Store)(nil)
)

type txKey struct{}

type Store struct {
	mu sync.Mutex

	tenants map[string]types.Tenant
	users   map[string]types.User

	// CreateUserErr, when set, fails every CreateUser call after the uniqueness checks.
	CreateUserErr error
	// CommitErr, when set, fails the commit of every outermost transaction and discards its writes.
	CommitErr error
}

func New() *Store {
	return &Store{
		tenants: make(map[string]types.Tenant),
		users:   make(map[string]types.User),
	}
}

// Statement is only there to satisfy db.DBClientInterface, queries are not supported.
func (s *Store) Statement(context.Context) sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// WithTx snapshots the store and restores it when fn fails. Nested calls join the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	tenants := maps.Clone(s.tenants)
	users := maps.Clone(s.users)
	s.mu.Unlock()

	err := fn(context.WithValue(ctx, txKey{}, true))
	if err == nil {
		err = s.CommitErr
	}
	if err != nil {
		s.mu.Lock()
		s.tenants = tenants
		s.users = users
		s.mu.Unlock()
		return err
	}

	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) Close() {}

func (s *Store) CreateTenant(_ context.Context, t *types.Tenant) (*types.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tenants {
		if existing.Subdomain == t.Subdomain {
			return nil, fmt.Errorf("tenant subdomain %q: %w", t.Subdomain, storage.ErrDuplicateKey)
		}
	}

	created := *t
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	s.tenants[created.ID] = created

	return &created, nil
}

func (s *Store) GetTenantByID(_ context.Context, id string) (*types.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (s *Store) GetTenantBySubdomain(_ context.Context, subdomain string) (*types.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tenants {
		if t.Subdomain == subdomain {
			return &t, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdateTenant(_ context.Context, id string, update *types.TenantUpdate) (*types.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if update.IsEmpty() {
		return &t, nil
	}

	if update.Name != nil {
		t.Name = *update.Name
	}
	if update.LogoURL != nil {
		t.LogoURL = emptyToNil(update.LogoURL)
	}
	if update.AccentColor != nil {
		t.AccentColor = *update.AccentColor
	}
	if update.Theme != nil {
		t.Theme = *update.Theme
	}
	if update.CustomDomain != nil {
		domain := emptyToNil(update.CustomDomain)
		if domain != nil {
			for otherID, other := range s.tenants {
				if otherID != id && other.CustomDomain != nil && *other.CustomDomain == *domain {
					return nil, storage.ErrDuplicateKey
				}
			}
		}
		t.CustomDomain = domain
	}
	t.UpdatedAt = time.Now().UTC()
	s.tenants[id] = t

	return &t, nil
}

// SetTenantActive flips the active flag, there is no API for it.
func (s *Store) SetTenantActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tenants[id]; ok {
		t.IsActive = active
		s.tenants[id] = t
	}
}

func (s *Store) CreateUser(_ context.Context, u *types.User) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tenants[u.TenantID]; !ok {
		return nil, fmt.Errorf("user %q in tenant %s: %w", u.Email, u.TenantID, storage.ErrForeignKeyViolation)
	}
	for _, existing := range s.users {
		if existing.TenantID == u.TenantID && existing.Email == u.Email {
			return nil, fmt.Errorf("user %q in tenant %s: %w", u.Email, u.TenantID, storage.ErrDuplicateKey)
		}
	}
	if s.CreateUserErr != nil {
		return nil, s.CreateUserErr
	}

	created := *u
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	s.users[created.ID] = created

	return &created, nil
}

func (s *Store) GetUserByTenantAndEmail(_ context.Context, tenantID, email string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.TenantID == tenantID && u.Email == email {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) UpdateUserLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.LastLogin = &at
	s.users[id] = u

	return nil
}

// SetUserActive flips the active flag of the user with the given email.
func (s *Store) SetUserActive(tenantID, email string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.TenantID == tenantID && u.Email == email {
			u.IsActive = active
			s.users[id] = u
		}
	}
}

// Tenants returns the number of stored tenants.
func (s *Store) Tenants() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tenants)
}

// Users returns the number of stored users.
func (s *Store) Users() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.users)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
