// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/tenant-auth-service/internal/db"
	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/tracing"
	"github.com/canonical/tenant-auth-service/internal/types"
)

var _ StorageInterface = (*Storage)(nil)

var (
	tenantColumns = []string{
		"id", "name", "subdomain", "logo_url", "accent_color", "theme", "plan",
		"custom_domain", "is_active", "created_at", "updated_at",
	}
	userColumns = []string{
		"id", "tenant_id", "email", "hashed_password", "name", "role",
		"is_active", "last_login", "created_at", "updated_at",
	}
)

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTenant")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("tenants").
		Columns("id", "name", "subdomain", "logo_url", "accent_color", "theme", "plan", "custom_domain", "is_active").
		Values(id.String(), t.Name, t.Subdomain, t.LogoURL, t.AccentColor, t.Theme, t.Plan, t.CustomDomain, t.IsActive).
		Suffix("RETURNING " + joinColumns(tenantColumns)).
		QueryRowContext(ctx)

	created, err := scanTenant(row)
	if err != nil {
		return nil, wrapWriteError(err, "insert tenant", fmt.Sprintf("tenant subdomain %q", t.Subdomain))
	}

	return created, nil
}

func (s *Storage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByID")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"id": id})
}

func (s *Storage) GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantBySubdomain")
	defer span.End()

	return s.getTenant(ctx, sq.Eq{"subdomain": subdomain})
}

func (s *Storage) getTenant(ctx context.Context, where sq.Eq) (*types.Tenant, error) {
	row := s.db.Statement(ctx).
		Select(tenantColumns...).
		From("tenants").
		Where(where).
		QueryRowContext(ctx)

	t, err := scanTenant(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return t, nil
}

// UpdateTenant applies only the fields set on update. An empty update returns the current record.
func (s *Storage) UpdateTenant(ctx context.Context, id string, update *types.TenantUpdate) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateTenant")
	defer span.End()

	if update.IsEmpty() {
		return s.getTenant(ctx, sq.Eq{"id": id})
	}

	updateMap := map[string]interface{}{
		"updated_at": sq.Expr("NOW()"),
	}
	if update.Name != nil {
		updateMap["name"] = *update.Name
	}
	if update.LogoURL != nil {
		updateMap["logo_url"] = nullIfEmpty(*update.LogoURL)
	}
	if update.AccentColor != nil {
		updateMap["accent_color"] = *update.AccentColor
	}
	if update.Theme != nil {
		updateMap["theme"] = *update.Theme
	}
	if update.CustomDomain != nil {
		updateMap["custom_domain"] = nullIfEmpty(*update.CustomDomain)
	}

	row := s.db.Statement(ctx).
		Update("tenants").
		SetMap(updateMap).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(tenantColumns)).
		QueryRowContext(ctx)

	t, err := scanTenant(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, wrapWriteError(err, "update tenant", fmt.Sprintf("tenant %s", id))
	}

	return t, nil
}

func (s *Storage) CreateUser(ctx context.Context, u *types.User) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateUser")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("users").
		Columns("id", "tenant_id", "email", "hashed_password", "name", "role", "is_active").
		Values(id.String(), u.TenantID, u.Email, u.HashedPassword, u.Name, u.Role.String(), u.IsActive).
		Suffix("RETURNING " + joinColumns(userColumns)).
		QueryRowContext(ctx)

	created, err := scanUser(row)
	if err != nil {
		return nil, wrapWriteError(err, "insert user", fmt.Sprintf("user %q in tenant %s", u.Email, u.TenantID))
	}

	return created, nil
}

func (s *Storage) GetUserByTenantAndEmail(ctx context.Context, tenantID, email string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetUserByTenantAndEmail")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(userColumns...).
		From("users").
		Where(sq.Eq{
			"tenant_id": tenantID,
			"email":     email,
		}).
		QueryRowContext(ctx)

	u, err := scanUser(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *Storage) UpdateUserLastLogin(ctx context.Context, id string, at time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateUserLastLogin")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("users").
		Set("last_login", at).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func scanTenant(row sq.RowScanner) (*types.Tenant, error) {
	var t types.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.Subdomain, &t.LogoURL, &t.AccentColor, &t.Theme, &t.Plan,
		&t.CustomDomain, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanUser(row sq.RowScanner) (*types.User, error) {
	var (
		u    types.User
		role string
	)
	err := row.Scan(
		&u.ID, &u.TenantID, &u.Email, &u.HashedPassword, &u.Name, &role,
		&u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if u.Role, err = types.ParseRole(role); err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}

	return &u, nil
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

// nullIfEmpty turns "" into NULL so clearing a nullable unique column never collides
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
