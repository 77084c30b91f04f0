// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/canonical/tenant-auth-service/internal/apierrors"
	"github.com/canonical/tenant-auth-service/internal/credentials"
	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/storage"
	"github.com/canonical/tenant-auth-service/internal/tracing"
	"github.com/canonical/tenant-auth-service/internal/types"
	"github.com/canonical/tenant-auth-service/pkg/directory"
	"github.com/canonical/tenant-auth-service/pkg/token"
)

const (
	msgInvalidCredentials   = "Invalid credentials"
	msgInvalidRefreshToken  = "Invalid or expired refresh token"
	msgTenantNotFound       = "Tenant not found"
	msgTenantNotFoundActive = "Tenant not found or inactive"
	msgUserExists           = "User already exists with this email"
	msgSubdomainTaken       = "Subdomain already taken"
	msgAdminRequired        = "Only tenant admins can register admin users"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	directory DirectoryInterface
	users     UserStorageInterface
	tx        TxRunnerInterface
	tokens    TokenServiceInterface
	hasher    HasherInterface

	now func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Service.Register")
	defer span.End()

	email := normalizeEmail(in.Email)

	tenant, err := s.directory.FindByID(ctx, in.TenantID)
	if err != nil {
		if errors.Is(err, directory.ErrTenantNotFound) {
			return nil, apierrors.NotFound(msgTenantNotFoundActive)
		}
		return nil, apierrors.Internal("Internal server error", err)
	}

	role := in.Role
	if role == "" {
		role = types.RoleStaff
	}

	if role == types.RoleAdmin && !isTenantAdmin(in.Caller, tenant.ID) {
		return nil, apierrors.Forbidden(msgAdminRequired)
	}

	_, err = s.users.GetUserByTenantAndEmail(ctx, tenant.ID, email)
	switch {
	case err == nil:
		return nil, apierrors.Conflict(msgUserExists)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, apierrors.Internal("Internal server error", fmt.Errorf("failed to look up user: %w", err))
	}

	digest, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, hashError(err, "password")
	}

	user, err := s.users.CreateUser(
		ctx,
		&types.User{
			TenantID:       tenant.ID,
			Email:          email,
			HashedPassword: digest,
			Name:           in.Name,
			Role:           role,
			IsActive:       true,
		},
	)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, apierrors.Conflict(msgUserExists)
		}
		return nil, apierrors.Internal("Internal server error", err)
	}

	pair, err := s.tokens.IssuePair(ctx, types.PayloadFor(user))
	if err != nil {
		return nil, apierrors.Internal("Internal server error", err)
	}

	s.logger.Security().UserRegistered(user.ID, user.TenantID, user.Role.String())

	return &AuthResult{User: user, TokenPair: *pair}, nil
}

// Login rejects every failure with the same error. When the user or tenant is
// missing a dummy compare runs so that response time does not reveal which.
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Service.Login")
	defer span.End()

	email := normalizeEmail(in.Email)

	user, err := s.lookupLoginUser(ctx, in.TenantID, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		s.hasher.CompareDummy(ctx, in.Password)
		return nil, s.loginFailed(in)
	}

	if !s.hasher.Compare(ctx, in.Password, user.HashedPassword) || !user.IsActive {
		return nil, s.loginFailed(in)
	}

	now := s.now()
	if err := s.users.UpdateUserLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Errorw("failed to record last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLogin = &now
	}

	pair, err := s.tokens.IssuePair(ctx, types.PayloadFor(user))
	if err != nil {
		return nil, apierrors.Internal("Internal server error", err)
	}

	s.logger.Security().AuthnLoginSuccess(user.ID, user.TenantID)

	return &AuthResult{User: user, TokenPair: *pair}, nil
}

// lookupLoginUser returns a nil user without error when either the tenant or
// the user cannot be used for login
func (s *Service) lookupLoginUser(ctx context.Context, tenantID, email string) (*types.User, error) {
	_, err := s.directory.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, directory.ErrTenantNotFound) {
			return nil, nil
		}
		return nil, apierrors.Internal("Internal server error", err)
	}

	user, err := s.users.GetUserByTenantAndEmail(ctx, tenantID, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, apierrors.Internal("Internal server error", fmt.Errorf("failed to look up user: %w", err))
	}

	return user, nil
}

func (s *Service) loginFailed(in LoginInput) error {
	s.logger.Security().AuthnLoginFail(in.TenantID, in.ClientIP)
	return apierrors.Unauthorized(msgInvalidCredentials)
}

// RefreshAccessToken mints a new access token from a refresh token. The
// refresh token itself is not rotated and the payload is not reloaded.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Service.RefreshAccessToken")
	defer span.End()

	payload, err := s.tokens.Verify(ctx, refreshToken, token.KindRefresh)
	if err != nil {
		return nil, apierrors.Unauthorized(msgInvalidRefreshToken)
	}

	access, err := s.tokens.IssueAccessToken(ctx, *payload)
	if err != nil {
		return nil, apierrors.Internal("Internal server error", err)
	}

	return &RefreshResult{
		AccessToken: access,
		ExpiresIn:   int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// ProvisionTenant creates a tenant and its first admin in one transaction
func (s *Service) ProvisionTenant(ctx context.Context, in ProvisionInput) (*ProvisionResult, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Service.ProvisionTenant")
	defer span.End()

	digest, err := s.hasher.Hash(ctx, in.AdminPassword)
	if err != nil {
		return nil, hashError(err, "adminPassword")
	}

	var (
		tenant *types.Tenant
		admin  *types.User
	)

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error

		tenant, err = s.directory.Create(
			ctx,
			&types.Tenant{
				Name:        in.Name,
				Subdomain:   in.Subdomain,
				AccentColor: in.AccentColor,
			},
		)
		if err != nil {
			return err
		}

		admin, err = s.users.CreateUser(
			ctx,
			&types.User{
				TenantID:       tenant.ID,
				Email:          normalizeEmail(in.AdminEmail),
				HashedPassword: digest,
				Name:           in.AdminName,
				Role:           types.RoleAdmin,
				IsActive:       true,
			},
		)
		if err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, directory.ErrDuplicateSubdomain):
		return nil, apierrors.Conflict(msgSubdomainTaken)
	case errors.Is(err, directory.ErrInvalidSubdomain):
		return nil, apierrors.Validation(
			"Validation failed",
			apierrors.FieldError{Path: "subdomain", Message: "must be 3-100 lowercase letters, digits or hyphens"},
		)
	default:
		return nil, apierrors.Internal("Internal server error", fmt.Errorf("failed to provision tenant: %w", err))
	}

	pair, err := s.tokens.IssuePair(ctx, types.PayloadFor(admin))
	if err != nil {
		return nil, apierrors.Internal("Internal server error", err)
	}

	s.logger.Security().TenantProvisioned(tenant.ID, tenant.Subdomain, admin.ID)

	return &ProvisionResult{Tenant: tenant, Admin: admin, TokenPair: *pair}, nil
}

func (s *Service) GetTenant(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Service.GetTenant")
	defer span.End()

	t, err := s.directory.GetByID(ctx, id)
	if err != nil {
		return nil, s.tenantError(err)
	}

	return t, nil
}

func (s *Service) UpdateTenant(ctx context.Context, id string, update *types.TenantUpdate) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Service.UpdateTenant")
	defer span.End()

	t, err := s.directory.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, apierrors.Conflict("Custom domain already in use")
		}
		return nil, s.tenantError(err)
	}

	return t, nil
}

func (s *Service) tenantError(err error) error {
	if errors.Is(err, directory.ErrTenantNotFound) {
		return apierrors.NotFound(msgTenantNotFound)
	}
	return apierrors.Internal("Internal server error", err)
}

func isTenantAdmin(p *types.Principal, tenantID string) bool {
	return p != nil && p.Role == types.RoleAdmin && p.TenantID == tenantID
}

// hashError reports an over-long password against the field it came from
func hashError(err error, field string) error {
	if errors.Is(err, credentials.ErrPasswordTooLong) {
		return apierrors.Validation("Validation failed", apierrors.FieldError{Path: field, Message: "must be at most 72 bytes"})
	}
	return apierrors.Internal("Internal server error", err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NewService(
	directory DirectoryInterface,
	users UserStorageInterface,
	tx TxRunnerInterface,
	tokens TokenServiceInterface,
	hasher HasherInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.directory = directory
	s.users = users
	s.tx = tx
	s.tokens = tokens
	s.hasher = hasher
	s.now = time.Now

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
