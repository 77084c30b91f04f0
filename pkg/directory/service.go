// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/storage"
	"github.com/canonical/tenant-auth-service/internal/tracing"
	"github.com/canonical/tenant-auth-service/internal/types"
)

var _ ServiceInterface = (*Service)(nil)

var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrDuplicateSubdomain = errors.New("subdomain already taken")
	ErrInvalidSubdomain   = errors.New("subdomain must be 3-100 lowercase letters, digits or hyphens")
)

// Service looks tenants up by id or subdomain. Inactive tenants are reported as
// missing by the Find methods, only GetByID returns them.
type Service struct {
	storage StorageInterface
	cache   CacheInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) FindByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "directory.Service.FindByID")
	defer span.End()

	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !t.IsActive {
		return nil, ErrTenantNotFound
	}

	return t, nil
}

func (s *Service) FindBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "directory.Service.FindBySubdomain")
	defer span.End()

	t, ok := s.cache.GetBySubdomain(ctx, subdomain)
	if !ok {
		var err error
		t, err = s.storage.GetTenantBySubdomain(ctx, subdomain)
		if err != nil {
			return nil, s.lookupError(err, "subdomain", subdomain)
		}
		s.cache.Set(ctx, t)
	}

	if !t.IsActive {
		return nil, ErrTenantNotFound
	}

	return t, nil
}

// GetByID returns the tenant whatever its state. Cached entries are served until they expire,
// so changes made outside the service show up after at most the cache TTL
func (s *Service) GetByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "directory.Service.GetByID")
	defer span.End()

	if t, ok := s.cache.GetByID(ctx, id); ok {
		return t, nil
	}

	t, err := s.storage.GetTenantByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err, "id", id)
	}

	s.cache.Set(ctx, t)

	return t, nil
}

// Create applies defaults to draft and stores it. The subdomain pre-check is
// advisory, the unique index decides when two creations race.
func (s *Service) Create(ctx context.Context, draft *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "directory.Service.Create")
	defer span.End()

	if err := ValidateSubdomain(draft.Subdomain); err != nil {
		return nil, err
	}

	_, err := s.storage.GetTenantBySubdomain(ctx, draft.Subdomain)
	switch {
	case err == nil:
		return nil, ErrDuplicateSubdomain
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to check subdomain: %w", err)
	}

	t := *draft
	if t.AccentColor == "" {
		t.AccentColor = types.DefaultAccentColor
	}
	if t.Theme == "" {
		t.Theme = types.DefaultTheme
	}
	if t.Plan == "" {
		t.Plan = types.DefaultPlan
	}
	t.IsActive = true

	created, err := s.storage.CreateTenant(ctx, &t)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrDuplicateSubdomain
		}
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, update *types.TenantUpdate) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "directory.Service.Update")
	defer span.End()

	t, err := s.storage.UpdateTenant(ctx, id, update)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	s.cache.Invalidate(ctx, t)

	return t, nil
}

func (s *Service) lookupError(err error, field, value string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrTenantNotFound
	}

	s.logger.Errorw("tenant lookup failed", field, value, "error", err)
	return fmt.Errorf("failed to look up tenant: %w", err)
}

// ValidateSubdomain checks the subdomain format only, not availability.
func ValidateSubdomain(subdomain string) error {
	if !types.ValidSubdomain(subdomain) {
		return ErrInvalidSubdomain
	}
	return nil
}

func NewService(storage StorageInterface, cache CacheInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)

	s.storage = storage
	s.cache = cache

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
