// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package credentials

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/tracing"
)

var _ HasherInterface = (*Hasher)(nil)

// ErrPasswordTooLong is returned for passwords bcrypt would silently truncate.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

const maxPasswordBytes = 72

// Hasher wraps bcrypt. Comparisons against an unknown user go through CompareDummy
// so that a missing account costs the same as a wrong password.
type Hasher struct {
	cost  int
	dummy []byte

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (h *Hasher) Hash(ctx context.Context, plain string) (string, error) {
	_, span := h.tracer.Start(ctx, "credentials.Hasher.Hash")
	defer span.End()

	if len(plain) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(digest), nil
}

func (h *Hasher) Compare(ctx context.Context, plain, digest string) bool {
	_, span := h.tracer.Start(ctx, "credentials.Hasher.Compare")
	defer span.End()

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		h.logger.Debugf("password comparison failed: %v", err)
	}

	return err == nil
}

// CompareDummy burns one comparison against a fixed digest and discards the result.
func (h *Hasher) CompareDummy(ctx context.Context, plain string) {
	_, span := h.tracer.Start(ctx, "credentials.Hasher.CompareDummy")
	defer span.End()

	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
}

func NewHasher(cost int, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy digest: %w", err)
	}

	h := new(Hasher)

	h.cost = cost
	h.dummy = dummy

	h.tracer = tracer
	h.monitor = monitor
	h.logger = logger

	return h, nil
}
