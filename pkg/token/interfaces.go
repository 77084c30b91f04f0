// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package token

import (
	"context"
	"time"

	"github.com/canonical/tenant-auth-service/internal/types"
)

type ServiceInterface interface {
	IssueAccessToken(ctx context.Context, payload types.TokenPayload) (string, error)
	IssueRefreshToken(ctx context.Context, payload types.TokenPayload) (string, error)
	IssuePair(ctx context.Context, payload types.TokenPayload) (*types.TokenPair, error)
	Verify(ctx context.Context, raw string, kind Kind) (*types.TokenPayload, error)
	AccessTTL() time.Duration
}
