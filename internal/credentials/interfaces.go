// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package credentials

import "context"

type HasherInterface interface {
	Hash(ctx context.Context, plain string) (string, error)
	Compare(ctx context.Context, plain, digest string) bool
	CompareDummy(ctx context.Context, plain string)
}
