// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package version

// Version is set at build time with -ldflags "-X .../internal/version.Version=..."
var Version = "dev"
