// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"regexp"
)

const (
	SubdomainMinLength = 3
	SubdomainMaxLength = 100
)

var subdomainRegexp = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidSubdomain reports whether s is 3 to 100 lowercase letters, digits or hyphens
func ValidSubdomain(s string) bool {
	if len(s) < SubdomainMinLength || len(s) > SubdomainMaxLength {
		return false
	}
	return subdomainRegexp.MatchString(s)
}
