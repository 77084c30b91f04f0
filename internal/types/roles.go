// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"fmt"
	"slices"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

var roles = []Role{RoleAdmin, RoleStaff, RoleCustomer}

func (r Role) Valid() bool {
	return slices.Contains(roles, r)
}

func (r Role) String() string {
	return string(r)
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// RoleSet is the set of roles allowed through a role check
type RoleSet []Role

func NewRoleSet(r ...Role) RoleSet {
	return RoleSet(r)
}

func (s RoleSet) Contains(r Role) bool {
	return slices.Contains(s, r)
}
