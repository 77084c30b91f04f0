// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

const (
	DefaultAccentColor = "#C0B8A7"
	DefaultTheme       = "light"
	DefaultPlan        = "free"
)

type Tenant struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Subdomain    string    `db:"subdomain" json:"subdomain"`
	LogoURL      *string   `db:"logo_url" json:"logoUrl"`
	AccentColor  string    `db:"accent_color" json:"accentColor"`
	Theme        string    `db:"theme" json:"theme"`
	Plan         string    `db:"plan" json:"plan"`
	CustomDomain *string   `db:"custom_domain" json:"customDomain"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// TenantUpdate carries a partial update, nil fields are left untouched
type TenantUpdate struct {
	Name         *string `json:"name,omitempty"`
	LogoURL      *string `json:"logoUrl,omitempty"`
	AccentColor  *string `json:"accentColor,omitempty"`
	Theme        *string `json:"theme,omitempty"`
	CustomDomain *string `json:"customDomain,omitempty"`
}

func (u *TenantUpdate) IsEmpty() bool {
	return u == nil || (u.Name == nil && u.LogoURL == nil && u.AccentColor == nil && u.Theme == nil && u.CustomDomain == nil)
}

type User struct {
	ID             string     `db:"id" json:"id"`
	TenantID       string     `db:"tenant_id" json:"tenantId"`
	Email          string     `db:"email" json:"email"`
	HashedPassword string     `db:"hashed_password" json:"-"`
	Name           string     `db:"name" json:"name"`
	Role           Role       `db:"role" json:"role"`
	IsActive       bool       `db:"is_active" json:"isActive"`
	LastLogin      *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// TokenPayload is the identity embedded in both access and refresh tokens
type TokenPayload struct {
	Subject  string `json:"sub"`
	TenantID string `json:"tenantId"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// PayloadFor builds the token payload from the user's current state
func PayloadFor(u *User) TokenPayload {
	return TokenPayload{
		Subject:  u.ID,
		TenantID: u.TenantID,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// Principal is the verified identity of the caller
type Principal = TokenPayload

type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}
