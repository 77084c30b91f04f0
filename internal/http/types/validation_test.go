// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/canonical/tenant-auth-service/internal/apierrors"
)

type testRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Subdomain   string  `json:"subdomain" validate:"required,subdomain"`
	AccentColor *string `json:"accentColor" validate:"omitempty,accentcolor"`
	Role        string  `json:"role" validate:"omitempty,role"`
	Password    string  `json:"password" validate:"omitempty,maxbytes=72"`
}

func TestValidatorDecode(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedErr  bool
		expectedPath []string
	}{
		{
			name: "valid body",
			body: `{"email":"a@acme.io","subdomain":"acme","accentColor":"#C0B8A7","role":"staff"}`,
		},
		{
			name:         "empty body",
			body:         ``,
			expectedErr:  true,
			expectedPath: []string{"body"},
		},
		{
			name:         "malformed json",
			body:         `{"email":`,
			expectedErr:  true,
			expectedPath: []string{"body"},
		},
		{
			name:         "invalid fields",
			body:         `{"email":"nope","subdomain":"Bad_Sub","accentColor":"red","role":"owner"}`,
			expectedErr:  true,
			expectedPath: []string{"email", "subdomain", "accentColor", "role"},
		},
		{
			name: "password at the byte limit",
			body: `{"email":"a@acme.io","subdomain":"acme","password":"` + strings.Repeat("é", 36) + `"}`,
		},
		{
			name:         "password over the byte limit with few runes",
			body:         `{"email":"a@acme.io","subdomain":"acme","password":"` + strings.Repeat("é", 40) + `"}`,
			expectedErr:  true,
			expectedPath: []string{"password"},
		},
		{
			name:         "missing required",
			body:         `{}`,
			expectedErr:  true,
			expectedPath: []string{"email", "subdomain"},
		},
	}

	v := NewValidator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst testRequest
			err := v.Decode(req, &dst)

			if !tt.expectedErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			apiErr := apierrors.From(err)
			if apiErr.Kind != apierrors.KindValidation {
				t.Fatalf("expected validation error, got %v", apiErr.Kind)
			}

			if len(apiErr.Details) != len(tt.expectedPath) {
				t.Fatalf("expected %d details, got %d: %+v", len(tt.expectedPath), len(apiErr.Details), apiErr.Details)
			}
			for i, path := range tt.expectedPath {
				if apiErr.Details[i].Path != path {
					t.Errorf("expected detail %d path %q, got %q", i, path, apiErr.Details[i].Path)
				}
			}
		})
	}
}
