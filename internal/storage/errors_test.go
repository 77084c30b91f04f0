// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsNoRows(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "database/sql", err: sql.ErrNoRows, want: true},
		{name: "pgx", err: pgx.ErrNoRows, want: true},
		{name: "wrapped", err: fmt.Errorf("scan: %w", sql.ErrNoRows), want: true},
		{name: "other", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNoRows(tt.err); got != tt.want {
				t.Errorf("IsNoRows() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "unique violation",
			err:      &pgconn.PgError{Code: pgErrCodeUniqueViolation, ConstraintName: "tenants_subdomain_key"},
			sentinel: ErrDuplicateKey,
		},
		{
			name:     "foreign key violation",
			err:      fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgErrCodeForeignKeyViolation}),
			sentinel: ErrForeignKeyViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapWriteError(tt.err, "insert tenant", "tenant acme")
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err)
			}
		})
	}

	t.Run("other errors keep their cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := wrapWriteError(cause, "insert tenant", "tenant acme")
		if !errors.Is(err, cause) {
			t.Errorf("expected cause to be preserved, got %v", err)
		}
		if errors.Is(err, ErrDuplicateKey) || errors.Is(err, ErrForeignKeyViolation) {
			t.Errorf("unexpected sentinel in %v", err)
		}
	})
}
