// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/canonical/tenant-auth-service/internal/logging"
	"github.com/canonical/tenant-auth-service/internal/monitoring"
	"github.com/canonical/tenant-auth-service/internal/tracing"
	"github.com/canonical/tenant-auth-service/internal/types"
)

var _ ServiceInterface = (*Service)(nil)

// ErrInvalidToken covers every verification failure. Callers never learn which check failed.
var ErrInvalidToken = errors.New("invalid token")

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type Claims struct {
	TenantID string `json:"tenantId"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Type     Kind   `json:"typ"`

	jwt.RegisteredClaims
}

// Service signs HS256 tokens. Access and refresh tokens use distinct secrets.
// There is no revocation list, a token stays valid until it expires.
type Service struct {
	cfg Config
	now func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) IssueAccessToken(ctx context.Context, payload types.TokenPayload) (string, error) {
	_, span := s.tracer.Start(ctx, "token.Service.IssueAccessToken")
	defer span.End()

	return s.sign(payload, KindAccess)
}

func (s *Service) IssueRefreshToken(ctx context.Context, payload types.TokenPayload) (string, error) {
	_, span := s.tracer.Start(ctx, "token.Service.IssueRefreshToken")
	defer span.End()

	return s.sign(payload, KindRefresh)
}

func (s *Service) IssuePair(ctx context.Context, payload types.TokenPayload) (*types.TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "token.Service.IssuePair")
	defer span.End()

	access, err := s.IssueAccessToken(ctx, payload)
	if err != nil {
		return nil, err
	}

	refresh, err := s.IssueRefreshToken(ctx, payload)
	if err != nil {
		return nil, err
	}

	return &types.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
	}, nil
}

func (s *Service) Verify(ctx context.Context, raw string, kind Kind) (*types.TokenPayload, error) {
	_, span := s.tracer.Start(ctx, "token.Service.Verify")
	defer span.End()

	secret, _, err := s.keyFor(kind)
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := new(Claims)
	_, err = parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		s.logger.Debugf("%s token rejected: %v", kind, err)
		return nil, ErrInvalidToken
	}

	if claims.Type != kind {
		s.logger.Debugf("%s token rejected: typ claim is %q", kind, claims.Type)
		return nil, ErrInvalidToken
	}

	role, err := types.ParseRole(claims.Role)
	if err != nil || claims.Subject == "" || claims.TenantID == "" {
		s.logger.Debugf("%s token rejected: incomplete payload", kind)
		return nil, ErrInvalidToken
	}

	return &types.TokenPayload{
		Subject:  claims.Subject,
		TenantID: claims.TenantID,
		Email:    claims.Email,
		Role:     role,
	}, nil
}

func (s *Service) AccessTTL() time.Duration {
	return s.cfg.AccessTTL
}

func (s *Service) sign(payload types.TokenPayload, kind Kind) (string, error) {
	secret, ttl, err := s.keyFor(kind)
	if err != nil {
		return "", err
	}

	now := s.now()
	claims := &Claims{
		TenantID: payload.TenantID,
		Email:    payload.Email,
		Role:     payload.Role.String(),
		Type:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.Subject,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return signed, nil
}

func (s *Service) keyFor(kind Kind) ([]byte, time.Duration, error) {
	switch kind {
	case KindAccess:
		return []byte(s.cfg.AccessSecret), s.cfg.AccessTTL, nil
	case KindRefresh:
		return []byte(s.cfg.RefreshSecret), s.cfg.RefreshTTL, nil
	default:
		return nil, 0, fmt.Errorf("unknown token kind %q", kind)
	}
}

func NewService(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Service, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("access and refresh token secrets are required")
	}

	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}

	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	s := new(Service)

	s.cfg = cfg
	s.now = time.Now

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s, nil
}
