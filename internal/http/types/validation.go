// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/canonical/tenant-auth-service/internal/apierrors"
	domain "github.com/canonical/tenant-auth-service/internal/types"
)

const maxBodyBytes = 1 << 20

var accentColorRegexp = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Validator decodes json request bodies and validates them against their struct tags
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// registration only fails on empty tags or nil functions
	_ = v.RegisterValidation("subdomain", func(fl validator.FieldLevel) bool {
		return domain.ValidSubdomain(fl.Field().String())
	})
	_ = v.RegisterValidation("accentcolor", func(fl validator.FieldLevel) bool {
		return accentColorRegexp.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	// max counts runes, bcrypt limits bytes
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})

	return &Validator{validate: v}
}

// Decode reads the body of r into dst and validates it.
// Returned errors are always *apierrors.Error of kind validation.
func (v *Validator) Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierrors.Validation("Validation failed", apierrors.FieldError{Path: "body", Message: "request body is required"})
		}
		return apierrors.Validation("Validation failed", apierrors.FieldError{Path: "body", Message: "malformed json body"})
	}

	return v.Struct(dst)
}

// Struct validates an already decoded value
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.Validation("Validation failed", apierrors.FieldError{Path: "body", Message: err.Error()})
	}

	details := make([]apierrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apierrors.FieldError{
			Path:    fieldPath(fe),
			Message: fieldMessage(fe),
		})
	}

	return apierrors.Validation("Validation failed", details...)
}

// fieldPath drops the top level struct name from the namespace, "Req.admin.email" -> "admin.email"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	case "accentcolor":
		return "must be a hex color like #C0B8A7"
	case "uuid":
		return "must be a valid uuid"
	case "url":
		return "must be a valid url"
	case "hostname":
		return "must be a valid hostname"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "subdomain":
		return "must be 3-100 lowercase letters, digits or hyphens"
	case "role":
		return "must be one of [admin staff customer]"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
