// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package apierrors defines the error taxonomy surfaced to API clients.
// Errors are raised where they are detected and turned into responses once,
// at the HTTP boundary.
package apierrors

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to its response status.
// Conflicts are reported as 400 to stay compatible with existing clients.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindBadRequest, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Details []FieldError

	// Err is the underlying cause, it is logged but never sent to the client
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind, so errors.Is(err, apierrors.Forbidden("")) holds for any forbidden error
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Validation(message string, details ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func BadRequest(message string) *Error {
	return newError(KindBadRequest, message, nil)
}

func Unauthorized(message string) *Error {
	return newError(KindUnauthorized, message, nil)
}

func Forbidden(message string) *Error {
	return newError(KindForbidden, message, nil)
}

func NotFound(message string) *Error {
	return newError(KindNotFound, message, nil)
}

func Conflict(message string) *Error {
	return newError(KindConflict, message, nil)
}

// Internal wraps an unexpected failure, message is a safe public summary
func Internal(message string, cause error) *Error {
	return newError(KindInternal, message, cause)
}

// Wrap attaches a cause to an error of the given kind
func Wrap(kind Kind, message string, cause error) *Error {
	return newError(kind, message, cause)
}

// From normalises any error into an *Error, unknown errors become internal ones
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return Internal("Internal server error", err)
}

// KindOf returns the kind of err, KindInternal for unknown errors
func KindOf(err error) Kind {
	return From(err).Kind
}
