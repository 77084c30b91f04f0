// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"net/http"

	"github.com/canonical/tenant-auth-service/internal/apierrors"
	"github.com/canonical/tenant-auth-service/internal/logging"
)

// ErrorResponse is the json envelope of every failed request
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details []apierrors.FieldError `json:"details,omitempty"`
}

// WriteJSON encodes body with the given status
func WriteJSON(w http.ResponseWriter, status int, body any, logger logging.LoggerInterface) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorf("failed to encode response: %v", err)
	}
}

// WriteError is the single place where errors become HTTP responses.
// Internal failures are logged with their cause and answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger logging.LoggerInterface) {
	apiErr := apierrors.From(err)
	status := apiErr.Kind.HTTPStatus()

	switch apiErr.Kind {
	case apierrors.KindInternal:
		logger.Errorw(
			"Unexpected error",
			"error", err.Error(),
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestID(r),
		)
		WriteJSON(w, status, ErrorResponse{Error: "Internal server error"}, logger)
		return
	case apierrors.KindValidation:
		logger.Debugw(
			"Validation error",
			"details", apiErr.Details,
			"path", r.URL.Path,
			"request_id", requestID(r),
		)
	default:
		logger.Infow(
			"Application error",
			"status", status,
			"message", apiErr.Message,
			"path", r.URL.Path,
			"request_id", requestID(r),
		)
	}

	WriteJSON(w, status, ErrorResponse{Error: apiErr.Message, Details: apiErr.Details}, logger)
}

// NotFoundHandler answers unknown routes with the standard envelope
func NotFoundHandler(logger logging.LoggerInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "Route not found"}, logger)
	}
}
