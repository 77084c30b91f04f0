// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/canonical/tenant-auth-service/internal/apierrors"
	"github.com/canonical/tenant-auth-service/internal/http/types"
	"github.com/canonical/tenant-auth-service/internal/logging"
)

// TransactionMiddleware creates a middleware that wraps each request in a database transaction.
// The transaction is committed if the handler completes successfully (status < 400).
// The transaction is rolled back if the handler returns an error or status >= 400.
// The response is held back until the transaction ends, a failed commit is answered with a 500.
func TransactionMiddleware(db DBClientInterface, logger logging.LoggerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				// No need for a transaction on read-only requests
				next.ServeHTTP(w, r)
				return
			}

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			handlerFailed := false

			err := db.WithTx(ctx, func(txCtx context.Context) error {
				next.ServeHTTP(rw, r.WithContext(txCtx))

				if rw.statusCode >= 400 {
					handlerFailed = true
					return fmt.Errorf("request failed with status %d", rw.statusCode)
				}

				return nil
			})

			switch {
			case err != nil && !handlerFailed:
				types.WriteError(w, r, apierrors.Internal("Internal server error", fmt.Errorf("commit failed for %s %s: %w", r.Method, r.URL.Path, err)), logger)
				return
			case err != nil:
				logger.Debugf("transaction rolled back for %s %s: %v", r.Method, r.URL.Path, err)
			}

			rw.flush()
		})
	}
}

// responseWriter buffers the response so the transaction outcome can decide what is sent
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	body        bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.body.Write(b)
}

func (rw *responseWriter) flush() {
	rw.ResponseWriter.WriteHeader(rw.statusCode)
	if rw.body.Len() > 0 {
		_, _ = rw.ResponseWriter.Write(rw.body.Bytes())
	}
}
