// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/canonical/tenant-auth-service/internal/apierrors"
	httptypes "github.com/canonical/tenant-auth-service/internal/http/types"
)

// apiError is a non 2xx answer decoded from the service error envelope
type apiError struct {
	Status  int
	Message string
	Details []apierrors.FieldError
}

func (e *apiError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}

	details := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		details = append(details, d.Path+" "+d.Message)
	}
	return fmt.Sprintf("api error (status %d): %s: %s", e.Status, e.Message, strings.Join(details, ", "))
}

type httpClient struct {
	endpoint string
	token    string
	client   *http.Client
}

func newHTTPClient(endpoint, token string) *httpClient {
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = "http://" + endpoint
	}
	// remove trailing slash
	endpoint = strings.TrimSuffix(endpoint, "/")

	return &httpClient{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// getClient builds a client from the persistent flags
func getClient() *httpClient {
	return newHTTPClient(httpEndpoint, bearerToken)
}

func (c *httpClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope httptypes.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return &apiError{Status: resp.StatusCode, Message: envelope.Error, Details: envelope.Details}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
