// Package api implements the authenticated GraphQL access layer: the HTTP
// transport, bearer attachment, auth-failure detection, and the single-flight
// token refresh coordinator.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"studybuddy/internal/domain/service"

	"github.com/pkg/errors"
)

const unauthenticatedCode = "UNAUTHENTICATED"

// graphqlRequest is the wire shape of an outgoing operation.
type graphqlRequest struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// ResponseError is a single GraphQL-level error from the response envelope.
type ResponseError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// Unauthenticated reports whether this error is an authentication failure:
// the well-known messages the backend emits, or the standard extension code.
func (e ResponseError) Unauthenticated() bool {
	switch strings.ToLower(e.Message) {
	case "access denied", "unauthorized":
		return true
	}

	return e.Extensions.Code == unauthenticatedCode
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []ResponseError `json:"errors"`
}

// OperationError carries the GraphQL-level errors of a failed operation.
// Error() returns the first server-provided message so deliveries can show
// it directly.
type OperationError struct {
	Operation string
	Errors    []ResponseError
}

func (e *OperationError) Error() string {
	if len(e.Errors) == 0 {
		return "operation " + e.Operation + " failed"
	}

	return e.Errors[0].Message
}

// Unauthenticated reports whether any of the errors is an auth failure.
func (e *OperationError) Unauthenticated() bool {
	for _, gqlErr := range e.Errors {
		if gqlErr.Unauthenticated() {
			return true
		}
	}

	return false
}

// Transport performs the actual HTTP call to the GraphQL endpoint. It knows
// nothing about refresh; the pipeline layers that on top.
type Transport struct {
	endpoint   string
	httpClient *http.Client
}

// NewTransport creates a transport for the given GraphQL endpoint URL.
func NewTransport(endpoint string, timeout time.Duration) *Transport {
	return &Transport{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RoundTrip sends the operation with the given bearer token and decodes the
// data payload into out (which may be nil). GraphQL-level errors come back
// as *OperationError.
func (t *Transport) RoundTrip(ctx context.Context, op service.Operation, bearer string, out any) error {
	body, err := json.Marshal(graphqlRequest{
		OperationName: op.Name,
		Query:         op.Document,
		Variables:     op.Variables,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to encode operation %s", op.Name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "failed to build request for operation %s", op.Name)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "operation %s failed", op.Name)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read response for operation %s", op.Name)
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return errors.Wrapf(err, "failed to decode response for operation %s (status %d)", op.Name, resp.StatusCode)
	}

	if len(envelope.Errors) > 0 {
		return &OperationError{Operation: op.Name, Errors: envelope.Errors}
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.Wrapf(err, "failed to decode data for operation %s", op.Name)
		}
	}

	return nil
}
