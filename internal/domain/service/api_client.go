// Package service declares the domain-level service contracts whose concrete
// implementations live under internal/infra.
package service

import "context"

// Operation is a named GraphQL operation with its document and variables.
type Operation struct {
	Name      string
	Document  string
	Variables map[string]any
}

// APIClient executes a GraphQL operation against the backend and decodes the
// data payload into out. Implementations attach authentication and handle
// token refresh transparently; an operation that still fails auth after the
// refresh cycle surfaces domainerrors.ErrUnauthenticated.
type APIClient interface {
	Do(ctx context.Context, op Operation, out any) error
}
