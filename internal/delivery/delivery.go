// Package delivery defines the contract every outward-facing surface of the
// process implements, whether it serves HTTP, ticks a background job, or
// reads a terminal.
package delivery

import "context"

// Delivery is a long-running entry point. Serve blocks until the delivery
// stops on its own or its shutdown hook fires.
type Delivery interface {
	Serve(ctx context.Context) error
}
