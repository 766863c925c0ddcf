package usecase

import "context"

// ReconcileUsecase is one pass of the notification reconciliation protocol:
// find pending triggers that should have fired more than the staleness
// window ago, hand responsibility for them to the server's email fallback,
// and clear them locally. RunOnce never panics; any failure is returned for
// logging and the pass still counts as completed.
type ReconcileUsecase interface {
	RunOnce(ctx context.Context) error
}
