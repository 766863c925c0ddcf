package repository

import (
	"context"

	"studybuddy/internal/domain/entity"
)

// TriggerRepository persists the pending notification triggers as one
// ordered collection under a single storage key. Mutations are
// read-modify-write; the implementation serializes them so the scheduler
// and the reconciliation task cannot lose each other's updates.
type TriggerRepository interface {
	List(ctx context.Context) ([]entity.PendingTrigger, error)
	Append(ctx context.Context, trigger entity.PendingTrigger) error
	Remove(ctx context.Context, ids ...string) error
	Clear(ctx context.Context) error
}
