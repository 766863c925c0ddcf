package storage

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"studybuddy/internal/domain/entity"
	"studybuddy/internal/domain/repository"

	"github.com/pkg/errors"
)

// pendingTriggersKey is the single aggregate key holding the serialized
// pending trigger collection.
const pendingTriggersKey = "pending_notification_triggers"

// triggerRepository stores the pending trigger collection as one JSON array.
// Every mutation is a read-modify-write of the whole blob; the mutex
// serializes the scheduler against the reconciliation task so neither can
// lose the other's update.
type triggerRepository struct {
	store repository.CredentialRepository
	mu    sync.Mutex
}

// NewTriggerRepository creates a trigger repository backed by the given
// key-value store.
func NewTriggerRepository(store repository.CredentialRepository) repository.TriggerRepository {
	return &triggerRepository{store: store}
}

func (r *triggerRepository) List(ctx context.Context) ([]entity.PendingTrigger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(ctx)
}

func (r *triggerRepository) Append(ctx context.Context, trigger entity.PendingTrigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	triggers, err := r.load(ctx)
	if err != nil {
		return err
	}

	return r.save(ctx, append(triggers, trigger))
}

func (r *triggerRepository) Remove(ctx context.Context, ids ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	triggers, err := r.load(ctx)
	if err != nil {
		return err
	}

	kept := slices.DeleteFunc(triggers, func(t entity.PendingTrigger) bool {
		return slices.Contains(ids, t.ID)
	})
	if len(kept) == len(triggers) {
		return nil
	}

	return r.save(ctx, kept)
}

func (r *triggerRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Remove(ctx, pendingTriggersKey); err != nil {
		return errors.Wrap(err, "failed to clear pending triggers")
	}

	return nil
}

func (r *triggerRepository) load(ctx context.Context) ([]entity.PendingTrigger, error) {
	raw, err := r.store.Get(ctx, pendingTriggersKey)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read pending triggers")
	}

	var triggers []entity.PendingTrigger
	if err := json.Unmarshal([]byte(raw), &triggers); err != nil {
		// A corrupt blob is unrecoverable bookkeeping, not user data. Start over.
		return nil, nil
	}

	return triggers, nil
}

func (r *triggerRepository) save(ctx context.Context, triggers []entity.PendingTrigger) error {
	data, err := json.Marshal(triggers)
	if err != nil {
		return errors.Wrap(err, "failed to encode pending triggers")
	}

	if err := r.store.Set(ctx, pendingTriggersKey, string(data)); err != nil {
		return errors.Wrap(err, "failed to write pending triggers")
	}

	return nil
}
