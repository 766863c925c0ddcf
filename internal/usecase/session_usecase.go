// Package usecase declares the application-facing contracts of the business
// layer. Implementations live in the impl subpackage.
package usecase

import (
	"context"
	"time"

	"studybuddy/internal/domain/entity"
)

// SessionUsecase owns the in-memory auth state and its synchronization with
// the credential store. It is the only writer of the credential triple apart
// from the token refresh coordinator.
type SessionUsecase interface {
	// Hydrate reads stored credentials once at process start and resolves
	// the session to authenticated or unauthenticated. It never fails;
	// unreadable storage simply resolves to unauthenticated.
	Hydrate(ctx context.Context) entity.Session

	// Login persists the credential triple and then publishes the new
	// in-memory state. Persistence failures are logged, not returned: the
	// in-memory session still becomes authenticated.
	Login(ctx context.Context, token string, user *entity.User, refreshToken string) error

	// Logout clears stored credentials and the in-memory state. It is
	// idempotent; logging out while unauthenticated is a no-op state-wise
	// but still attempts the storage cleanup.
	Logout(ctx context.Context) error

	// SetUser replaces the cached user profile, in memory and in storage.
	SetUser(ctx context.Context, user *entity.User) error

	// Current returns a consistent snapshot of the session state.
	Current() entity.Session

	// TokenExpiry reports the access token's expiry claim when one is
	// present and parseable. Diagnostics only.
	TokenExpiry() (time.Time, bool)
}
