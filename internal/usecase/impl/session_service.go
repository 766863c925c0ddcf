// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"studybuddy/internal/domain/entity"
	"studybuddy/internal/domain/repository"
	"studybuddy/internal/domain/service"
	"studybuddy/internal/infra/broadcast"
	"studybuddy/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface. The mutex makes
// every state transition atomic relative to Current(): no reader ever sees a
// user without its token or vice versa.
type sessionService struct {
	creds     repository.CredentialRepository
	inspector service.TokenInspector
	logger    *slog.Logger

	mu    sync.RWMutex
	state entity.SessionState
	user  *entity.User
	token string
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	Creds     repository.CredentialRepository
	Inspector service.TokenInspector
	Logout    *broadcast.LogoutBroadcast
	Logger    *slog.Logger
}

// NewSessionService is the constructor for sessionService. It subscribes to
// the logout broadcast so a failed token refresh anywhere in the process
// cascades into a full logout here.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	srv := &sessionService{
		creds:     params.Creds,
		inspector: params.Inspector,
		logger:    params.Logger,
		state:     entity.SessionHydrating,
	}

	params.Logout.Subscribe(func() {
		if err := srv.Logout(context.Background()); err != nil {
			srv.logger.Warn("Broadcast logout failed", slog.Any("error", err))
		}
	})

	return srv
}

// Hydrate loads the stored credentials once at process start. Both the token
// and the profile must be readable for the session to resolve authenticated;
// anything else, including storage failure, resolves unauthenticated.
func (srv *sessionService) Hydrate(ctx context.Context) entity.Session {
	token, tokenErr := srv.creds.Get(ctx, repository.KeyAccessToken)
	rawUser, userErr := srv.creds.Get(ctx, repository.KeyUser)

	if tokenErr != nil && !errors.Is(tokenErr, repository.ErrKeyNotFound) {
		srv.logger.Warn("Failed to load stored token", slog.Any("error", tokenErr))
	}
	if userErr != nil && !errors.Is(userErr, repository.ErrKeyNotFound) {
		srv.logger.Warn("Failed to load stored profile", slog.Any("error", userErr))
	}

	var user *entity.User
	if tokenErr == nil && userErr == nil && token != "" {
		user = &entity.User{}
		if err := json.Unmarshal([]byte(rawUser), user); err != nil {
			srv.logger.Warn("Stored profile unreadable", slog.Any("error", err))
			user = nil
		}
	}

	srv.mu.Lock()
	if user != nil {
		srv.state = entity.SessionAuthenticated
		srv.user = user
		srv.token = token
	} else {
		srv.state = entity.SessionUnauthenticated
		srv.user = nil
		srv.token = ""
	}
	snapshot := srv.snapshotLocked()
	srv.mu.Unlock()

	srv.logger.Info("Session hydrated", slog.String("state", snapshot.State.String()))

	return snapshot
}

// Login persists the credential triple, then flips the in-memory state in
// one step. Persistence failures only warn: availability wins over strict
// durability, and a re-login recovers a lost profile.
func (srv *sessionService) Login(ctx context.Context, token string, user *entity.User, refreshToken string) error {
	if token == "" || user == nil {
		return errors.New("login requires a token and a user")
	}

	if err := srv.creds.Set(ctx, repository.KeyAccessToken, token); err != nil {
		srv.logger.Warn("Failed to persist access token", slog.Any("error", err))
	}
	if profile, err := json.Marshal(user); err == nil {
		if err := srv.creds.Set(ctx, repository.KeyUser, string(profile)); err != nil {
			srv.logger.Warn("Failed to persist profile", slog.Any("error", err))
		}
	}
	// A server that omits the refresh token leaves any stored one untouched.
	if refreshToken != "" {
		if err := srv.creds.Set(ctx, repository.KeyRefreshToken, refreshToken); err != nil {
			srv.logger.Warn("Failed to persist refresh token", slog.Any("error", err))
		}
	}

	srv.mu.Lock()
	srv.state = entity.SessionAuthenticated
	srv.user = user
	srv.token = token
	srv.mu.Unlock()

	srv.logger.Info("Logged in", slog.String("userID", user.ID))

	return nil
}

// Logout clears stored credentials and the in-memory session. Cleanup is
// attempted unconditionally so a stale triple can never outlive the session.
func (srv *sessionService) Logout(ctx context.Context) error {
	keys := []string{repository.KeyAccessToken, repository.KeyRefreshToken, repository.KeyUser}
	if err := srv.creds.Remove(ctx, keys...); err != nil {
		srv.logger.Warn("Failed to remove stored credentials", slog.Any("error", err))
	}

	srv.mu.Lock()
	alreadyOut := srv.state == entity.SessionUnauthenticated
	srv.state = entity.SessionUnauthenticated
	srv.user = nil
	srv.token = ""
	srv.mu.Unlock()

	if !alreadyOut {
		srv.logger.Info("Logged out")
	}

	return nil
}

// SetUser replaces the cached profile after a successful profile mutation.
func (srv *sessionService) SetUser(ctx context.Context, user *entity.User) error {
	if user == nil {
		return errors.New("user must not be nil")
	}

	if profile, err := json.Marshal(user); err == nil {
		if err := srv.creds.Set(ctx, repository.KeyUser, string(profile)); err != nil {
			srv.logger.Warn("Failed to persist profile", slog.Any("error", err))
		}
	}

	srv.mu.Lock()
	if srv.state == entity.SessionAuthenticated {
		srv.user = user
	}
	srv.mu.Unlock()

	return nil
}

// Current returns a consistent snapshot of the session.
func (srv *sessionService) Current() entity.Session {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	return srv.snapshotLocked()
}

// TokenExpiry reports the current token's expiry claim, when readable.
func (srv *sessionService) TokenExpiry() (time.Time, bool) {
	srv.mu.RLock()
	token := srv.token
	srv.mu.RUnlock()

	if token == "" {
		return time.Time{}, false
	}

	expiry, err := srv.inspector.Expiry(token)
	if err != nil {
		return time.Time{}, false
	}

	return expiry, true
}

func (srv *sessionService) snapshotLocked() entity.Session {
	var user *entity.User
	if srv.user != nil {
		copied := *srv.user
		user = &copied
	}

	return entity.Session{State: srv.state, User: user, AccessToken: srv.token}
}
