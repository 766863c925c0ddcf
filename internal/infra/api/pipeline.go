package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"studybuddy/config"
	domainerrors "studybuddy/internal/domain/errors"
	"studybuddy/internal/domain/repository"
	"studybuddy/internal/domain/service"
	"studybuddy/internal/infra/broadcast"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Pipeline is the single shared request path for every GraphQL operation.
// Each attempt re-reads the access token from the credential store, so a
// replay after a refresh automatically picks up the fresh token.
//
// Refresh coordination is single-flight: the first operation to hit an auth
// failure performs the refresh; concurrent failures queue behind it and are
// resumed exactly once, in FIFO order, with the refresh outcome. A failed
// refresh purges the stored credentials and broadcasts logout.
type Pipeline struct {
	transport      *Transport
	creds          repository.CredentialRepository
	logout         *broadcast.LogoutBroadcast
	logger         *slog.Logger
	refreshURL     string
	refreshClient  *http.Client
	maxAuthRetries int

	mu         sync.Mutex
	refreshing bool
	waiters    []chan error
}

// PipelineParams holds dependencies for the request pipeline, injected by Fx.
type PipelineParams struct {
	fx.In

	Config *config.Config
	Creds  repository.CredentialRepository
	Logout *broadcast.LogoutBroadcast
	Logger *slog.Logger
}

// NewPipeline is the constructor for Pipeline. One instance serves the whole
// process.
func NewPipeline(params PipelineParams) *Pipeline {
	apiCfg := params.Config.API

	return &Pipeline{
		transport:      NewTransport(apiCfg.BaseURL+apiCfg.GraphQLPath, apiCfg.RequestTimeout),
		creds:          params.Creds,
		logout:         params.Logout,
		logger:         params.Logger,
		refreshURL:     apiCfg.BaseURL + apiCfg.RefreshPath,
		refreshClient:  &http.Client{Timeout: apiCfg.RefreshTimeout},
		maxAuthRetries: apiCfg.MaxAuthRetries,
	}
}

// NewAPIClient exposes the pipeline under its domain contract.
func NewAPIClient(p *Pipeline) service.APIClient {
	return p
}

// Do executes the operation through the full pipeline: bearer attachment,
// transport, auth-failure detection, refresh, replay. A logical operation
// rides through at most maxAuthRetries refresh cycles before its auth
// failure is surfaced; that ceiling is what stops a misconfigured server
// that rejects freshly minted tokens from looping forever.
func (p *Pipeline) Do(ctx context.Context, op service.Operation, out any) error {
	for attempt := 0; ; attempt++ {
		err := p.attempt(ctx, op, out)
		if err == nil || !isAuthFailure(err) {
			return err
		}

		if attempt >= p.maxAuthRetries {
			p.logger.Warn("Auth retry ceiling reached",
				slog.String("operation", op.Name),
				slog.Int("attempts", attempt+1))

			return errors.Wrapf(domainerrors.ErrUnauthenticated, "operation %s rejected after token refresh", op.Name)
		}

		if refreshErr := p.awaitRefresh(ctx); refreshErr != nil {
			return refreshErr
		}
	}
}

// attempt runs the auth-attachment and transport stages once.
func (p *Pipeline) attempt(ctx context.Context, op service.Operation, out any) error {
	token, err := p.creds.Get(ctx, repository.KeyAccessToken)
	if err != nil && !errors.Is(err, repository.ErrKeyNotFound) {
		// Storage failure reads as "no token"; the server decides what that means.
		p.logger.Warn("Failed to read access token", slog.Any("error", err))
		token = ""
	}

	return p.transport.RoundTrip(ctx, op, token, out)
}

// awaitRefresh either performs the refresh (first caller) or waits for the
// in-flight one. Every waiter is resumed exactly once with the shared
// outcome; nil means a fresh token is in the store and the caller should
// replay its operation.
func (p *Pipeline) awaitRefresh(ctx context.Context) error {
	p.mu.Lock()
	if p.refreshing {
		waiter := make(chan error, 1)
		p.waiters = append(p.waiters, waiter)
		p.mu.Unlock()

		select {
		case err := <-waiter:
			return err
		case <-ctx.Done():
			// The queued continuation still receives its buffered outcome;
			// only this caller stops waiting for it.
			return errors.WithStack(ctx.Err())
		}
	}
	p.refreshing = true
	p.mu.Unlock()

	err := p.refresh(ctx)

	p.mu.Lock()
	waiters := p.waiters
	p.waiters = nil
	p.refreshing = false
	p.mu.Unlock()

	for _, waiter := range waiters {
		waiter <- err
	}

	return err
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// refresh exchanges the stored refresh token for a new access token. Any
// outcome other than HTTP 200 is irrecoverable: credentials are purged and
// logout is broadcast. A transient 500 on the refresh endpoint forces logout
// exactly like a rejected token; the backend does not distinguish them.
func (p *Pipeline) refresh(ctx context.Context) error {
	refreshToken, err := p.creds.Get(ctx, repository.KeyRefreshToken)
	if err != nil || refreshToken == "" {
		p.logger.Info("No refresh token available, forcing logout")
		p.failRefresh(ctx)

		return errors.Wrap(domainerrors.ErrRefreshFailed, "no refresh token stored")
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		p.failRefresh(ctx)

		return errors.Wrap(domainerrors.ErrRefreshFailed, "failed to encode refresh request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.refreshURL, bytes.NewReader(body))
	if err != nil {
		p.failRefresh(ctx)

		return errors.Wrap(domainerrors.ErrRefreshFailed, "failed to build refresh request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.refreshClient.Do(req)
	if err != nil {
		p.logger.Error("Refresh call failed", slog.Any("error", err))
		p.failRefresh(ctx)

		return errors.Wrap(domainerrors.ErrRefreshFailed, "refresh request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("Refresh rejected", slog.Int("status", resp.StatusCode))
		p.failRefresh(ctx)

		return errors.Wrapf(domainerrors.ErrRefreshFailed, "refresh returned status %d", resp.StatusCode)
	}

	var payload refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Token == "" {
		p.logger.Error("Refresh response unreadable", slog.Any("error", err))
		p.failRefresh(ctx)

		return errors.Wrap(domainerrors.ErrRefreshFailed, "failed to decode refresh response")
	}

	if err := p.creds.Set(ctx, repository.KeyAccessToken, payload.Token); err != nil {
		// Without the new token persisted, replays would reuse the dead one.
		p.failRefresh(ctx)

		return errors.Wrap(domainerrors.ErrRefreshFailed, "failed to persist refreshed token")
	}
	if payload.RefreshToken != "" {
		if err := p.creds.Set(ctx, repository.KeyRefreshToken, payload.RefreshToken); err != nil {
			p.logger.Warn("Failed to persist rotated refresh token", slog.Any("error", err))
		}
	}

	p.logger.Info("Access token refreshed")

	return nil
}

// failRefresh purges the credential triple and broadcasts logout. Storage
// errors during the purge are logged and otherwise ignored; the broadcast
// still clears the in-memory session.
func (p *Pipeline) failRefresh(ctx context.Context) {
	keys := []string{repository.KeyAccessToken, repository.KeyRefreshToken, repository.KeyUser}
	if err := p.creds.Remove(ctx, keys...); err != nil {
		p.logger.Warn("Failed to purge credentials", slog.Any("error", err))
	}

	p.logout.Publish()
}

// isAuthFailure reports whether err is a GraphQL-level authentication
// failure eligible for the refresh cycle.
func isAuthFailure(err error) bool {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Unauthenticated()
	}

	return false
}
