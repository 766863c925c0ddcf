package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"studybuddy/config"
	domainerrors "studybuddy/internal/domain/errors"
	"studybuddy/internal/domain/repository"
	"studybuddy/internal/domain/service"
	"studybuddy/internal/infra/broadcast"
	"studybuddy/internal/infra/storage"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOp = service.Operation{
	Name:     "GetTasks",
	Document: `query GetTasks { tasks { id } }`,
}

type pipelineFixture struct {
	pipeline *Pipeline
	creds    repository.CredentialRepository
	logout   *broadcast.LogoutBroadcast
	server   *httptest.Server
}

func newPipelineFixture(t *testing.T, graphql echo.HandlerFunc, refresh echo.HandlerFunc) *pipelineFixture {
	t.Helper()

	e := echo.New()
	e.HideBanner = true
	e.POST("/query", graphql)
	e.POST("/refresh-token", refresh)

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.API.BaseURL = server.URL
	cfg.API.GraphQLPath = "/query"
	cfg.API.RefreshPath = "/refresh-token"
	cfg.API.RequestTimeout = 5 * time.Second
	cfg.API.RefreshTimeout = 5 * time.Second
	cfg.API.MaxAuthRetries = 2

	logout := broadcast.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pipeline := NewPipeline(PipelineParams{
		Config: cfg,
		Creds:  store,
		Logout: logout,
		Logger: logger,
	})

	return &pipelineFixture{pipeline: pipeline, creds: store, logout: logout, server: server}
}

func unauthorizedBody() map[string]any {
	return map[string]any{
		"errors": []map[string]any{
			{"message": "unauthorized", "extensions": map[string]any{"code": "UNAUTHENTICATED"}},
		},
	}
}

func dataBody() map[string]any {
	return map[string]any{"data": map[string]any{"tasks": []any{}}}
}

func TestPipeline_AttachesBearerToken(t *testing.T) {
	var gotAuth atomic.Value
	fx := newPipelineFixture(t,
		func(c echo.Context) error {
			gotAuth.Store(c.Request().Header.Get("Authorization"))

			return c.JSON(http.StatusOK, dataBody())
		},
		func(c echo.Context) error { return c.NoContent(http.StatusInternalServerError) },
	)

	ctx := context.Background()
	require.NoError(t, fx.creds.Set(ctx, repository.KeyAccessToken, "tok-1"))

	require.NoError(t, fx.pipeline.Do(ctx, testOp, nil))
	assert.Equal(t, "Bearer tok-1", gotAuth.Load())
}

func TestPipeline_SingleFlightRefresh(t *testing.T) {
	const concurrency = 8

	var refreshCalls atomic.Int64
	var oldTokenArrivals sync.WaitGroup
	oldTokenArrivals.Add(concurrency)

	fx := newPipelineFixture(t,
		func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "Bearer fresh" {
				return c.JSON(http.StatusOK, dataBody())
			}
			// Hold every stale-token request until all of them have arrived,
			// so they all fail while no refresh is in flight yet.
			oldTokenArrivals.Done()
			oldTokenArrivals.Wait()

			return c.JSON(http.StatusOK, unauthorizedBody())
		},
		func(c echo.Context) error {
			refreshCalls.Add(1)
			// Keep the refresh in flight long enough for every failed
			// operation to reach the coordinator and queue behind it.
			time.Sleep(500 * time.Millisecond)

			return c.JSON(http.StatusOK, map[string]string{"token": "fresh"})
		},
	)

	ctx := context.Background()
	require.NoError(t, fx.creds.Set(ctx, repository.KeyAccessToken, "stale"))
	require.NoError(t, fx.creds.Set(ctx, repository.KeyRefreshToken, "refresh-1"))

	var wg sync.WaitGroup
	results := make([]error, concurrency)
	for i := range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = fx.pipeline.Do(ctx, testOp, nil)
		}()
	}
	wg.Wait()

	for i, err := range results {
		assert.NoError(t, err, "operation %d", i)
	}
	assert.Equal(t, int64(1), refreshCalls.Load())

	token, err := fx.creds.Get(ctx, repository.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
}

func TestPipeline_RefreshFailureFailsAllQueuedAndBroadcastsLogout(t *testing.T) {
	const concurrency = 4

	var refreshCalls atomic.Int64
	var arrivals sync.WaitGroup
	arrivals.Add(concurrency)

	fx := newPipelineFixture(t,
		func(c echo.Context) error {
			arrivals.Done()
			arrivals.Wait()

			return c.JSON(http.StatusOK, unauthorizedBody())
		},
		func(c echo.Context) error {
			refreshCalls.Add(1)
			time.Sleep(500 * time.Millisecond)

			return c.NoContent(http.StatusUnauthorized)
		},
	)

	ctx := context.Background()
	require.NoError(t, fx.creds.Set(ctx, repository.KeyAccessToken, "stale"))
	require.NoError(t, fx.creds.Set(ctx, repository.KeyRefreshToken, "rejected"))
	require.NoError(t, fx.creds.Set(ctx, repository.KeyUser, `{"id":"u1"}`))

	var logoutCount atomic.Int64
	fx.logout.Subscribe(func() { logoutCount.Add(1) })

	var wg sync.WaitGroup
	results := make([]error, concurrency)
	for i := range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = fx.pipeline.Do(ctx, testOp, nil)
		}()
	}
	wg.Wait()

	for i, err := range results {
		assert.ErrorIs(t, err, domainerrors.ErrRefreshFailed, "operation %d", i)
	}
	assert.Equal(t, int64(1), refreshCalls.Load())
	assert.Equal(t, int64(1), logoutCount.Load())

	for _, key := range []string{repository.KeyAccessToken, repository.KeyRefreshToken, repository.KeyUser} {
		_, err := fx.creds.Get(ctx, key)
		assert.ErrorIs(t, err, repository.ErrKeyNotFound, "key %s should be purged", key)
	}
}

func TestPipeline_MissingRefreshTokenForcesLogout(t *testing.T) {
	fx := newPipelineFixture(t,
		func(c echo.Context) error { return c.JSON(http.StatusOK, unauthorizedBody()) },
		func(c echo.Context) error {
			t.Error("refresh endpoint must not be called without a refresh token")

			return c.NoContent(http.StatusInternalServerError)
		},
	)

	ctx := context.Background()
	require.NoError(t, fx.creds.Set(ctx, repository.KeyAccessToken, "stale"))

	var loggedOut atomic.Bool
	fx.logout.Subscribe(func() { loggedOut.Store(true) })

	err := fx.pipeline.Do(ctx, testOp, nil)

	assert.ErrorIs(t, err, domainerrors.ErrRefreshFailed)
	assert.True(t, loggedOut.Load())
}

func TestPipeline_RetryCeilingBoundsRefreshCycles(t *testing.T) {
	var refreshCalls atomic.Int64
	fx := newPipelineFixture(t,
		// The server rejects every token, fresh or not.
		func(c echo.Context) error { return c.JSON(http.StatusOK, unauthorizedBody()) },
		func(c echo.Context) error {
			refreshCalls.Add(1)

			return c.JSON(http.StatusOK, map[string]string{"token": "fresh"})
		},
	)

	ctx := context.Background()
	require.NoError(t, fx.creds.Set(ctx, repository.KeyAccessToken, "stale"))
	require.NoError(t, fx.creds.Set(ctx, repository.KeyRefreshToken, "refresh-1"))

	err := fx.pipeline.Do(ctx, testOp, nil)

	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	assert.Equal(t, int64(2), refreshCalls.Load())
}

func TestPipeline_NonAuthErrorsSurfaceWithoutRefresh(t *testing.T) {
	fx := newPipelineFixture(t,
		func(c echo.Context) error {
			return c.JSON(http.StatusOK, map[string]any{
				"errors": []map[string]any{{"message": "title is required"}},
			})
		},
		func(c echo.Context) error {
			t.Error("refresh endpoint must not be called for non-auth errors")

			return c.NoContent(http.StatusInternalServerError)
		},
	)

	ctx := context.Background()
	require.NoError(t, fx.creds.Set(ctx, repository.KeyAccessToken, "tok"))

	err := fx.pipeline.Do(ctx, testOp, nil)

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "title is required", opErr.Error())
}

func TestPipeline_DecodesDataPayload(t *testing.T) {
	fx := newPipelineFixture(t,
		func(c echo.Context) error {
			return c.JSON(http.StatusOK, map[string]any{
				"data": map[string]any{"tasks": []map[string]any{{"id": "t1"}}},
			})
		},
		func(c echo.Context) error { return c.NoContent(http.StatusInternalServerError) },
	)

	ctx := context.Background()
	require.NoError(t, fx.creds.Set(ctx, repository.KeyAccessToken, "tok"))

	var out struct {
		Tasks []struct {
			ID string `json:"id"`
		} `json:"tasks"`
	}
	require.NoError(t, fx.pipeline.Do(ctx, testOp, &out))
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, "t1", out.Tasks[0].ID)
}
