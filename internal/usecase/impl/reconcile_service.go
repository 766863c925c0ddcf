package impl

import (
	"context"
	"log/slog"
	"time"

	"studybuddy/config"
	"studybuddy/internal/domain/repository"
	"studybuddy/internal/domain/service"
	"studybuddy/internal/errors"
	"studybuddy/internal/usecase"

	"go.uber.org/fx"
)

// reconcileService is one pass of the missed-reminder recovery protocol:
// triggers that should have fired more than the staleness window ago are
// handed to the server's email fallback and then cleared locally. Clearing
// happens whenever the fallback call goes through, regardless of the
// response; a transport failure keeps the triggers for the next pass.
type reconcileService struct {
	triggers  repository.TriggerRepository
	creds     repository.CredentialRepository
	fallback  service.FallbackNotifier
	staleness time.Duration
	logger    *slog.Logger
}

// ReconcileServiceParams holds dependencies for reconcileService, injected by Fx.
type ReconcileServiceParams struct {
	fx.In

	Config   *config.Config
	Triggers repository.TriggerRepository
	Creds    repository.CredentialRepository
	Fallback service.FallbackNotifier
	Logger   *slog.Logger
}

// NewReconcileService is the constructor for reconcileService.
func NewReconcileService(params ReconcileServiceParams) usecase.ReconcileUsecase {
	return &reconcileService{
		triggers:  params.Triggers,
		creds:     params.Creds,
		fallback:  params.Fallback,
		staleness: params.Config.Notifications.StalenessWindow,
		logger:    params.Logger,
	}
}

// RunOnce executes a single reconciliation pass. It never panics; the host
// scheduler must always observe the pass as completed so the cadence keeps
// ticking.
func (srv *reconcileService) RunOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("reconciliation panicked: %v", r)
		}
	}()

	pending, err := srv.triggers.List(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list pending triggers")
	}

	now := time.Now()
	var overdue []string
	for _, trigger := range pending {
		if trigger.OverdueBy(now) > srv.staleness {
			overdue = append(overdue, trigger.ID)
		}
	}
	if len(overdue) == 0 {
		return nil
	}

	token, err := srv.creds.Get(ctx, repository.KeyAccessToken)
	if err != nil || token == "" {
		// Unauthenticated devices skip the network step; the triggers stay
		// pending until a session exists.
		srv.logger.Debug("Skipping fallback check without a session",
			slog.Int("overdue", len(overdue)))
		return nil
	}

	if err := srv.fallback.CheckEmailFallback(ctx, token); err != nil {
		return errors.Wrap(err, "email fallback check failed")
	}

	if err := srv.triggers.Remove(ctx, overdue...); err != nil {
		return errors.Wrap(err, "failed to clear reconciled triggers")
	}

	srv.logger.Info("Reconciled stale reminders", slog.Int("cleared", len(overdue)))

	return nil
}
