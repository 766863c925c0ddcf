// Package worker runs the background reconciliation cadence.
package worker

import (
	"context"
	"log/slog"
	"time"

	"studybuddy/config"
	"studybuddy/internal/delivery"
	"studybuddy/internal/usecase"

	"go.uber.org/fx"
)

type reconcileWorker struct {
	cfg       *config.Config
	logger    *slog.Logger
	reconcile usecase.ReconcileUsecase
	stop      chan struct{}
}

// ServerParams holds dependencies for the reconciliation worker.
type ServerParams struct {
	fx.In

	Lc        fx.Lifecycle
	Cfg       *config.Config
	Logger    *slog.Logger
	Reconcile usecase.ReconcileUsecase
}

// NewServer creates the reconciliation worker. Each tick runs a single pass;
// a failed pass is logged and the cadence keeps going, so one bad network
// window never stalls recovery of missed reminders.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	srv := &reconcileWorker{
		cfg:       params.Cfg,
		logger:    params.Logger,
		reconcile: params.Reconcile,
		stop:      make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			close(srv.stop)
			return nil
		},
	})

	return srv, nil
}

// Serve runs reconciliation passes until shutdown. The first pass runs
// immediately so a device that was off past a deadline recovers without
// waiting a full interval.
func (s *reconcileWorker) Serve(ctx context.Context) error {
	interval := s.cfg.Notifications.ReconcileInterval
	s.logger.Info("Starting reconciliation worker", slog.Duration("interval", interval))

	s.runPass(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			s.logger.Info("Stopping reconciliation worker")
			return nil
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

func (s *reconcileWorker) runPass(ctx context.Context) {
	if err := s.reconcile.RunOnce(ctx); err != nil {
		s.logger.Warn("Reconciliation pass failed", slog.Any("error", err))
	}
}
