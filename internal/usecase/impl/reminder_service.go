package impl

import (
	"context"
	"log/slog"
	"time"

	"studybuddy/internal/domain/entity"
	"studybuddy/internal/domain/repository"
	"studybuddy/internal/domain/service"
	"studybuddy/internal/usecase"

	"go.uber.org/fx"
)

// reminderService schedules device-local notifications and keeps the pending
// trigger bookkeeping behind them. Everything here is best-effort: a reminder
// is a convenience layered on a task save, so failures are logged and
// swallowed rather than propagated to the caller.
type reminderService struct {
	platform service.NotificationPlatform
	triggers repository.TriggerRepository
	logger   *slog.Logger
}

// ReminderServiceParams holds dependencies for reminderService, injected by Fx.
type ReminderServiceParams struct {
	fx.In

	Platform service.NotificationPlatform
	Triggers repository.TriggerRepository
	Logger   *slog.Logger
}

// NewReminderService is the constructor for reminderService. It registers
// itself for notification-press events so an acknowledged reminder clears its
// own pending record.
func NewReminderService(params ReminderServiceParams) usecase.ReminderUsecase {
	srv := &reminderService{
		platform: params.Platform,
		triggers: params.Triggers,
		logger:   params.Logger,
	}

	params.Platform.OnPress(srv.HandlePress)

	return srv
}

// Schedule registers the notification and, only once registration succeeded,
// records the pending trigger. A fire time at or before now is a deliberate
// no-op: reminders are never scheduled in the past.
func (srv *reminderService) Schedule(ctx context.Context, reminder usecase.Reminder) {
	if !reminder.FireAt.After(time.Now()) {
		srv.logger.Debug("Skipping reminder with past fire time",
			slog.String("id", reminder.ID), slog.Time("fireAt", reminder.FireAt))
		return
	}

	if err := srv.platform.Schedule(ctx, reminder.ID, reminder.Title, reminder.Body, reminder.FireAt); err != nil {
		srv.logger.Warn("Failed to schedule reminder",
			slog.String("id", reminder.ID), slog.Any("error", err))
		return
	}

	trigger := entity.PendingTrigger{ID: reminder.ID, Timestamp: reminder.FireAt.UnixMilli()}
	if err := srv.triggers.Append(ctx, trigger); err != nil {
		srv.logger.Warn("Failed to record pending trigger",
			slog.String("id", reminder.ID), slog.Any("error", err))
		return
	}

	srv.logger.Info("Scheduled reminder",
		slog.String("id", reminder.ID), slog.Time("fireAt", reminder.FireAt))
}

// Cancel removes the platform notification and then the pending record. The
// record goes unconditionally so bookkeeping never outlives a notification
// the platform already lost track of.
func (srv *reminderService) Cancel(ctx context.Context, id string) {
	if err := srv.platform.Cancel(ctx, id); err != nil {
		srv.logger.Warn("Failed to cancel platform notification",
			slog.String("id", id), slog.Any("error", err))
	}

	if err := srv.triggers.Remove(ctx, id); err != nil {
		srv.logger.Warn("Failed to remove pending trigger",
			slog.String("id", id), slog.Any("error", err))
	}
}

// CancelAll drops every scheduled notification and the whole pending set,
// used when the session ends.
func (srv *reminderService) CancelAll(ctx context.Context) {
	pending, err := srv.triggers.List(ctx)
	if err != nil {
		srv.logger.Warn("Failed to list pending triggers", slog.Any("error", err))
	}
	for _, trigger := range pending {
		if err := srv.platform.Cancel(ctx, trigger.ID); err != nil {
			srv.logger.Warn("Failed to cancel platform notification",
				slog.String("id", trigger.ID), slog.Any("error", err))
		}
	}

	if err := srv.triggers.Clear(ctx); err != nil {
		srv.logger.Warn("Failed to clear pending triggers", slog.Any("error", err))
	}
}

// HandlePress clears the pending record for a reminder the user acted on.
func (srv *reminderService) HandlePress(id string) {
	ctx := context.Background()
	if err := srv.triggers.Remove(ctx, id); err != nil {
		srv.logger.Warn("Failed to clear pressed trigger",
			slog.String("id", id), slog.Any("error", err))
		return
	}

	srv.logger.Info("Reminder acknowledged", slog.String("id", id))
}

// Pending lists the triggers awaiting confirmation.
func (srv *reminderService) Pending(ctx context.Context) ([]entity.PendingTrigger, error) {
	return srv.triggers.List(ctx)
}
