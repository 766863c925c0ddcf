package usecase

import (
	"context"
	"time"

	"studybuddy/internal/domain/entity"
)

// Reminder is a request to show a local notification at a point in time.
type Reminder struct {
	ID     string
	Title  string
	Body   string
	FireAt time.Time
}

// ReminderUsecase schedules device-local notifications and keeps the pending
// trigger bookkeeping. Every operation is best-effort by contract: failures
// are observable only in logs, never propagated to the flow that saved the
// task. Reminders are a convenience, not a guarantee.
type ReminderUsecase interface {
	// Schedule registers a notification and records it as pending. A fire
	// time that is not strictly in the future is silently ignored.
	Schedule(ctx context.Context, reminder Reminder)

	// Cancel removes the platform notification (best-effort) and then
	// unconditionally removes the pending record, so bookkeeping never
	// outlives a failed platform call.
	Cancel(ctx context.Context, id string)

	// CancelAll drops every scheduled notification and the whole pending set.
	CancelAll(ctx context.Context)

	// HandlePress clears the pending record for a notification the user
	// acted on.
	HandlePress(id string)

	// Pending lists the triggers awaiting confirmation.
	Pending(ctx context.Context) ([]entity.PendingTrigger, error)
}
