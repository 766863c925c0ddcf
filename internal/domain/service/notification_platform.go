package service

import (
	"context"
	"time"
)

// NotificationPlatform abstracts the host facility that displays local,
// time-triggered notifications. The reminder usecase treats every call as
// best-effort: platform failures are logged, never propagated to the flow
// that saved the task.
type NotificationPlatform interface {
	// Schedule registers a notification with the given identity to be shown
	// at fireAt.
	Schedule(ctx context.Context, id, title, body string, fireAt time.Time) error

	// Cancel removes a previously scheduled notification. Cancelling an
	// unknown id is not an error.
	Cancel(ctx context.Context, id string) error

	// OnPress registers a handler invoked with the notification id when the
	// user acts on a delivered notification. The returned function removes
	// the handler.
	OnPress(handler func(id string)) (unsubscribe func())
}
