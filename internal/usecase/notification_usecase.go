package usecase

import (
	"context"

	"studybuddy/internal/domain/entity"
)

// NotificationUsecase reads and acknowledges server-side notifications.
// These are distinct from the device-local reminders managed by
// ReminderUsecase.
type NotificationUsecase interface {
	List(ctx context.Context) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id string) error
}
