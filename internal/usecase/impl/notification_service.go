package impl

import (
	"context"
	"log/slog"

	"studybuddy/internal/domain/entity"
	"studybuddy/internal/domain/service"
	"studybuddy/internal/errors"
	"studybuddy/internal/usecase"

	"go.uber.org/fx"
)

const getNotificationsDocument = `query GetNotifications {
  notifications {
    id
    title
    message
    read
    createdAt
  }
}`

const markNotificationAsReadDocument = `mutation MarkNotificationAsRead($id: ID!) {
  markNotificationAsRead(id: $id) {
    id
    read
  }
}`

type notificationService struct {
	api    service.APIClient
	logger *slog.Logger
}

// NotificationServiceParams holds dependencies for notificationService,
// injected by Fx.
type NotificationServiceParams struct {
	fx.In

	API    service.APIClient
	Logger *slog.Logger
}

// NewNotificationService is the constructor for notificationService.
func NewNotificationService(params NotificationServiceParams) usecase.NotificationUsecase {
	return &notificationService{api: params.API, logger: params.Logger}
}

func (srv *notificationService) List(ctx context.Context) ([]*entity.Notification, error) {
	var out struct {
		Notifications []*entity.Notification `json:"notifications"`
	}
	op := service.Operation{Name: "GetNotifications", Document: getNotificationsDocument}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}

	return out.Notifications, nil
}

func (srv *notificationService) MarkRead(ctx context.Context, id string) error {
	var out struct {
		MarkNotificationAsRead *entity.Notification `json:"markNotificationAsRead"`
	}
	op := service.Operation{
		Name:      "MarkNotificationAsRead",
		Document:  markNotificationAsReadDocument,
		Variables: map[string]any{"id": id},
	}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return errors.Wrap(err, "failed to mark notification as read")
	}

	return nil
}
