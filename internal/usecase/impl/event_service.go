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

const getEventsDocument = `query GetEvents {
  events {
    id
    title
    description
    courseId
    date
    startTime
    endTime
    type
    course {
      id
      name
      color
    }
  }
}`

const createEventDocument = `mutation CreateEvent($input: NewEventInput!) {
  createEvent(input: $input) {
    id
    title
    description
    courseId
    date
    startTime
    endTime
    type
    course {
      id
      name
      color
    }
  }
}`

type eventService struct {
	api    service.APIClient
	logger *slog.Logger
}

// EventServiceParams holds dependencies for eventService, injected by Fx.
type EventServiceParams struct {
	fx.In

	API    service.APIClient
	Logger *slog.Logger
}

// NewEventService is the constructor for eventService.
func NewEventService(params EventServiceParams) usecase.EventUsecase {
	return &eventService{api: params.API, logger: params.Logger}
}

func (srv *eventService) List(ctx context.Context) ([]*entity.Event, error) {
	var out struct {
		Events []*entity.Event `json:"events"`
	}
	op := service.Operation{Name: "GetEvents", Document: getEventsDocument}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}

	return out.Events, nil
}

func (srv *eventService) Create(ctx context.Context, input *usecase.CreateEventInput) (*entity.Event, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var out struct {
		CreateEvent *entity.Event `json:"createEvent"`
	}
	op := service.Operation{
		Name:      "CreateEvent",
		Document:  createEventDocument,
		Variables: map[string]any{"input": input},
	}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return nil, errors.Wrap(err, "failed to create event")
	}

	return out.CreateEvent, nil
}
