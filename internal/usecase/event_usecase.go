package usecase

import (
	"context"

	"studybuddy/internal/domain/entity"
)

// CreateEventInput mirrors the backend's NewEventInput.
type CreateEventInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	CourseID    string `json:"courseId" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime     string `json:"endTime" validate:"omitempty,datetime=15:04"`
	Type        string `json:"type" validate:"required,oneof=class exam deadline other"`
}

// EventUsecase manages calendar events.
type EventUsecase interface {
	List(ctx context.Context) ([]*entity.Event, error)
	Create(ctx context.Context, input *CreateEventInput) (*entity.Event, error)
}
