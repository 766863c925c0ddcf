package usecase

import (
	"context"

	"studybuddy/internal/domain/entity"
)

// CreateCourseInput mirrors the backend's NewCourseInput.
type CreateCourseInput struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"required"`
}

// CourseUsecase manages the user's courses.
type CourseUsecase interface {
	List(ctx context.Context) ([]*entity.Course, error)
	Create(ctx context.Context, input *CreateCourseInput) (*entity.Course, error)
}
