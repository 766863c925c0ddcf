package usecase

import (
	"context"

	"studybuddy/internal/domain/entity"
)

// CreateTaskInput mirrors the backend's NewTaskInput.
type CreateTaskInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	CourseID    string `json:"courseId" validate:"required"`
	DueDate     string `json:"dueDate" validate:"required,datetime=2006-01-02"`
	DueTime     string `json:"dueTime" validate:"omitempty,datetime=15:04"`
	HasReminder bool   `json:"hasReminder"`
}

// UpdateTaskInput mirrors the backend's UpdateTaskInput.
type UpdateTaskInput struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	CourseID    string `json:"courseId" validate:"required"`
	DueDate     string `json:"dueDate" validate:"required,datetime=2006-01-02"`
	DueTime     string `json:"dueTime" validate:"omitempty,datetime=15:04"`
	Completed   bool   `json:"completed"`
	HasReminder bool   `json:"hasReminder"`
}

// TaskUsecase manages study tasks. Saving a task with a reminder schedules a
// local notification at the due instant; completing, deleting, or disabling
// the reminder cancels it. Reminder bookkeeping is best-effort and never
// fails the save itself.
type TaskUsecase interface {
	List(ctx context.Context) ([]*entity.Task, error)
	Create(ctx context.Context, input *CreateTaskInput) (*entity.Task, error)
	Update(ctx context.Context, input *UpdateTaskInput) (*entity.Task, error)
	Delete(ctx context.Context, id string) error
}
