package impl

import (
	"context"
	"fmt"
	"log/slog"

	"studybuddy/internal/domain/entity"
	"studybuddy/internal/domain/service"
	"studybuddy/internal/errors"
	"studybuddy/internal/usecase"

	"go.uber.org/fx"
)

const getTasksDocument = `query GetTasks {
  tasks {
    id
    title
    description
    courseId
    dueDate
    dueTime
    completed
    hasReminder
    completedAt
    course {
      id
      name
      color
    }
  }
}`

const createTaskDocument = `mutation CreateTask($input: NewTaskInput!) {
  createTask(input: $input) {
    id
    title
    description
    courseId
    dueDate
    dueTime
    completed
    hasReminder
    course {
      id
      name
      color
    }
  }
}`

const updateTaskDocument = `mutation UpdateTask($input: UpdateTaskInput!) {
  updateTask(input: $input) {
    id
    title
    description
    courseId
    dueDate
    dueTime
    completed
    hasReminder
    course {
      id
      name
      color
    }
  }
}`

const deleteTaskDocument = `mutation DeleteTask($id: ID!) {
  deleteTask(id: $id)
}`

type taskService struct {
	api       service.APIClient
	reminders usecase.ReminderUsecase
	logger    *slog.Logger
}

// TaskServiceParams holds dependencies for taskService, injected by Fx.
type TaskServiceParams struct {
	fx.In

	API       service.APIClient
	Reminders usecase.ReminderUsecase
	Logger    *slog.Logger
}

// NewTaskService is the constructor for taskService.
func NewTaskService(params TaskServiceParams) usecase.TaskUsecase {
	return &taskService{
		api:       params.API,
		reminders: params.Reminders,
		logger:    params.Logger,
	}
}

func (srv *taskService) List(ctx context.Context) ([]*entity.Task, error) {
	var out struct {
		Tasks []*entity.Task `json:"tasks"`
	}
	op := service.Operation{Name: "GetTasks", Document: getTasksDocument}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return nil, errors.Wrap(err, "failed to list tasks")
	}

	return out.Tasks, nil
}

func (srv *taskService) Create(ctx context.Context, input *usecase.CreateTaskInput) (*entity.Task, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var out struct {
		CreateTask *entity.Task `json:"createTask"`
	}
	op := service.Operation{
		Name:      "CreateTask",
		Document:  createTaskDocument,
		Variables: map[string]any{"input": input},
	}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return nil, errors.Wrap(err, "failed to create task")
	}

	srv.syncReminder(ctx, out.CreateTask)

	return out.CreateTask, nil
}

func (srv *taskService) Update(ctx context.Context, input *usecase.UpdateTaskInput) (*entity.Task, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var out struct {
		UpdateTask *entity.Task `json:"updateTask"`
	}
	op := service.Operation{
		Name:      "UpdateTask",
		Document:  updateTaskDocument,
		Variables: map[string]any{"input": input},
	}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return nil, errors.Wrap(err, "failed to update task")
	}

	srv.syncReminder(ctx, out.UpdateTask)

	return out.UpdateTask, nil
}

func (srv *taskService) Delete(ctx context.Context, id string) error {
	var out struct {
		DeleteTask bool `json:"deleteTask"`
	}
	op := service.Operation{
		Name:      "DeleteTask",
		Document:  deleteTaskDocument,
		Variables: map[string]any{"id": id},
	}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return errors.Wrap(err, "failed to delete task")
	}

	srv.reminders.Cancel(ctx, id)

	return nil
}

// syncReminder brings the local reminder in line with the saved task: a live
// reminder flag schedules at the due instant, anything else cancels. Reminder
// outcomes never fail the save; the usecase beneath logs its own failures.
func (srv *taskService) syncReminder(ctx context.Context, task *entity.Task) {
	if task == nil {
		return
	}

	if !task.HasReminder || task.Completed {
		srv.reminders.Cancel(ctx, task.ID)
		return
	}

	dueAt, err := task.DueAt()
	if err != nil {
		srv.logger.Warn("Task has unparseable due date, skipping reminder",
			slog.String("taskID", task.ID), slog.Any("error", err))
		return
	}

	srv.reminders.Schedule(ctx, usecase.Reminder{
		ID:     task.ID,
		Title:  "Task Reminder",
		Body:   fmt.Sprintf("%s is due", task.Title),
		FireAt: dueAt,
	})
}
