package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	domainerrors "studybuddy/internal/domain/errors"
	"studybuddy/internal/infra/storage"
	"studybuddy/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskFixture(t *testing.T) (usecase.TaskUsecase, *fakeAPI, *fakePlatform) {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	triggers := storage.NewTriggerRepository(storage.NewCredentialRepository(store))
	platform := newFakePlatform()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reminders := NewReminderService(ReminderServiceParams{
		Platform: platform,
		Triggers: triggers,
		Logger:   logger,
	})

	api := newFakeAPI()
	tasks := NewTaskService(TaskServiceParams{
		API:       api,
		Reminders: reminders,
		Logger:    logger,
	})

	return tasks, api, platform
}

func TestTaskCreateSchedulesReminder(t *testing.T) {
	tasks, api, platform := newTaskFixture(t)
	dueDate := time.Now().Add(48 * time.Hour).Format("2006-01-02")
	api.responses["CreateTask"] = `{"createTask":{"id":"t1","title":"Essay","courseId":"c1","dueDate":"` + dueDate + `","dueTime":"18:30","hasReminder":true}}`

	got, err := tasks.Create(context.Background(), &usecase.CreateTaskInput{
		Title:       "Essay",
		CourseID:    "c1",
		DueDate:     dueDate,
		DueTime:     "18:30",
		HasReminder: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, []string{"t1"}, platform.scheduledIDs())
}

func TestTaskCreateWithoutReminderSchedulesNothing(t *testing.T) {
	tasks, api, platform := newTaskFixture(t)
	dueDate := time.Now().Add(48 * time.Hour).Format("2006-01-02")
	api.responses["CreateTask"] = `{"createTask":{"id":"t1","title":"Essay","courseId":"c1","dueDate":"` + dueDate + `","hasReminder":false}}`

	_, err := tasks.Create(context.Background(), &usecase.CreateTaskInput{
		Title:    "Essay",
		CourseID: "c1",
		DueDate:  dueDate,
	})
	require.NoError(t, err)
	assert.Empty(t, platform.scheduledIDs())
}

func TestTaskCreateValidationSkipsNetwork(t *testing.T) {
	tasks, api, _ := newTaskFixture(t)

	_, err := tasks.Create(context.Background(), &usecase.CreateTaskInput{
		Title:   "Essay",
		DueDate: "not-a-date",
	})

	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.Zero(t, api.calls("CreateTask"))
}

func TestTaskUpdateCompletedCancelsReminder(t *testing.T) {
	tasks, api, platform := newTaskFixture(t)
	dueDate := time.Now().Add(48 * time.Hour).Format("2006-01-02")
	api.responses["CreateTask"] = `{"createTask":{"id":"t1","title":"Essay","courseId":"c1","dueDate":"` + dueDate + `","dueTime":"18:30","hasReminder":true}}`
	api.responses["UpdateTask"] = `{"updateTask":{"id":"t1","title":"Essay","courseId":"c1","dueDate":"` + dueDate + `","dueTime":"18:30","completed":true,"hasReminder":true}}`

	ctx := context.Background()
	_, err := tasks.Create(ctx, &usecase.CreateTaskInput{
		Title: "Essay", CourseID: "c1", DueDate: dueDate, DueTime: "18:30", HasReminder: true,
	})
	require.NoError(t, err)

	_, err = tasks.Update(ctx, &usecase.UpdateTaskInput{
		ID: "t1", Title: "Essay", CourseID: "c1", DueDate: dueDate, DueTime: "18:30", Completed: true, HasReminder: true,
	})
	require.NoError(t, err)

	assert.Empty(t, platform.scheduledIDs())
}

func TestTaskDeleteCancelsReminder(t *testing.T) {
	tasks, api, platform := newTaskFixture(t)
	dueDate := time.Now().Add(48 * time.Hour).Format("2006-01-02")
	api.responses["CreateTask"] = `{"createTask":{"id":"t1","title":"Essay","courseId":"c1","dueDate":"` + dueDate + `","dueTime":"18:30","hasReminder":true}}`
	api.responses["DeleteTask"] = `{"deleteTask":true}`

	ctx := context.Background()
	_, err := tasks.Create(ctx, &usecase.CreateTaskInput{
		Title: "Essay", CourseID: "c1", DueDate: dueDate, DueTime: "18:30", HasReminder: true,
	})
	require.NoError(t, err)

	require.NoError(t, tasks.Delete(ctx, "t1"))
	assert.Empty(t, platform.scheduledIDs())
}

func TestTaskList(t *testing.T) {
	tasks, api, _ := newTaskFixture(t)
	api.responses["GetTasks"] = `{"tasks":[{"id":"t1","title":"Essay","course":{"id":"c1","name":"History","color":"#f00"}}]}`

	got, err := tasks.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Essay", got[0].Title)
	require.NotNil(t, got[0].Course)
	assert.Equal(t, "History", got[0].Course.Name)
}
