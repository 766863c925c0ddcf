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

const getCoursesDocument = `query GetCourses {
  courses {
    id
    name
    color
    totalTasks
    completedTasks
  }
}`

const createCourseDocument = `mutation CreateCourse($input: NewCourseInput!) {
  createCourse(input: $input) {
    id
    name
    color
    totalTasks
    completedTasks
  }
}`

type courseService struct {
	api    service.APIClient
	logger *slog.Logger
}

// CourseServiceParams holds dependencies for courseService, injected by Fx.
type CourseServiceParams struct {
	fx.In

	API    service.APIClient
	Logger *slog.Logger
}

// NewCourseService is the constructor for courseService.
func NewCourseService(params CourseServiceParams) usecase.CourseUsecase {
	return &courseService{api: params.API, logger: params.Logger}
}

func (srv *courseService) List(ctx context.Context) ([]*entity.Course, error) {
	var out struct {
		Courses []*entity.Course `json:"courses"`
	}
	op := service.Operation{Name: "GetCourses", Document: getCoursesDocument}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return nil, errors.Wrap(err, "failed to list courses")
	}

	return out.Courses, nil
}

func (srv *courseService) Create(ctx context.Context, input *usecase.CreateCourseInput) (*entity.Course, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var out struct {
		CreateCourse *entity.Course `json:"createCourse"`
	}
	op := service.Operation{
		Name:      "CreateCourse",
		Document:  createCourseDocument,
		Variables: map[string]any{"input": input},
	}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return nil, errors.Wrap(err, "failed to create course")
	}

	return out.CreateCourse, nil
}
