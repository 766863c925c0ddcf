package impl

import (
	"context"
	"log/slog"

	"studybuddy/internal/domain/entity"
	domainerrors "studybuddy/internal/domain/errors"
	"studybuddy/internal/domain/service"
	"studybuddy/internal/errors"
	"studybuddy/internal/usecase"

	"go.uber.org/fx"
)

const loginDocument = `mutation Login($input: LoginInput!) {
  login(input: $input) {
    token
    refreshToken
    user {
      id
      name
      email
      isVerified
    }
  }
}`

const registerDocument = `mutation Register($input: RegisterInput!) {
  register(input: $input) {
    token
    user {
      id
      name
      email
      isVerified
    }
  }
}`

const updateUserDocument = `mutation UpdateUser($input: UpdateUserInput!) {
  updateUser(input: $input) {
    id
    name
    email
    isVerified
  }
}`

const changePasswordDocument = `mutation ChangePassword($input: ChangePasswordInput!) {
  changePassword(input: $input) {
    success
    message
  }
}`

type userService struct {
	api     service.APIClient
	session usecase.SessionUsecase
	logger  *slog.Logger
}

// UserServiceParams holds dependencies for userService, injected by Fx.
type UserServiceParams struct {
	fx.In

	API     service.APIClient
	Session usecase.SessionUsecase
	Logger  *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		api:     params.API,
		session: params.Session,
		logger:  params.Logger,
	}
}

// authPayload is the shape shared by login and register responses. The
// refresh token is optional; servers that do not rotate one simply omit it.
type authPayload struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	User         *entity.User `json:"user"`
}

func (srv *userService) SignIn(ctx context.Context, input *usecase.SignInInput) (*entity.User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var out struct {
		Login authPayload `json:"login"`
	}
	op := service.Operation{
		Name:      "Login",
		Document:  loginDocument,
		Variables: map[string]any{"input": input},
	}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return nil, errors.Wrap(err, "login failed")
	}
	if out.Login.Token == "" || out.Login.User == nil {
		return nil, errors.Wrap(domainerrors.ErrServerRejected, "login response missing token or user")
	}

	if err := srv.session.Login(ctx, out.Login.Token, out.Login.User, out.Login.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "failed to establish session")
	}

	return out.Login.User, nil
}

func (srv *userService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var out struct {
		Register authPayload `json:"register"`
	}
	op := service.Operation{
		Name:      "Register",
		Document:  registerDocument,
		Variables: map[string]any{"input": input},
	}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return nil, errors.Wrap(err, "registration failed")
	}
	if out.Register.Token == "" || out.Register.User == nil {
		return nil, errors.Wrap(domainerrors.ErrServerRejected, "register response missing token or user")
	}

	if err := srv.session.Login(ctx, out.Register.Token, out.Register.User, out.Register.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "failed to establish session")
	}

	return out.Register.User, nil
}

func (srv *userService) UpdateProfile(ctx context.Context, input *usecase.UpdateProfileInput) (*entity.User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var out struct {
		UpdateUser *entity.User `json:"updateUser"`
	}
	op := service.Operation{
		Name:      "UpdateUser",
		Document:  updateUserDocument,
		Variables: map[string]any{"input": input},
	}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return nil, errors.Wrap(err, "profile update failed")
	}
	if out.UpdateUser == nil {
		return nil, errors.Wrap(domainerrors.ErrServerRejected, "profile update returned no user")
	}

	if err := srv.session.SetUser(ctx, out.UpdateUser); err != nil {
		srv.logger.Warn("Failed to cache updated profile", slog.Any("error", err))
	}

	return out.UpdateUser, nil
}

func (srv *userService) ChangePassword(ctx context.Context, input *usecase.ChangePasswordInput) error {
	if err := validateInput(input); err != nil {
		return err
	}

	var out struct {
		ChangePassword struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		} `json:"changePassword"`
	}
	op := service.Operation{
		Name:      "ChangePassword",
		Document:  changePasswordDocument,
		Variables: map[string]any{"input": input},
	}
	if err := srv.api.Do(ctx, op, &out); err != nil {
		return errors.Wrap(err, "password change failed")
	}
	if !out.ChangePassword.Success {
		return errors.Wrapf(domainerrors.ErrServerRejected, "password change rejected: %s", out.ChangePassword.Message)
	}

	return nil
}
