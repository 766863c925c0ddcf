package usecase

import (
	"context"

	"studybuddy/internal/domain/entity"
)

// SignInInput carries the login form fields.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateProfileInput carries editable profile fields.
type UpdateProfileInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// ChangePasswordInput carries the password change form fields.
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// UserUsecase performs the account operations against the backend and keeps
// the session in sync with their outcomes. Validation failures are reported
// before any network call.
type UserUsecase interface {
	SignIn(ctx context.Context, input *SignInInput) (*entity.User, error)
	Register(ctx context.Context, input *RegisterInput) (*entity.User, error)
	UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.User, error)
	ChangePassword(ctx context.Context, input *ChangePasswordInput) error
}
