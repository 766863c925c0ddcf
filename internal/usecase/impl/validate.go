package impl

import (
	"github.com/go-playground/validator/v10"

	domainerrors "studybuddy/internal/domain/errors"
	"studybuddy/internal/errors"
)

// validate is shared by every service; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput checks an input struct against its validate tags and maps
// failures onto the domain validation error, naming the first bad field so
// the message is actionable.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errors.Wrapf(domainerrors.ErrValidationFailed, "invalid field %s", fieldErrs[0].Field())
	}

	return errors.Wrap(domainerrors.ErrValidationFailed, "invalid input")
}
