package runtime

import (
	"contact-lab/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type groupInput struct {
	Name string `validate:"required,max=256"`
}

type contactInput struct {
	AccountID string `validate:"required"`
	Address   string `validate:"required,max=1024"`
}

type displayNameInput struct {
	Name string `validate:"max=1024"`
}

func validateInput(op, subject string, input any) error {
	if err := validate.Struct(input); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, op, subject, err)
	}
	return nil
}
