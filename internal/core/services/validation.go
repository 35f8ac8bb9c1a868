package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

const msgInvalidEmail = "Enter a valid email address."

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkStruct runs the struct tags and records failures in verr under the
// lower-cased field name. Only programming errors are returned.
func checkStruct(verr *domain.ValidationError, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", v, err)
	}
	for _, fe := range fieldErrs {
		verr.Add(strings.ToLower(fe.Field()), fieldMessage(fe))
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return domain.MsgRequired
	case "email":
		return msgInvalidEmail
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}
