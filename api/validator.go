package api

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AdaptFieldValidationError maps generic validation error to human-readable error
// messages, to be returned in the response.
func AdaptFieldValidationError(fe validator.FieldError) string {
	inner := func(fe validator.FieldError) string {
		switch fe.ActualTag() {
		case "required":
			return "is required"
		case "oneof":
			opts := strings.Split(fe.Param(), " ")
			return fmt.Sprintf("must be one of %s", strings.Join(opts, ", "))
		case "min":
			return fmt.Sprintf("must have at least %s items", fe.Param())
		case "max":
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		return "is invalid"
	}

	return fmt.Sprintf("field `%s` %s", fe.Field(), inner(fe))
}
