package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks a DTO's validate tags and returns a message
// the error middleware renders as a 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return NewValidationError(fmt.Sprintf("field %s failed on %s", first.Field(), first.Tag()))
		}
		return NewValidationError(err.Error())
	}
	return nil
}
