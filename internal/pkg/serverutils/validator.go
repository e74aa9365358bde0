package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"project-memory-be/pkg/errs"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their json name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRequest checks the validate tags of req and reports the first
// failing field as an invalid request.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.Wrap(errs.ErrInvalidRequest, err)
	}

	fe := fieldErrs[0]
	field := fe.Field()
	var message string
	switch fe.Tag() {
	case "required":
		message = fmt.Sprintf("%s is required", field)
	case "oneof":
		message = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min", "max":
		message = fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param())
	default:
		message = fmt.Sprintf("%s is invalid", field)
	}
	return errs.ErrInvalidRequest.WithMessage(message)
}
