package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}()

// Validate checks the `validate` tags of a command and returns a validation
// *Error describing every failed field, or nil.
func Validate(cmd any) error {
	err := validate.Struct(cmd)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	result := &multierror.Error{ErrorFormat: joinComma}
	for _, fe := range fieldErrs {
		result = multierror.Append(result, errors.New(describe(fe)))
	}
	return NewValidationError("Invalid request data: %s", result.Error())
}

func joinComma(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, ", ")
}

func describe(fe validator.FieldError) string {
	label := fe.Field()
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min", "gte":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("%s cannot be more than %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s cannot be more than %s", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
