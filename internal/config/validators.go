package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that knows the exclusive rule and reports fields
// by their label tag.
func newValidator() (*validator.Validate, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.RegisterValidation("exclusive", validateExclusive); err != nil {
		return nil, fmt.Errorf("registering exclusive validation: %w", err)
	}

	validate.RegisterTagNameFunc(label)

	return validate, nil
}

// label returns the name a field is reported under.
func label(fld reflect.StructField) string {
	const splitSize = 2

	name := strings.SplitN(fld.Tag.Get("label"), ",", splitSize)[0]
	if name == "" || name == "-" {
		return fld.Name
	}

	return name
}

// validateExclusive checks if two fields are mutually exclusive.
// Returns false if both fields have non-empty values.
func validateExclusive(fl validator.FieldLevel) bool {
	field := fl.Field()
	otherField := fl.Parent().FieldByName(fl.Param())

	if !field.IsValid() || !otherField.IsValid() {
		return true
	}

	if field.Kind() == reflect.String && otherField.Kind() == reflect.String {
		return field.String() == "" || otherField.String() == ""
	}

	return true
}

// describe renders a failed rule as a one-line message.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "exclusive":
		other := fe.Param()
		if fld, ok := reflect.TypeOf(Config{}).FieldByName(other); ok {
			other = label(fld)
		}

		return fmt.Sprintf("%s and %s are mutually exclusive", fe.Field(), other)
	case "required", "required_if", "required_unless":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}
