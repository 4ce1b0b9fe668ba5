package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report problems by the environment key operators actually set
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

func validate(config *Config) []error {
	err := structValidator.Struct(config)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []error{err}
	}

	errs := make([]error, 0, len(ve))
	for _, fe := range ve {
		errs = append(errs, fieldError(fe))
	}
	return errs
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "gt":
		return fmt.Errorf("%s must be greater than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "min", "max":
		return fmt.Errorf("%s must be within [4, 31], got %v", fe.Field(), fe.Value())
	default:
		return fmt.Errorf("%s failed %s", fe.Field(), fe.Tag())
	}
}
