package handler

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sumire/tracker/internal/domain"
)

var projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// AppValidator wraps go-playground/validator for echo. Failures are
// translated into field-scoped domain.ValidationErrors keyed by JSON field
// name.
type AppValidator struct {
	validator *validator.Validate
}

// NewAppValidator creates a new AppValidator.
func NewAppValidator() *AppValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Project keys: uppercase letter followed by uppercase letters, digits
	// or underscores. Input is uppercased before validation.
	_ = v.RegisterValidation("project_key", func(fl validator.FieldLevel) bool {
		return projectKeyPattern.MatchString(fl.Field().String())
	})

	return &AppValidator{validator: v}
}

// Validate validates a struct using go-playground/validator tags.
func (v *AppValidator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate: %w", err)
	}

	errs := domain.ValidationErrors{}
	for _, fe := range fieldErrors {
		errs.Add(fe.Field(), fieldMessage(fe.Field(), fe.Tag(), fe.Param()))
	}
	return errs
}

func fieldMessage(field, tag, param string) string {
	label := strings.ReplaceAll(field, "_", " ")
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", label)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, param)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", label, param)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	case "project_key":
		return fmt.Sprintf("The %s field format is invalid.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}
