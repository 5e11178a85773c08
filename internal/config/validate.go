package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/mod/semver"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Server versions are compared with x/mod/semver, which wants the "v"
	// prefix the built-in semver tag rejects.
	_ = v.RegisterValidation("gosemver", func(fl validator.FieldLevel) bool {
		return semver.IsValid(fl.Field().String())
	})
	return v
}

// FieldError is one invalid configuration field.
type FieldError struct {
	Field   string
	Message string
	Rule    string
	Value   any
}

// ValidationErrors lists every invalid field.
type ValidationErrors []FieldError

func (ve ValidationErrors) Error() string {
	switch len(ve) {
	case 0:
		return "invalid configuration"
	case 1:
		return fmt.Sprintf("invalid configuration: %s %s", ve[0].Field, ve[0].Message)
	}
	msgs := make([]string, len(ve))
	for i, fe := range ve {
		msgs[i] = fe.Field + " " + fe.Message
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Validate checks the struct tags and the LLM provider settings.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return toValidationErrors(verrs)
		}
		return err
	}
	return c.LLM.Validate()
}

func toValidationErrors(verrs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
			Message: fieldMessage(fe),
			Rule:    fe.Tag(),
			Value:   fe.Value(),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return fmt.Sprintf("is required when %s", strings.Replace(fe.Param(), " ", " is ", 1))
	case "url":
		return "must be a valid URL"
	case "jwt":
		return "must be a JWT"
	case "gosemver":
		return "must be a semantic version such as v1.2.0"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
