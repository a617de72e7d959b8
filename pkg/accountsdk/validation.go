package accountsdk

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON names so errors line up with the payload.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks v against its `validate` tags. It returns nil when v is
// valid, otherwise a map of JSON field name to message.
func Validate(v any) map[string]string {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := details[fe.Field()]; !seen {
			details[fe.Field()] = message(fe)
		}
	}
	return details
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Bool {
			return "must be accepted"
		}
		return "is required"
	case "required_with":
		return "is required when password is set"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "eqfield":
		return "must match password"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

// Validate reports field errors, or nil.
func (r RegisterRequest) Validate() map[string]string { return Validate(r) }

// Validate reports field errors, or nil.
func (r TokenRequest) Validate() map[string]string { return Validate(r) }

// Validate reports field errors, or nil.
func (r AuthenticateRequest) Validate() map[string]string { return Validate(r) }

// Validate reports field errors, or nil.
func (r ForgotPasswordRequest) Validate() map[string]string { return Validate(r) }

// Validate reports field errors, or nil.
func (r ResetPasswordRequest) Validate() map[string]string { return Validate(r) }

// Validate reports field errors, or nil.
func (r CreateAccountRequest) Validate() map[string]string { return Validate(r) }

// Validate reports field errors, or nil. allowRole is false for callers that
// may not change roles; a role in the payload is then itself an error.
func (r UpdateAccountRequest) Validate(allowRole bool) map[string]string {
	details := Validate(r)
	if !allowRole && r.Role != "" {
		if details == nil {
			details = make(map[string]string, 1)
		}
		details["role"] = "is not allowed"
	}
	return details
}
