package auth

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation matches every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError carries one message per invalid field, keyed by the
// field's form name (email, password, confirmPassword, ...).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// RegisterForm is the three-step registration form.
type RegisterForm struct {
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string `form:"firstName" validate:"required"`
	LastName        string `form:"lastName" validate:"required"`
	Phone           string `form:"phone"`
	Company         string `form:"company"`
	AgreeToTerms    bool   `form:"terms" validate:"required"`
}

var messages = map[string]string{
	"email.required":           "Email is required",
	"email.email":              "Email is invalid",
	"password.required":        "Password is required",
	"password.min":             "Password must be at least 8 characters",
	"confirmPassword.required": "Please confirm your password",
	"confirmPassword.eqfield":  "Passwords do not match",
	"firstName.required":       "First name is required",
	"lastName.required":        "Last name is required",
	"terms.required":           "You must agree to the terms and conditions",
	"name.required":            "Name is required",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	return v
}

// Validate checks a LoginForm or RegisterForm and returns a *ValidationError
// listing every invalid field, or nil.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, seen := out.Fields[field]; seen {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = field + " is invalid"
		}
		out.Fields[field] = msg
	}
	return out
}
