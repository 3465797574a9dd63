// Package validation checks account form input on the client before any
// request is sent. It wraps go-playground/validator with the form rules
// of the Plantify app and user-facing messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rule messages
const (
	MsgEmail             = "Please enter a valid email address"
	MsgPassword          = "Password must be at least 8 characters with uppercase, lowercase, number, and special character"
	MsgPasswordLength    = "Password must be at least 8 characters long"
	MsgName              = "Name must be 2-50 characters and contain only letters and spaces"
	MsgNameTooShort      = "Name must be at least 2 characters long"
	MsgNameTooLong       = "Name must be no more than 50 characters long"
	MsgOTP               = "Please enter a valid 6-digit verification code"
	MsgPhone             = "Please enter a valid 10-digit phone number"
	MsgPasswordsMismatch = "Passwords do not match"
)

const (
	passwordMinLength = 8
	nameMinLength     = 2
	nameMaxLength     = 50
	specialChars      = `!@#$%^&*(),.?":{}|<>`
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	otpPattern   = regexp.MustCompile(`^[0-9]{6}$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// Validator wraps go-playground/validator with the form rules registered.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New()

	rules := map[string]validator.Func{
		"notblank":        func(fl validator.FieldLevel) bool { return trimmed(fl) != "" },
		"email_address":   func(fl validator.FieldLevel) bool { return emailPattern.MatchString(trimmed(fl)) },
		"strong_password": func(fl validator.FieldLevel) bool { return IsStrongPassword(trimmed(fl)) },
		"person_name":     func(fl validator.FieldLevel) bool { return nameMessage(trimmed(fl)) == "" },
		"otp":             func(fl validator.FieldLevel) bool { return otpPattern.MatchString(trimmed(fl)) },
		"phone":           func(fl validator.FieldLevel) bool { return phonePattern.MatchString(trimmed(fl)) },
	}
	for tag, fn := range rules {
		// tags are static and well-formed
		_ = v.RegisterValidation(tag, fn)
	}

	return &Validator{validate: v}
}

var defaultValidator = New()

// Validate checks form against its validate tags with the shared validator.
func Validate(form any) error {
	return defaultValidator.Validate(form)
}

// Validate performs validation on the provided struct and returns a
// *ValidationError listing every failing field.
func (v *Validator) Validate(form any) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	t := reflect.TypeOf(form)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	fieldErrors := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name, label := fe.Field(), fe.Field()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if j := strings.Split(sf.Tag.Get("json"), ",")[0]; j != "" && j != "-" {
				name = j
			}
			if l := sf.Tag.Get("label"); l != "" {
				label = l
			}
		}
		fieldErrors = append(fieldErrors, FieldError{
			Field:   name,
			Message: message(fe, label),
		})
	}
	return &ValidationError{Errors: fieldErrors}
}

func trimmed(fl validator.FieldLevel) string {
	return strings.TrimSpace(fl.Field().String())
}

func message(fe validator.FieldError, label string) string {
	value := strings.TrimSpace(fmt.Sprint(fe.Value()))
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", label)
	case "email_address":
		return MsgEmail
	case "strong_password":
		if len(value) < passwordMinLength {
			return MsgPasswordLength
		}
		return MsgPassword
	case "person_name":
		return nameMessage(value)
	case "otp":
		return MsgOTP
	case "phone":
		return MsgPhone
	case "eqfield":
		return MsgPasswordsMismatch
	case "max":
		return fmt.Sprintf("%s must be no more than %s characters", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// nameMessage returns "" for a valid name.
func nameMessage(name string) string {
	n := len([]rune(name))
	switch {
	case n < nameMinLength:
		return MsgNameTooShort
	case n > nameMaxLength:
		return MsgNameTooLong
	case !namePattern.MatchString(name):
		return MsgName
	default:
		return ""
	}
}

// IsStrongPassword reports whether password has at least 8 characters with
// a lowercase letter, an uppercase letter, a digit and a special character.
func IsStrongPassword(password string) bool {
	return PasswordStrength(password).Score == 5
}
