package apierror

import (
	"errors"
	"regexp"
	"strings"
)

// Operation names the user action an error happened during. It scopes the
// message overrides applied by Describe.
type Operation string

const (
	OpNone              Operation = ""
	OpLogin             Operation = "login"
	OpRegister          Operation = "register"
	OpEmailVerification Operation = "email_verification"
	OpPasswordReset     Operation = "password_reset"
	OpPasswordChange    Operation = "password_change"
	OpProfile           Operation = "profile"
	OpProfileUpdate     Operation = "profile_update"
	OpPrediction        Operation = "prediction"
)

// Info is the normalized, user-facing view of a failure.
type Info struct {
	Kind    Kind
	Message string
	// RequiresVerification is set when a login failed because the account's
	// email has not been verified yet.
	RequiresVerification bool
	Err                  error
}

// Error implements the error interface.
func (i *Info) Error() string { return i.Message }

// Unwrap returns the classified error.
func (i *Info) Unwrap() error { return i.Err }

// Template returns the presentation for the info's kind.
func (i *Info) Template() Template { return TemplateFor(i.Kind) }

type userMessager interface {
	UserMessage() string
}

var httpStatusPrefix = regexp.MustCompile(`^HTTP error! status: \d+\s*`)

// Describe classifies err and applies overrides specific to op. A nil error
// yields nil.
func Describe(err error, op Operation) *Info {
	if err == nil {
		return nil
	}

	msg := messageOf(err)
	lower := strings.ToLower(msg)
	info := &Info{Kind: Classify(err), Err: err}

	switch op {
	case OpLogin:
		if strings.Contains(lower, "email not verified") {
			info.Kind = KindEmailVerification
			info.Message = "Please verify your email before logging in."
			info.RequiresVerification = true
			return info
		}
	case OpRegister:
		if strings.Contains(lower, "already exists") || strings.Contains(lower, "already registered") {
			info.Kind = KindValidation
			info.Message = "An account with this email already exists. Please try logging in instead."
			return info
		}
	case OpPasswordReset:
		if strings.Contains(lower, "invalid token") || strings.Contains(lower, "expired") {
			info.Kind = KindPasswordReset
			info.Message = "This reset link is invalid or has expired. Please request a new one."
			return info
		}
	case OpProfileUpdate:
		if strings.Contains(lower, "image") || strings.Contains(lower, "upload") {
			info.Kind = KindImageUpload
			info.Message = "Failed to update profile image. Please try again with a different image."
			return info
		}
	}

	info.Message = CleanMessage(msg)
	if info.Message == "" {
		info.Message = TemplateFor(info.Kind).Message
	}
	return info
}

// CleanMessage strips transport noise from a raw error message.
func CleanMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	msg = strings.TrimPrefix(msg, "Error: ")
	msg = httpStatusPrefix.ReplaceAllString(msg, "")
	msg = strings.ReplaceAll(msg, "Network request failed", "Connection failed")
	return strings.TrimSpace(msg)
}

func messageOf(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		if m := um.UserMessage(); m != "" {
			return m
		}
	}
	return err.Error()
}
