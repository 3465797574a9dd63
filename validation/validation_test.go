package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Secret1!x"

func validationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
	return ve
}

func TestLoginForm(t *testing.T) {
	tests := []struct {
		name    string
		form    LoginForm
		field   string
		message string
	}{
		{name: "valid", form: LoginForm{Email: "a@b.co", Password: "x"}},
		{name: "blank_email", form: LoginForm{Email: "   ", Password: "x"}, field: "email", message: "Email is required"},
		{name: "bad_email", form: LoginForm{Email: "ab.co", Password: "x"}, field: "email", message: MsgEmail},
		{name: "email_with_space", form: LoginForm{Email: "a b@c.co", Password: "x"}, field: "email", message: MsgEmail},
		{name: "missing_password", form: LoginForm{Email: "a@b.co"}, field: "password", message: "Password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.form)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			ve := validationError(t, err)
			assert.Equal(t, tt.message, ve.Field(tt.field))
		})
	}
}

func TestRegisterForm(t *testing.T) {
	valid := RegisterForm{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Password:        strongPassword,
		ConfirmPassword: strongPassword,
	}
	require.NoError(t, Validate(&valid))

	tests := []struct {
		name    string
		mutate  func(f *RegisterForm)
		field   string
		message string
	}{
		{name: "short_name", mutate: func(f *RegisterForm) { f.FirstName = "A" }, field: "first_name", message: MsgNameTooShort},
		{name: "long_name", mutate: func(f *RegisterForm) { f.LastName = "Abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz" }, field: "last_name", message: MsgNameTooLong},
		{name: "digits_in_name", mutate: func(f *RegisterForm) { f.FirstName = "Ada2" }, field: "first_name", message: MsgName},
		{name: "blank_last_name", mutate: func(f *RegisterForm) { f.LastName = "" }, field: "last_name", message: "Last Name is required"},
		{name: "short_password", mutate: func(f *RegisterForm) { f.Password, f.ConfirmPassword = "Ab1!", "Ab1!" }, field: "password", message: MsgPasswordLength},
		{name: "password_without_special", mutate: func(f *RegisterForm) { f.Password, f.ConfirmPassword = "Secret123", "Secret123" }, field: "password", message: MsgPassword},
		{name: "mismatch", mutate: func(f *RegisterForm) { f.ConfirmPassword = "Other1!xx" }, field: "password2", message: MsgPasswordsMismatch},
		{name: "blank_confirmation", mutate: func(f *RegisterForm) { f.ConfirmPassword = "" }, field: "password2", message: "Confirm Password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)
			ve := validationError(t, Validate(&form))
			assert.Equal(t, tt.message, ve.Field(tt.field))
		})
	}
}

func TestVerificationForm(t *testing.T) {
	assert.NoError(t, Validate(VerificationForm{Email: "a@b.co", OTP: "123456"}))

	for _, otp := range []string{"12345", "1234567", "12a456"} {
		ve := validationError(t, Validate(VerificationForm{Email: "a@b.co", OTP: otp}))
		assert.Equal(t, MsgOTP, ve.Field("otp"), otp)
	}

	ve := validationError(t, Validate(VerificationForm{Email: "a@b.co"}))
	assert.Equal(t, "Verification Code is required", ve.Field("otp"))
}

func TestPasswordForms(t *testing.T) {
	assert.NoError(t, Validate(ResetPasswordForm{Token: "t", NewPassword: strongPassword, ConfirmPassword: strongPassword}))
	assert.NoError(t, Validate(ChangePasswordForm{CurrentPassword: "old", NewPassword: strongPassword, ConfirmPassword: strongPassword}))

	ve := validationError(t, Validate(ResetPasswordForm{NewPassword: strongPassword, ConfirmPassword: strongPassword}))
	assert.Equal(t, "Reset Token is required", ve.Field("token"))

	ve = validationError(t, Validate(ChangePasswordForm{CurrentPassword: "old", NewPassword: strongPassword, ConfirmPassword: "nope"}))
	assert.Equal(t, MsgPasswordsMismatch, ve.Field("confirm_password"))
	assert.Empty(t, ve.Field("new_password"))
}

func TestProfileFormSkipsEmptyFields(t *testing.T) {
	assert.NoError(t, Validate(ProfileForm{}))
	assert.NoError(t, Validate(ProfileForm{FirstName: "Grace", Phone: "0123456789"}))

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}
	ve := validationError(t, Validate(ProfileForm{Phone: "12345", Bio: string(long)}))
	assert.Equal(t, MsgPhone, ve.Field("phone"))
	assert.Equal(t, "Bio must be no more than 500 characters", ve.Field("bio"))
	assert.Len(t, ve.Errors, 2)
}

func TestValidationErrorReporting(t *testing.T) {
	ve := validationError(t, Validate(EmailForm{}))

	assert.Equal(t, "validation failed: Email is required", ve.Error())
	assert.Equal(t, "validation", ve.ErrorKind())
	assert.Equal(t, "Email is required", ve.UserMessage())

	multi := &ValidationError{Errors: []FieldError{{Field: "a", Message: "one"}, {Field: "b", Message: "two"}}}
	assert.Equal(t, "validation failed: 2 errors", multi.Error())
	assert.Equal(t, "one\ntwo", multi.UserMessage())
	assert.Equal(t, "validation failed", (&ValidationError{}).Error())
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		score    int
		level    string
	}{
		{password: "", score: 0, level: StrengthVeryWeak},
		{password: "abc", score: 1, level: StrengthVeryWeak},
		{password: "abcdefgh1", score: 3, level: StrengthWeak},
		{password: "Abcdefgh1", score: 4, level: StrengthMedium},
		{password: strongPassword, score: 5, level: StrengthStrong},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			s := PasswordStrength(tt.password)
			assert.Equal(t, tt.score, s.Score)
			assert.Equal(t, tt.level, s.Level)
			assert.NotEmpty(t, s.Message)
		})
	}

	assert.True(t, IsStrongPassword(strongPassword))
	assert.False(t, IsStrongPassword("Abcdefgh1"))
}
