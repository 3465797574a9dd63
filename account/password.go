package account

import (
	"context"
	nethttp "net/http"
	"strings"

	"github.com/plantify/plantify-go/apierror"
	"github.com/plantify/plantify-go/httpclient"
	"github.com/plantify/plantify-go/validation"
)

// CheckPasswordStrength asks the server to score password.
func (s *Service) CheckPasswordStrength(ctx context.Context, password string) Result[PasswordStrength] {
	if strings.TrimSpace(password) == "" {
		return fail[PasswordStrength](s.logger, apierror.OpNone,
			validation.NewFieldError("password", "Password is required"))
	}

	resp, err := s.public(ctx, httpclient.EndpointCheckPasswordStrength, map[string]string{"password": password}, true)
	if err != nil {
		return fail[PasswordStrength](s.logger, apierror.OpNone, err)
	}
	var strength PasswordStrength
	msg, err := decode(resp, &strength)
	if err != nil {
		return fail[PasswordStrength](s.logger, apierror.OpNone, err)
	}
	return succeed(strength, orDefault(msg, strength.Message))
}

// ChangePassword changes the password of the logged-in user.
func (s *Service) ChangePassword(ctx context.Context, current, next, confirm string) Result[struct{}] {
	form := validation.ChangePasswordForm{CurrentPassword: current, NewPassword: next, ConfirmPassword: confirm}
	if err := validation.Validate(form); err != nil {
		return fail[struct{}](s.logger, apierror.OpPasswordChange, err)
	}

	resp, err := s.authorized(ctx, &httpclient.Request{
		Method:   nethttp.MethodPost,
		Endpoint: httpclient.EndpointChangePassword,
		JSON:     form,
	})
	if err != nil {
		return fail[struct{}](s.logger, apierror.OpPasswordChange, err)
	}
	msg, _ := decode(resp, nil)
	return succeed(struct{}{}, orDefault(msg, MsgPasswordChanged))
}

// RequestPasswordReset asks the server to email a reset link.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) Result[struct{}] {
	form := validation.EmailForm{Email: strings.TrimSpace(email)}
	if err := validation.Validate(form); err != nil {
		return fail[struct{}](s.logger, apierror.OpPasswordReset, err)
	}

	resp, err := s.public(ctx, httpclient.EndpointPasswordResetRequest, form, false)
	if err != nil {
		return fail[struct{}](s.logger, apierror.OpPasswordReset, err)
	}
	msg, _ := decode(resp, nil)
	return succeed(struct{}{}, orDefault(msg, MsgResetLinkSent))
}

// VerifyPasswordResetToken checks a reset token before the user picks a new
// password.
func (s *Service) VerifyPasswordResetToken(ctx context.Context, token string) Result[struct{}] {
	token = strings.TrimSpace(token)
	if token == "" {
		return fail[struct{}](s.logger, apierror.OpPasswordReset,
			validation.NewFieldError("token", "Reset Token is required"))
	}

	resp, err := s.public(ctx, httpclient.EndpointPasswordResetVerify, map[string]string{"token": token}, true)
	if err != nil {
		return fail[struct{}](s.logger, apierror.OpPasswordReset, err)
	}
	msg, _ := decode(resp, nil)
	return succeed(struct{}{}, orDefault(msg, MsgResetTokenValid))
}

// ConfirmPasswordReset sets a new password using a reset token.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, next, confirm string) Result[struct{}] {
	form := validation.ResetPasswordForm{Token: strings.TrimSpace(token), NewPassword: next, ConfirmPassword: confirm}
	if err := validation.Validate(form); err != nil {
		return fail[struct{}](s.logger, apierror.OpPasswordReset, err)
	}

	body := map[string]string{"token": form.Token, "new_password": form.NewPassword}
	resp, err := s.public(ctx, httpclient.EndpointPasswordResetConfirm, body, false)
	if err != nil {
		return fail[struct{}](s.logger, apierror.OpPasswordReset, err)
	}
	msg, _ := decode(resp, nil)
	return succeed(struct{}{}, orDefault(msg, MsgPasswordReset))
}
