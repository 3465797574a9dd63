package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/plantify/plantify-go/apierror"
	"github.com/plantify/plantify-go/httpclient"
	"github.com/plantify/plantify-go/store"
	"github.com/plantify/plantify-go/validation"
)

// refreshTimeout bounds one shared token refresh, retries included.
const refreshTimeout = 30 * time.Second

// Register creates an account. The server then emails a verification code.
func (s *Service) Register(ctx context.Context, r Registration) Result[Profile] {
	form := validation.RegisterForm{
		FirstName:       strings.TrimSpace(r.FirstName),
		LastName:        strings.TrimSpace(r.LastName),
		Email:           strings.TrimSpace(r.Email),
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
	}
	if err := validation.Validate(form); err != nil {
		return fail[Profile](s.logger, apierror.OpRegister, err)
	}

	resp, err := s.public(ctx, httpclient.EndpointRegister, form, false)
	if err != nil {
		return fail[Profile](s.logger, apierror.OpRegister, err)
	}
	var profile Profile
	msg, err := decode(resp, &profile)
	if err != nil {
		return fail[Profile](s.logger, apierror.OpRegister, err)
	}
	return succeed(profile, orDefault(msg, MsgRegistered))
}

// Login authenticates with email and password and stores the issued tokens.
// A failure for an unverified account has RequiresVerification set.
func (s *Service) Login(ctx context.Context, email, password string) Result[TokenPair] {
	form := validation.LoginForm{Email: strings.TrimSpace(email), Password: password}
	if err := validation.Validate(form); err != nil {
		return fail[TokenPair](s.logger, apierror.OpLogin, err)
	}

	resp, err := s.public(ctx, httpclient.EndpointLogin, form, true)
	if err != nil {
		return fail[TokenPair](s.logger, apierror.OpLogin, err)
	}
	var pair TokenPair
	msg, err := decode(resp, &pair)
	if err == nil {
		err = s.rememberSession(ctx, pair, form.Email)
	}
	if err != nil {
		return fail[TokenPair](s.logger, apierror.OpLogin, err)
	}
	return succeed(pair, orDefault(msg, MsgLoggedIn))
}

// VerifyOTP confirms the account email with the emailed code. The server
// logs the user in on success.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) Result[TokenPair] {
	form := validation.VerificationForm{Email: strings.TrimSpace(email), OTP: strings.TrimSpace(otp)}
	if err := validation.Validate(form); err != nil {
		return fail[TokenPair](s.logger, apierror.OpEmailVerification, err)
	}

	resp, err := s.public(ctx, httpclient.EndpointVerifyOTP, form, false)
	if err != nil {
		return fail[TokenPair](s.logger, apierror.OpEmailVerification, err)
	}
	var pair TokenPair
	msg, err := decode(resp, &pair)
	if err == nil {
		err = s.rememberSession(ctx, pair, form.Email)
	}
	if err != nil {
		return fail[TokenPair](s.logger, apierror.OpEmailVerification, err)
	}
	return succeed(pair, orDefault(msg, MsgEmailVerified))
}

// ResendOTP asks the server to email a new verification code.
func (s *Service) ResendOTP(ctx context.Context, email string) Result[struct{}] {
	form := validation.EmailForm{Email: strings.TrimSpace(email)}
	if err := validation.Validate(form); err != nil {
		return fail[struct{}](s.logger, apierror.OpEmailVerification, err)
	}

	resp, err := s.public(ctx, httpclient.EndpointResendOTP, form, false)
	if err != nil {
		return fail[struct{}](s.logger, apierror.OpEmailVerification, err)
	}
	msg, _ := decode(resp, nil)
	return succeed(struct{}{}, orDefault(msg, MsgOTPSent))
}

// RefreshAccessToken exchanges the stored refresh token for a new access
// token. When the refresh token is missing or rejected the stored tokens are
// cleared and the Result is a token_expired failure; network, server and
// cancellation failures keep them.
func (s *Service) RefreshAccessToken(ctx context.Context) Result[string] {
	access, err := s.refreshAccessToken(ctx)
	if err != nil {
		return fail[string](s.logger, apierror.OpNone, err)
	}
	return succeed(access, "")
}

// refreshAccessToken shares one refresh call between concurrent callers.
// The shared call runs detached from ctx under refreshTimeout, so a caller
// that gives up returns ctx.Err() and leaves the refresh to the others.
func (s *Service) refreshAccessToken(ctx context.Context) (string, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.refresh.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(shared, refreshTimeout)
		defer cancel()
		return s.doRefresh(rctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// doRefresh ends the session only when the server rejected the refresh
// token. Interrupted and transient failures keep the stored tokens.
func (s *Service) doRefresh(ctx context.Context) (string, error) {
	access, err := s.exchangeRefreshToken(ctx)
	if err == nil {
		return access, nil
	}

	if !sessionLost(ctx, err) {
		s.logger.Warn().Err(err).Msg("token refresh failed, keeping session")
		return "", err
	}

	if cerr := s.tokens.Clear(ctx); cerr != nil {
		s.logger.Warn().Err(cerr).Msg("failed to clear tokens after refresh failure")
	}
	s.logger.Warn().Err(err).Msg("token refresh failed")
	return "", &SessionExpiredError{Err: err}
}

func sessionLost(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var herr *httpclient.Error
	if errors.As(err, &herr) && (herr.Transient() || herr.Message == httpclient.MsgCancelled) {
		return false
	}
	var opErr *store.OperationError
	return !errors.As(err, &opErr)
}

func (s *Service) exchangeRefreshToken(ctx context.Context) (string, error) {
	refresh, err := s.tokens.RefreshToken(ctx)
	if err != nil {
		return "", err
	}
	if refresh == "" {
		return "", ErrNoRefreshToken
	}

	resp, err := s.public(ctx, httpclient.EndpointTokenRefresh, map[string]string{"refresh": refresh}, true)
	if err != nil {
		return "", err
	}
	var pair TokenPair
	if _, err := decode(resp, &pair); err != nil {
		return "", err
	}
	if pair.Access == "" {
		return "", errors.New("refresh response carried no access token")
	}

	// rotated refresh tokens replace the old one
	if pair.Refresh != "" {
		err = s.tokens.Set(ctx, pair.Access, pair.Refresh)
	} else {
		err = s.tokens.SetAccess(ctx, pair.Access)
	}
	if err != nil {
		return "", err
	}
	return pair.Access, nil
}
