// Package account implements the operations of the Plantify account
// service: registration, login and email verification, the profile, the
// password flows and access token refresh. Every operation returns a
// Result; failures are described with apierror so callers can show them
// as they are.
package account

import (
	"context"
	nethttp "net/http"

	"golang.org/x/sync/singleflight"

	"github.com/plantify/plantify-go/httpclient"
	"github.com/plantify/plantify-go/logger"
	"github.com/plantify/plantify-go/store"
)

// Service runs account operations against the account service.
type Service struct {
	client  httpclient.Client
	store   store.Store
	tokens  *store.Tokens
	logger  logger.Logger
	refresh singleflight.Group
}

// NewService creates a Service. client should use a token source backed by
// st so refreshed tokens are picked up on retry.
func NewService(client httpclient.Client, st store.Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		client: client,
		store:  st,
		tokens: store.NewTokens(st),
		logger: log.WithFields(map[string]any{"component": "account"}),
	}
}

// authorized sends req and, when the access token is rejected, refreshes it
// and sends req once more.
func (s *Service) authorized(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	resp, err := s.client.Do(ctx, req)
	if err == nil || !httpclient.IsStatus(err, nethttp.StatusUnauthorized) {
		return resp, err
	}

	s.logger.Info().Str("endpoint", string(req.Endpoint)).Msg("access token rejected, refreshing")
	if _, err := s.refreshAccessToken(ctx); err != nil {
		return nil, err
	}
	return s.client.Do(ctx, req)
}

// public sends a request that must not carry credentials.
func (s *Service) public(ctx context.Context, endpoint httpclient.Endpoint, body any, retryable bool) (*httpclient.Response, error) {
	return s.client.Do(ctx, &httpclient.Request{
		Method:    nethttp.MethodPost,
		Endpoint:  endpoint,
		JSON:      body,
		SkipAuth:  true,
		Retryable: retryable,
	})
}

// rememberSession stores the tokens of a login or verification response
// and the account email.
func (s *Service) rememberSession(ctx context.Context, pair TokenPair, email string) error {
	if pair.Access == "" || pair.Refresh == "" {
		return nil
	}
	if err := s.tokens.Set(ctx, pair.Access, pair.Refresh); err != nil {
		return err
	}
	if err := s.store.Set(ctx, store.KeyUserEmail, []byte(email)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store user email")
	}
	return nil
}

// IsAuthenticated reports whether an access token is stored.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	return s.tokens.IsAuthenticated(ctx)
}

// Logout clears the stored tokens. It always succeeds.
func (s *Service) Logout(ctx context.Context) Result[struct{}] {
	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear tokens on logout")
	}
	return succeed(struct{}{}, MsgLoggedOut)
}
