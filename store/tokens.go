package store

import (
	"context"
	"errors"
	"fmt"
)

// Tokens gives typed access to the persisted access/refresh token pair.
type Tokens struct {
	store Store
}

// NewTokens wraps s.
func NewTokens(s Store) *Tokens {
	return &Tokens{store: s}
}

// AccessToken returns the stored access token, or "" when the user is not
// logged in.
func (t *Tokens) AccessToken(ctx context.Context) (string, error) {
	return GetString(ctx, t.store, KeyAccessToken)
}

// RefreshToken returns the stored refresh token, or "".
func (t *Tokens) RefreshToken(ctx context.Context) (string, error) {
	return GetString(ctx, t.store, KeyRefreshToken)
}

// Set persists both tokens.
func (t *Tokens) Set(ctx context.Context, access, refresh string) error {
	if err := t.store.Set(ctx, KeyAccessToken, []byte(access)); err != nil {
		return fmt.Errorf("failed to store authentication tokens: %w", err)
	}
	if err := t.store.Set(ctx, KeyRefreshToken, []byte(refresh)); err != nil {
		return fmt.Errorf("failed to store authentication tokens: %w", err)
	}
	return nil
}

// SetAccess replaces only the access token, as after a refresh.
func (t *Tokens) SetAccess(ctx context.Context, access string) error {
	if err := t.store.Set(ctx, KeyAccessToken, []byte(access)); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	return nil
}

// Clear removes both tokens. Both deletes are attempted.
func (t *Tokens) Clear(ctx context.Context) error {
	return errors.Join(
		t.store.Delete(ctx, KeyAccessToken),
		t.store.Delete(ctx, KeyRefreshToken),
	)
}

// IsAuthenticated reports whether an access token is stored.
func (t *Tokens) IsAuthenticated(ctx context.Context) bool {
	token, err := t.AccessToken(ctx)
	return err == nil && token != ""
}
