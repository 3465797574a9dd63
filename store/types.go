// Package store provides the durable key-value abstraction the client keeps
// its local state in: auth tokens, the resolved API base URL and the
// prediction history. Backends live in this package (memory, JSON file) and
// in sub-packages (redis).
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known keys of persisted client state.
const (
	KeyAccessToken       = "access_token"
	KeyRefreshToken      = "refresh_token"
	KeyDetectedAPIURL    = "detected_api_url"
	KeyPredictionHistory = "predictionHistory"
	KeyUserEmail         = "userEmail"
)

// Store defines the key-value operations the client needs.
// All implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value, overwriting any existing one.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources. After Close every operation returns ErrClosed.
	Close() error
}

// GetString returns the value stored under key as a string, or "" when the
// key is missing.
func GetString(ctx context.Context, s Store, key string) (string, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// GetJSON decodes the JSON document stored under key into v.
// found is false when the key is missing.
func GetJSON(ctx context.Context, s Store, key string, v any) (found bool, err error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, NewOperationError("decode", key, err)
	}
	return true, nil
}

// SetJSON stores v under key as a JSON document.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return NewOperationError("encode", key, fmt.Errorf("marshal: %w", err))
	}
	return s.Set(ctx, key, raw)
}
