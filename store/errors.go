package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for common store operations.
// Use errors.Is() to check for these specific error conditions.
var (
	// ErrNotFound is returned when a key doesn't exist.
	// Callers should treat it as an empty value rather than a failure.
	ErrNotFound = errors.New("store: key not found")

	// ErrClosed is returned when attempting to use a closed store.
	ErrClosed = errors.New("store: closed")
)

// ConfigError represents a configuration error during store initialization.
type ConfigError struct {
	Field   string // Configuration field that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store configuration error: %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("store configuration error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new configuration error.
func NewConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Err: err}
}

// ConnectionError represents a failure reaching the backing service.
type ConnectionError struct {
	Op      string // Operation that failed (e.g., "dial", "ping")
	Address string // Server address or file path
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("store connection error: %s failed for %s: %v", e.Op, e.Address, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError creates a new connection error.
func NewConnectionError(op, address string, err error) *ConnectionError {
	return &ConnectionError{Op: op, Address: address, Err: err}
}

// OperationError represents a failed Get, Set or Delete.
type OperationError struct {
	Op  string // Operation that failed (e.g., "get", "set", "decode")
	Key string // Key involved in the operation
	Err error  // Underlying error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	return fmt.Sprintf("local storage error: %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// ErrorKind reports the failure category understood by apierror.Classify.
func (e *OperationError) ErrorKind() string {
	return "storage"
}

// NewOperationError creates a new operation error.
func NewOperationError(op, key string, err error) *OperationError {
	return &OperationError{Op: op, Key: key, Err: err}
}
