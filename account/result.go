package account

import (
	"github.com/plantify/plantify-go/apierror"
	"github.com/plantify/plantify-go/logger"
)

// Result is the uniform outcome of an account operation. Exactly one of Data
// (with Message) or Failure is meaningful.
type Result[T any] struct {
	Data    T
	Message string
	Failure *apierror.Info
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool { return r.Failure == nil }

// Err returns the failure as an error, or nil on success.
func (r Result[T]) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

func succeed[T any](data T, message string) Result[T] {
	return Result[T]{Data: data, Message: message}
}

func fail[T any](log logger.Logger, op apierror.Operation, err error) Result[T] {
	info := apierror.Describe(err, op)
	log.Warn().
		Err(err).
		Str("operation", string(op)).
		Str("kind", info.Kind.String()).
		Msg("account operation failed")
	return Result[T]{Failure: info}
}
