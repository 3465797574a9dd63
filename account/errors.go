package account

import (
	"errors"
	"fmt"

	"github.com/plantify/plantify-go/apierror"
)

// ErrNoRefreshToken is returned by the refresh flow when no refresh token
// is stored.
var ErrNoRefreshToken = errors.New("no refresh token available")

// SessionExpiredError reports a failed token refresh. Stored tokens have
// been cleared and the user must log in again.
type SessionExpiredError struct {
	Err error
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired: %v", e.Err)
}

func (e *SessionExpiredError) Unwrap() error { return e.Err }

// StatusCode hides the status of the failed refresh call from
// apierror.Classify.
func (e *SessionExpiredError) StatusCode() int { return 0 }

// ErrorKind implements the kind hook of apierror.Classify.
func (e *SessionExpiredError) ErrorKind() string { return string(apierror.KindTokenExpired) }

// UserMessage is the message shown to the user.
func (e *SessionExpiredError) UserMessage() string { return MsgSessionExpired }
