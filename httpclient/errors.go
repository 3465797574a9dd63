package httpclient

import (
	"errors"
	"fmt"
	nethttp "net/http"

	"github.com/plantify/plantify-go/apierror"
)

// Stage is where in an attempt a failure happened.
type Stage string

const (
	StagePreflight Stage = "preflight"
	StageRequest   Stage = "request"
	StageResponse  Stage = "response"
)

// Messages used for failures that carry no server text.
const (
	MsgNoInternet  = "No internet connection. Please check your network settings."
	MsgTimeout     = "Request timeout. Please check your connection and try again."
	MsgNetwork     = "Network connection failed. Please check your internet connection."
	MsgInvalidJSON = "Invalid JSON response from server"
	MsgCancelled   = "Request cancelled"
)

// Error is a classified request failure.
type Error struct {
	Kind apierror.Kind
	// Status is the HTTP status, zero when no response was received.
	Status  int
	Message string
	Body    []byte
	Stage   Stage
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("http %d (%s): %s", e.Status, e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s error at %s: %s: %v", e.Kind, e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error at %s: %s", e.Kind, e.Stage, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status, zero when none was received.
func (e *Error) StatusCode() int { return e.Status }

// ErrorKind reports the classified kind to apierror.Classify.
func (e *Error) ErrorKind() string { return string(e.Kind) }

// UserMessage is the message shown to the user.
func (e *Error) UserMessage() string { return e.Message }

// Transient reports whether the failure may go away on its own.
func (e *Error) Transient() bool {
	switch e.Kind {
	case apierror.KindNetwork, apierror.KindTimeout:
		return true
	case apierror.KindServer:
		return e.Status == 0 || e.Status == nethttp.StatusTooManyRequests || e.Status >= 500
	default:
		return false
	}
}

// NewValidationError reports a request that could not be built.
func NewValidationError(message string, err error) *Error {
	return &Error{Kind: apierror.KindValidation, Message: message, Stage: StageRequest, Err: err}
}

// IsKind checks if err is an *Error of the given kind.
func IsKind(err error, kind apierror.Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsStatus checks if err is an *Error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}

// IsSuccessStatus checks if a status code represents success (2xx)
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// statusError classifies a non-2xx response.
func statusError(status int, body []byte) *Error {
	msg := ExtractMessage(body, status)
	kind, ok := apierror.ClassifyStatus(status)
	if !ok {
		kind = apierror.ClassifyMessage(msg)
		if kind == apierror.KindUnknown && status >= 500 {
			kind = apierror.KindServer
		}
	}
	return &Error{Kind: kind, Status: status, Message: msg, Body: body, Stage: StageResponse}
}
