package httpclient

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"time"

	"github.com/plantify/plantify-go/apierror"
)

// Client executes logical API requests.
type Client interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// BaseURLResolver supplies the account-service base URL.
type BaseURLResolver interface {
	Resolve(ctx context.Context) string
}

// TokenSource supplies the current access token; "" means unauthenticated.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// ConnectivityChecker reports whether the internet is reachable at all.
type ConnectivityChecker interface {
	Check(ctx context.Context) error
}

// Request is one logical API call.
type Request struct {
	Method string
	// Endpoint is resolved against the current base URL. Ignored when URL is set.
	Endpoint Endpoint
	URL      string
	// JSON is serialized as the request body. Mutually exclusive with Multipart.
	JSON      any
	Multipart *Multipart
	Headers   map[string]string
	// Retryable marks a non-idempotent request as safe to repeat.
	Retryable bool
	// SkipAuth suppresses the Authorization header.
	SkipAuth bool
}

// Response is a successful (2xx) response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	Stats      Stats
}

// Stats contains request execution statistics
type Stats struct {
	ElapsedTime time.Duration
	Attempts    int
}

// JSON decodes the response body into v. An empty body leaves v untouched.
func (r *Response) JSON(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &Error{
			Kind:    apierror.KindServer,
			Status:  r.StatusCode,
			Message: MsgInvalidJSON,
			Body:    r.Body,
			Stage:   StageResponse,
			Err:     err,
		}
	}
	return nil
}

// RequestInterceptor is called before sending each attempt
type RequestInterceptor func(ctx context.Context, req *nethttp.Request) error

// ResponseInterceptor is called after receiving each response
type ResponseInterceptor func(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error

// Config holds the executor configuration
type Config struct {
	// Timeout bounds each attempt.
	Timeout     time.Duration
	MaxAttempts int
	// RetryDelay is multiplied by the attempt number before the next attempt.
	RetryDelay           time.Duration
	AccountSegment       string
	DiseaseSegment       string
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
	DefaultHeaders       map[string]string
	// LogPayloads enables debug-level logging of headers and JSON bodies
	LogPayloads bool
}
