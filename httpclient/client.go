package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	nethttp "net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/plantify/plantify-go/apierror"
	"github.com/plantify/plantify-go/internal/tracking"
	"github.com/plantify/plantify-go/logger"
)

const (
	// DefaultTimeout bounds each attempt
	DefaultTimeout = 30 * time.Second

	// DefaultMaxAttempts is the default number of attempts per logical request
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is multiplied by the attempt number between attempts
	DefaultRetryDelay = 1 * time.Second

	defaultAccountSegment = "/account"
	defaultDiseaseSegment = "/crop-disease"

	contentTypeJSON = "application/json"
)

// client implements the Client interface
type client struct {
	httpClient           *nethttp.Client
	logger               logger.Logger
	config               *Config
	resolver             BaseURLResolver
	tokens               TokenSource
	connectivity         ConnectivityChecker
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// Builder provides a fluent interface for configuring the client
type Builder struct {
	config       *Config
	logger       logger.Logger
	resolver     BaseURLResolver
	tokens       TokenSource
	connectivity ConnectivityChecker
	transport    nethttp.RoundTripper
}

// NewBuilder creates a new client builder
func NewBuilder(log logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{
		config: &Config{
			Timeout:        DefaultTimeout,
			MaxAttempts:    DefaultMaxAttempts,
			RetryDelay:     DefaultRetryDelay,
			AccountSegment: defaultAccountSegment,
			DiseaseSegment: defaultDiseaseSegment,
			DefaultHeaders: make(map[string]string),
		},
		logger: log,
	}
}

// WithTimeout sets the per-attempt timeout
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithRetries sets the attempt limit and the base retry delay
func (b *Builder) WithRetries(maxAttempts int, retryDelay time.Duration) *Builder {
	b.config.MaxAttempts = maxAttempts
	b.config.RetryDelay = retryDelay
	return b
}

// WithBaseURLResolver sets where endpoint requests get their base URL
func (b *Builder) WithBaseURLResolver(r BaseURLResolver) *Builder {
	b.resolver = r
	return b
}

// WithTokenSource sets the bearer token source
func (b *Builder) WithTokenSource(t TokenSource) *Builder {
	b.tokens = t
	return b
}

// WithConnectivityChecker enables the pre-check run before every attempt
func (b *Builder) WithConnectivityChecker(c ConnectivityChecker) *Builder {
	b.connectivity = c
	return b
}

// WithServiceSegments sets the path segments used to derive the
// crop-disease base from the account base
func (b *Builder) WithServiceSegments(account, disease string) *Builder {
	b.config.AccountSegment = account
	b.config.DiseaseSegment = disease
	return b
}

// WithDefaultHeader adds a header sent with every request
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithRequestInterceptor adds a request interceptor
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor adds a response interceptor
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.config.ResponseInterceptors = append(b.config.ResponseInterceptors, interceptor)
	return b
}

// WithLogPayloads enables logging of headers and JSON bodies
func (b *Builder) WithLogPayloads(enabled bool) *Builder {
	b.config.LogPayloads = enabled
	return b
}

// WithTransport sets the underlying round tripper. It is wrapped with
// OpenTelemetry instrumentation.
func (b *Builder) WithTransport(rt nethttp.RoundTripper) *Builder {
	b.transport = rt
	return b
}

// Build creates the client with the configured options
func (b *Builder) Build() Client {
	base := b.transport
	if base == nil {
		base = nethttp.DefaultTransport
	}
	if b.config.MaxAttempts < 1 {
		b.config.MaxAttempts = 1
	}
	if b.config.Timeout <= 0 {
		b.config.Timeout = DefaultTimeout
	}

	return &client{
		httpClient:   &nethttp.Client{Transport: otelhttp.NewTransport(base)},
		logger:       b.logger,
		config:       b.config,
		resolver:     b.resolver,
		tokens:       b.tokens,
		connectivity: b.connectivity,
		requestInterceptors: append(
			[]RequestInterceptor{NewRequestIDInterceptor()},
			b.config.RequestInterceptors...,
		),
		responseInterceptors: b.config.ResponseInterceptors,
	}
}

// Do runs the request with pre-check, auth and bounded retry. The returned
// error is always an *Error.
func (c *client) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	payload, contentType, verr := encodeBody(req)
	if verr != nil {
		return nil, verr
	}

	ctx, requestID := ensureRequestID(ctx)
	start := time.Now()

	var lastErr *Error
	attempt := 1
	for ; ; attempt++ {
		resp, err := c.attempt(ctx, req, payload, contentType, attempt)
		if err == nil {
			resp.Stats = Stats{ElapsedTime: time.Since(start), Attempts: attempt}
			c.record(ctx, req, resp.StatusCode, attempt, "", start)
			return resp, nil
		}
		lastErr = err

		if attempt >= c.config.MaxAttempts || !c.shouldRetry(ctx, req, err) {
			break
		}

		delay := time.Duration(attempt) * c.config.RetryDelay
		c.logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("endpoint", req.name()).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("API request failed, retrying")

		if !sleep(ctx, delay) {
			break
		}
	}

	c.record(ctx, req, lastErr.Status, attempt, string(lastErr.Kind), start)
	c.logger.Error().
		Err(lastErr).
		Str("request_id", requestID).
		Str("endpoint", req.name()).
		Int("attempts", attempt).
		Msg("API request failed")
	return nil, lastErr
}

func (c *client) shouldRetry(ctx context.Context, req *Request, err *Error) bool {
	if ctx.Err() != nil || !err.Transient() {
		return false
	}
	return isIdempotent(req.Method) || req.Retryable || err.Stage == StagePreflight
}

func isIdempotent(method string) bool {
	switch method {
	case nethttp.MethodGet, nethttp.MethodHead, nethttp.MethodOptions, nethttp.MethodPut, nethttp.MethodDelete:
		return true
	default:
		return false
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *client) attempt(ctx context.Context, req *Request, payload []byte, contentType string, attempt int) (*Response, *Error) {
	if c.connectivity != nil {
		if err := c.connectivity.Check(ctx); err != nil {
			return nil, &Error{Kind: apierror.KindNetwork, Message: MsgNoInternet, Stage: StagePreflight, Err: err}
		}
	}

	target, verr := c.targetURL(ctx, req)
	if verr != nil {
		return nil, verr
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	httpReq, verr := c.buildRequest(attemptCtx, req, target, payload, contentType)
	if verr != nil {
		return nil, verr
	}

	c.logRequest(req, httpReq, payload, attempt)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	return c.buildResponse(attemptCtx, httpReq, httpResp, start)
}

// validateRequest validates the request before sending
func (c *client) validateRequest(req *Request) *Error {
	if req == nil {
		return NewValidationError("request cannot be nil", nil)
	}
	if req.Method == "" {
		req.Method = nethttp.MethodGet
	}
	if req.URL == "" {
		if _, ok := req.Endpoint.Path(); !ok {
			return NewValidationError(fmt.Sprintf("unknown endpoint %q", req.Endpoint), nil)
		}
		if c.resolver == nil {
			return NewValidationError("no base URL resolver configured", nil)
		}
	}
	if req.JSON != nil && req.Multipart != nil {
		return NewValidationError("request cannot carry both JSON and multipart bodies", nil)
	}
	return nil
}

func encodeBody(req *Request) ([]byte, string, *Error) {
	switch {
	case req.Multipart != nil:
		body, ct, err := req.Multipart.encode()
		if err != nil {
			return nil, "", NewValidationError("failed to encode multipart body", err)
		}
		return body, ct, nil
	case req.JSON != nil:
		body, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, "", NewValidationError("failed to encode JSON body", err)
		}
		return body, contentTypeJSON, nil
	default:
		return nil, contentTypeJSON, nil
	}
}

func (c *client) targetURL(ctx context.Context, req *Request) (string, *Error) {
	if req.URL != "" {
		return req.URL, nil
	}
	base := c.resolver.Resolve(ctx)
	target, ok := req.Endpoint.URL(base, c.config.AccountSegment, c.config.DiseaseSegment)
	if !ok {
		return "", NewValidationError(fmt.Sprintf("unknown endpoint %q", req.Endpoint), nil)
	}
	return target, nil
}

// buildRequest constructs an *http.Request, applies headers/auth, and runs request interceptors.
func (c *client) buildRequest(ctx context.Context, req *Request, target string, payload []byte, contentType string) (*nethttp.Request, *Error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, NewValidationError("failed to create HTTP request", err)
	}

	httpReq.Header.Set("Accept", contentTypeJSON)
	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	// multipart bodies always carry the writer's boundary
	httpReq.Header.Set("Content-Type", contentType)

	if !req.SkipAuth && c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, &Error{
				Kind:    apierror.KindStorage,
				Message: "Unable to read stored credentials",
				Stage:   StageRequest,
				Err:     err,
			}
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for _, interceptor := range c.requestInterceptors {
		if err := interceptor(ctx, httpReq); err != nil {
			return nil, &Error{
				Kind:    apierror.KindUnknown,
				Message: "request interceptor failed",
				Stage:   StageRequest,
				Err:     err,
			}
		}
	}
	return httpReq, nil
}

// buildResponse runs response interceptors, reads the body and classifies
// non-2xx statuses.
func (c *client) buildResponse(ctx context.Context, httpReq *nethttp.Request, httpResp *nethttp.Response, start time.Time) (*Response, *Error) {
	defer httpResp.Body.Close()

	for _, interceptor := range c.responseInterceptors {
		if err := interceptor(ctx, httpReq, httpResp); err != nil {
			return nil, &Error{
				Kind:    apierror.KindUnknown,
				Status:  httpResp.StatusCode,
				Message: "response interceptor failed",
				Stage:   StageResponse,
				Err:     err,
			}
		}
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(ctx, err)
	}

	c.logResponse(httpResp.StatusCode, respBody, time.Since(start))

	if !IsSuccessStatus(httpResp.StatusCode) {
		return nil, statusError(httpResp.StatusCode, respBody)
	}
	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}, nil
}

// transportError classifies a failure where no complete response was received.
func transportError(ctx context.Context, err error) *Error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &Error{Kind: apierror.KindUnknown, Message: MsgCancelled, Stage: StageRequest, Err: err}
	}
	if isTimeout(err) {
		return &Error{Kind: apierror.KindTimeout, Message: MsgTimeout, Stage: StageRequest, Err: err}
	}
	return &Error{Kind: apierror.KindNetwork, Message: MsgNetwork, Stage: StageRequest, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *client) record(ctx context.Context, req *Request, status, attempts int, kind string, start time.Time) {
	tracking.RecordRequest(ctx, tracking.Request{
		Method:   req.Method,
		Endpoint: req.name(),
		Status:   status,
		Attempts: attempts,
		Kind:     kind,
		Duration: time.Since(start),
	})
}

func (r *Request) name() string {
	if r.URL != "" && r.Endpoint == "" {
		return "custom"
	}
	return string(r.Endpoint)
}

// logRequest logs the outgoing attempt
func (c *client) logRequest(req *Request, httpReq *nethttp.Request, payload []byte, attempt int) {
	requestID := httpReq.Header.Get(HeaderXRequestID)
	c.logger.Info().
		Str("direction", "outbound").
		Str("method", httpReq.Method).
		Str("url", httpReq.URL.String()).
		Str("request_id", requestID).
		Int("attempt", attempt).
		Msg("API request")

	if !c.config.LogPayloads {
		return
	}
	event := c.logger.Debug().
		Str("request_id", requestID).
		Interface("headers", map[string][]string(httpReq.Header))
	if req.Multipart != nil {
		event = event.Int("body_bytes", len(payload))
	} else if len(payload) > 0 {
		event = event.Bytes("body", payload)
	}
	event.Msg("API request payload")
}

// logResponse logs the incoming response
func (c *client) logResponse(status int, body []byte, elapsed time.Duration) {
	event := c.logger.Info().
		Str("direction", "inbound").
		Int("status", status).
		Dur("elapsed", elapsed)
	if c.config.LogPayloads && len(body) > 0 {
		event = event.Bytes("body", body)
	}
	event.Msg("API response")
}
