package httpclient

import (
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantify/plantify-go/apierror"
	"github.com/plantify/plantify-go/logger"
)

type staticResolver string

func (s staticResolver) Resolve(context.Context) string { return string(s) }

type tokenFunc func(context.Context) (string, error)

func (f tokenFunc) AccessToken(ctx context.Context) (string, error) { return f(ctx) }

type fakeChecker struct {
	calls atomic.Int32
	err   error
}

func (f *fakeChecker) Check(context.Context) error {
	f.calls.Add(1)
	return f.err
}

// recorded is what the test server saw for one request.
type recorded struct {
	method      string
	path        string
	contentType string
	auth        string
	requestID   string
	body        []byte
	form        map[string][]string
	fileName    string
	fileData    []byte
}

type server struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recorded
	respond  func(n int, w nethttp.ResponseWriter)
}

func newServer(t *testing.T, respond func(n int, w nethttp.ResponseWriter)) *server {
	t.Helper()
	s := &server{respond: respond}
	s.Server = httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		rec := recorded{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			auth:        r.Header.Get("Authorization"),
			requestID:   r.Header.Get(HeaderXRequestID),
		}
		if strings.HasPrefix(rec.contentType, "multipart/form-data") {
			if err := r.ParseMultipartForm(1 << 20); err == nil {
				rec.form = r.MultipartForm.Value
				if f, h, err := r.FormFile("image"); err == nil {
					rec.fileName = h.Filename
					rec.fileData, _ = io.ReadAll(f)
					f.Close()
				}
			}
		} else {
			rec.body, _ = io.ReadAll(r.Body)
		}

		s.mu.Lock()
		s.requests = append(s.requests, rec)
		n := len(s.requests)
		s.mu.Unlock()

		s.respond(n, w)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *server) hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *server) request(i int) recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i]
}

func (s *server) accountBase() staticResolver { return staticResolver(s.URL + "/account") }

func reply(status int, body string) func(int, nethttp.ResponseWriter) {
	return func(_ int, w nethttp.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func newTestClient(s *server) *Builder {
	return NewBuilder(logger.Nop()).
		WithBaseURLResolver(s.accountBase()).
		WithRetries(3, time.Millisecond)
}

func asError(t *testing.T, err error) *Error {
	t.Helper()
	var e *Error
	require.True(t, errors.As(err, &e), "expected *Error, got %T: %v", err, err)
	return e
}

func TestJSONBodySetsJSONContentType(t *testing.T) {
	s := newServer(t, reply(200, `{"first_name":"A"}`))
	c := newTestClient(s).Build()

	resp, err := c.Do(context.Background(), &Request{
		Method:   nethttp.MethodPut,
		Endpoint: EndpointProfile,
		JSON:     map[string]string{"first_name": "A"},
		Headers:  map[string]string{"Content-Type": "text/plain"},
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	got := s.request(0)
	assert.Equal(t, nethttp.MethodPut, got.method)
	assert.Equal(t, "/account/profile/", got.path)
	assert.Equal(t, "application/json", got.contentType)
	assert.JSONEq(t, `{"first_name":"A"}`, string(got.body))
}

func TestMultipartBodyUsesBoundaryContentType(t *testing.T) {
	s := newServer(t, reply(200, `{}`))
	c := newTestClient(s).Build()

	_, err := c.Do(context.Background(), &Request{
		Method:   nethttp.MethodPut,
		Endpoint: EndpointProfile,
		Headers:  map[string]string{"Content-Type": "application/json"},
		Multipart: &Multipart{
			Fields: map[string]string{"first_name": "A"},
			Files: []File{{
				Field:       "image",
				Name:        "profile.jpg",
				ContentType: "image/jpeg",
				Data:        []byte{0xff, 0xd8, 0xff},
			}},
		},
	})
	require.NoError(t, err)

	got := s.request(0)
	assert.True(t, strings.HasPrefix(got.contentType, "multipart/form-data; boundary="), got.contentType)
	assert.NotContains(t, got.contentType, "application/json")
	assert.Equal(t, []string{"A"}, got.form["first_name"])
	assert.Equal(t, "profile.jpg", got.fileName)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, got.fileData)
}

func TestBearerTokenAttachment(t *testing.T) {
	s := newServer(t, reply(200, `{}`))
	token := "access-1"
	c := newTestClient(s).
		WithTokenSource(tokenFunc(func(context.Context) (string, error) { return token, nil })).
		Build()
	ctx := context.Background()

	_, err := c.Do(ctx, &Request{Endpoint: EndpointProfile})
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-1", s.request(0).auth)

	_, err = c.Do(ctx, &Request{Method: nethttp.MethodPost, Endpoint: EndpointLogin, SkipAuth: true})
	require.NoError(t, err)
	assert.Empty(t, s.request(1).auth)

	token = ""
	_, err = c.Do(ctx, &Request{Endpoint: EndpointProfile})
	require.NoError(t, err)
	assert.Empty(t, s.request(2).auth)
}

func TestTokenSourceFailureIsStorageError(t *testing.T) {
	s := newServer(t, reply(200, `{}`))
	c := newTestClient(s).
		WithTokenSource(tokenFunc(func(context.Context) (string, error) { return "", errors.New("disk gone") })).
		Build()

	_, err := c.Do(context.Background(), &Request{Endpoint: EndpointProfile})
	e := asError(t, err)
	assert.Equal(t, apierror.KindStorage, e.Kind)
	assert.Equal(t, 0, s.hits())
}

func TestFieldErrorMessageExtracted(t *testing.T) {
	s := newServer(t, reply(400, `{"email": ["This field is required."]}`))
	c := newTestClient(s).Build()

	_, err := c.Do(context.Background(), &Request{
		Method:   nethttp.MethodPost,
		Endpoint: EndpointRegister,
		JSON:     map[string]string{},
	})
	e := asError(t, err)
	assert.Equal(t, "This field is required.", e.Message)
	assert.Equal(t, 400, e.Status)
	assert.Equal(t, apierror.KindValidation, e.Kind)
	assert.Equal(t, apierror.KindValidation, apierror.Classify(err))
	assert.Equal(t, 1, s.hits())
}

func TestTransientFailuresAreRetried(t *testing.T) {
	failTwice := func(n int, w nethttp.ResponseWriter) {
		if n <= 2 {
			reply(503, `{"detail":"Service unavailable"}`)(n, w)
			return
		}
		reply(200, `{"ok":true}`)(n, w)
	}

	t.Run("succeeds_within_attempts", func(t *testing.T) {
		s := newServer(t, failTwice)
		c := newTestClient(s).WithRetries(3, time.Millisecond).Build()

		resp, err := c.Do(context.Background(), &Request{Endpoint: EndpointProfile})
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Stats.Attempts)
		assert.Equal(t, 3, s.hits())
	})

	t.Run("exhausted_returns_last_error", func(t *testing.T) {
		s := newServer(t, failTwice)
		c := newTestClient(s).WithRetries(2, time.Millisecond).Build()

		_, err := c.Do(context.Background(), &Request{Endpoint: EndpointProfile})
		e := asError(t, err)
		assert.Equal(t, 503, e.Status)
		assert.Equal(t, "Service unavailable", e.Message)
		assert.Equal(t, apierror.KindServer, e.Kind)
		assert.Equal(t, 2, s.hits())
	})
}

func TestNonTransientFailuresAreNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   apierror.Kind
	}{
		{name: "validation", status: 400, body: `{"non_field_errors":["Passwords do not match."]}`, kind: apierror.KindValidation},
		{name: "authentication", status: 401, body: `{"detail":"Invalid credentials"}`, kind: apierror.KindAuthentication},
		{name: "not_found", status: 404, body: ``, kind: apierror.KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t, reply(tt.status, tt.body))
			c := newTestClient(s).Build()

			_, err := c.Do(context.Background(), &Request{Endpoint: EndpointProfile})
			e := asError(t, err)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, 1, s.hits())
		})
	}
}

func TestNonIdempotentRequestsRetryOnlyWhenMarked(t *testing.T) {
	s := newServer(t, reply(502, `{}`))
	c := newTestClient(s).Build()
	ctx := context.Background()

	_, err := c.Do(ctx, &Request{Method: nethttp.MethodPost, Endpoint: EndpointLogin, JSON: map[string]string{}})
	require.Error(t, err)
	assert.Equal(t, 1, s.hits())

	_, err = c.Do(ctx, &Request{Method: nethttp.MethodPost, Endpoint: EndpointLogin, JSON: map[string]string{}, Retryable: true})
	require.Error(t, err)
	assert.Equal(t, 4, s.hits())
}

func TestPreflightFailureSendsNothing(t *testing.T) {
	s := newServer(t, reply(200, `{}`))
	checker := &fakeChecker{err: errors.New("no route")}
	c := newTestClient(s).WithConnectivityChecker(checker).Build()

	_, err := c.Do(context.Background(), &Request{Method: nethttp.MethodPost, Endpoint: EndpointLogin})
	e := asError(t, err)
	assert.Equal(t, apierror.KindNetwork, e.Kind)
	assert.Equal(t, StagePreflight, e.Stage)
	assert.Equal(t, MsgNoInternet, e.Message)
	assert.Equal(t, 0, s.hits())
	assert.Equal(t, int32(3), checker.calls.Load(), "pre-check failures are retried")
	assert.Equal(t, apierror.KindNetwork, apierror.Classify(err))
}

func TestPreflightSuccessProceeds(t *testing.T) {
	s := newServer(t, reply(200, `{}`))
	checker := &fakeChecker{}
	c := newTestClient(s).WithConnectivityChecker(checker).Build()

	_, err := c.Do(context.Background(), &Request{Endpoint: EndpointProfile})
	require.NoError(t, err)
	assert.Equal(t, int32(1), checker.calls.Load())
}

func TestAttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	s := newServer(t, func(_ int, w nethttp.ResponseWriter) {
		<-release
	})
	t.Cleanup(func() { close(release) })

	c := newTestClient(s).WithTimeout(50*time.Millisecond).WithRetries(1, 0).Build()

	_, err := c.Do(context.Background(), &Request{Endpoint: EndpointProfile})
	e := asError(t, err)
	assert.Equal(t, apierror.KindTimeout, e.Kind)
	assert.Equal(t, MsgTimeout, e.Message)
}

func TestNetworkErrorRetried(t *testing.T) {
	c := NewBuilder(logger.Nop()).
		WithBaseURLResolver(staticResolver("http://127.0.0.1:1/account")).
		WithRetries(2, time.Millisecond).
		Build()

	_, err := c.Do(context.Background(), &Request{Endpoint: EndpointProfile})
	e := asError(t, err)
	assert.Equal(t, apierror.KindNetwork, e.Kind)
	assert.Equal(t, 0, e.Status)
	assert.True(t, e.Transient())
}

func TestContextCancelStopsRetries(t *testing.T) {
	s := newServer(t, reply(503, `{}`))
	c := newTestClient(s).WithRetries(5, 10*time.Second).Build()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err := c.Do(ctx, &Request{Endpoint: EndpointProfile})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 1, s.hits())
}

func TestInvalidJSONResponse(t *testing.T) {
	s := newServer(t, reply(200, `<html>oops</html>`))
	c := newTestClient(s).Build()

	resp, err := c.Do(context.Background(), &Request{Endpoint: EndpointProfile})
	require.NoError(t, err)

	var out map[string]any
	err = resp.JSON(&out)
	e := asError(t, err)
	assert.Equal(t, MsgInvalidJSON, e.Message)
	assert.Equal(t, apierror.KindServer, apierror.Classify(err))

	empty := &Response{StatusCode: 204}
	assert.NoError(t, empty.JSON(&out))
}

func TestCropDiseaseEndpointUsesSiblingService(t *testing.T) {
	s := newServer(t, reply(200, `{"disease_name":"Leaf Blight","confidence":91.5}`))
	c := newTestClient(s).Build()

	resp, err := c.Do(context.Background(), &Request{
		Method:   nethttp.MethodPost,
		Endpoint: EndpointCropDiseasePredict,
		Multipart: &Multipart{Files: []File{{
			Field: "image", Name: "disease_image.jpg", ContentType: "image/jpeg", Data: []byte("img"),
		}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "/crop-disease/predict/", s.request(0).path)

	var out struct {
		Disease    string  `json:"disease_name"`
		Confidence float64 `json:"confidence"`
	}
	require.NoError(t, resp.JSON(&out))
	assert.Equal(t, "Leaf Blight", out.Disease)
}

func TestRequestIDSharedAcrossAttempts(t *testing.T) {
	s := newServer(t, func(n int, w nethttp.ResponseWriter) {
		if n == 1 {
			w.WriteHeader(500)
			return
		}
		w.WriteHeader(200)
	})
	c := newTestClient(s).Build()

	_, err := c.Do(context.Background(), &Request{Endpoint: EndpointProfile})
	require.NoError(t, err)

	first, second := s.request(0).requestID, s.request(1).requestID
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)

	ctx := WithRequestID(context.Background(), "fixed-id")
	_, err = c.Do(ctx, &Request{Endpoint: EndpointProfile})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", s.request(2).requestID)
}

func TestInterceptors(t *testing.T) {
	s := newServer(t, reply(200, `{}`))
	var seen atomic.Int32
	c := newTestClient(s).
		WithDefaultHeader("X-Client", "plantify-go").
		WithRequestInterceptor(func(_ context.Context, req *nethttp.Request) error {
			assert.Equal(t, "plantify-go", req.Header.Get("X-Client"))
			return nil
		}).
		WithResponseInterceptor(func(context.Context, *nethttp.Request, *nethttp.Response) error {
			seen.Add(1)
			return nil
		}).
		Build()

	_, err := c.Do(context.Background(), &Request{Endpoint: EndpointProfile})
	require.NoError(t, err)
	assert.Equal(t, int32(1), seen.Load())

	failing := newTestClient(s).
		WithRequestInterceptor(func(context.Context, *nethttp.Request) error { return errors.New("nope") }).
		Build()
	_, err = failing.Do(context.Background(), &Request{Endpoint: EndpointProfile})
	e := asError(t, err)
	assert.Equal(t, StageRequest, e.Stage)
	assert.False(t, e.Transient())
}

func TestRequestValidation(t *testing.T) {
	c := NewBuilder(logger.Nop()).WithBaseURLResolver(staticResolver("http://x/account")).Build()
	ctx := context.Background()

	_, err := c.Do(ctx, nil)
	assert.True(t, IsKind(err, apierror.KindValidation))

	_, err = c.Do(ctx, &Request{Endpoint: "nope"})
	assert.True(t, IsKind(err, apierror.KindValidation))

	_, err = c.Do(ctx, &Request{Endpoint: EndpointProfile, JSON: map[string]string{}, Multipart: &Multipart{}})
	assert.True(t, IsKind(err, apierror.KindValidation))

	_, err = c.Do(ctx, &Request{Endpoint: EndpointProfile, JSON: make(chan int)})
	assert.True(t, IsKind(err, apierror.KindValidation))

	noResolver := NewBuilder(logger.Nop()).Build()
	_, err = noResolver.Do(ctx, &Request{Endpoint: EndpointProfile})
	assert.True(t, IsKind(err, apierror.KindValidation))
}

func TestLogPayloadsMasksSecrets(t *testing.T) {
	s := newServer(t, reply(200, `{"access":"new-token"}`))
	var buf safeBuffer
	log := logger.NewWithWriter(&buf, "debug", false, nil)
	c := NewBuilder(log).
		WithBaseURLResolver(s.accountBase()).
		WithLogPayloads(true).
		Build()

	_, err := c.Do(context.Background(), &Request{
		Method:   nethttp.MethodPost,
		Endpoint: EndpointLogin,
		JSON:     map[string]string{"email": "a@b.co", "password": "Secret1!"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "a@b.co")
	assert.NotContains(t, out, "Secret1!")
	assert.NotContains(t, out, "new-token")
}

type safeBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *safeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *safeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestIsStatus(t *testing.T) {
	err := error(&Error{Kind: apierror.KindAuthentication, Status: 401})
	assert.True(t, IsStatus(err, 401))
	assert.False(t, IsStatus(err, 403))
	assert.False(t, IsStatus(errors.New("x"), 401))
}
