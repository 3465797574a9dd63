// Package fakeapi runs an in-process Plantify backend for tests. It serves
// the account and crop-disease routes on an httptest server using echo,
// keeps users and tokens in memory, and can inject failures per path.
package fakeapi

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Service path prefixes
const (
	AccountPrefix     = "/account"
	CropDiseasePrefix = "/crop-disease"
)

// OTP is the verification code every registration is issued.
const OTP = "123456"

// User is an account known to the fake backend.
type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	Password     string `json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone"`
	Bio          string `json:"bio"`
	ProfileImage string `json:"profile_image"`
	Verified     bool   `json:"is_verified"`
}

// Prediction is the body returned by the predict route.
type Prediction struct {
	DiseaseName string  `json:"disease_name"`
	Confidence  float64 `json:"confidence"`
	ClassLabel  string  `json:"class_label,omitempty"`
}

// Recorded is the last request received on a path.
type Recorded struct {
	Method string
	Header http.Header
	Body   []byte
}

type failure struct {
	status int
	body   string
}

// Server is the fake backend. Embedded httptest.Server provides URL and Close.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	nextID     int
	users      map[string]*User
	access     map[string]string
	refresh    map[string]string
	resets     map[string]string
	prediction Prediction
	calls      map[string]int
	last       map[string]Recorded
	failures   map[string][]failure
	delays     map[string]time.Duration
}

// New starts a fake backend. Callers must Close it.
func New() *Server {
	s := &Server{
		users:    make(map[string]*User),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
		resets:   make(map[string]string),
		calls:    make(map[string]int),
		last:     make(map[string]Recorded),
		failures: make(map[string][]failure),
		delays:   make(map[string]time.Duration),
		prediction: Prediction{
			DiseaseName: "Tomato___Late_blight",
			Confidence:  0.97,
			ClassLabel:  "late_blight",
		},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.recordAndInject)
	s.routes(e)

	s.Server = httptest.NewServer(e)
	return s
}

// AccountURL is the account-service base URL.
func (s *Server) AccountURL() string {
	return s.URL + AccountPrefix
}

// AddUser registers u directly, bypassing the register route.
func (s *Server) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u.ID = s.nextID
	s.users[strings.ToLower(u.Email)] = &u
}

// User returns a copy of the stored account.
func (s *Server) User(email string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// IssueTokens creates a session for email and returns its token pair.
func (s *Server) IssueTokens(email string) (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(email)
}

func (s *Server) issueLocked(email string) (access, refresh string) {
	access, refresh = uuid.NewString(), uuid.NewString()
	s.access[access] = email
	s.refresh[refresh] = email
	return access, refresh
}

// ExpireAccessTokens invalidates every access token. Refresh tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]string)
}

// ExpireSessions invalidates every access and refresh token.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]string)
	s.refresh = make(map[string]string)
}

// ResetToken returns the pending password reset token for email.
func (s *Server) ResetToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, owner := range s.resets {
		if owner == email {
			return token
		}
	}
	return ""
}

// SetPrediction sets the result of the predict route.
func (s *Server) SetPrediction(p Prediction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prediction = p
}

// FailNext makes the next request on path answer status with body instead
// of reaching its handler. Calls queue up in order.
func (s *Server) FailNext(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], failure{status: status, body: body})
}

// SetDelay holds every later request on path for d before answering. The
// wait ends early when the client goes away.
func (s *Server) SetDelay(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[path] = d
}

// Calls returns how many requests reached path, including injected failures.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// LastRequest returns the most recent request received on path.
func (s *Server) LastRequest(path string) (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.last[path]
	return r, ok
}

func (s *Server) recordAndInject(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		}
		req.Body = io.NopCloser(bytes.NewReader(body))

		path := req.URL.Path
		s.mu.Lock()
		s.calls[path]++
		s.last[path] = Recorded{Method: req.Method, Header: req.Header.Clone(), Body: body}
		var injected *failure
		if queue := s.failures[path]; len(queue) > 0 {
			injected = &queue[0]
			s.failures[path] = queue[1:]
		}
		delay := s.delays[path]
		s.mu.Unlock()

		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-t.C:
			case <-req.Context().Done():
				t.Stop()
				return req.Context().Err()
			}
		}

		if injected != nil {
			return c.Blob(injected.status, echo.MIMEApplicationJSON, []byte(injected.body))
		}
		return next(c)
	}
}

// authenticated returns the email owning the bearer token of c.
func (s *Server) authenticated(c echo.Context) (string, bool) {
	token, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if !ok {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.access[token]
	return email, ok
}
