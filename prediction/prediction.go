// Package prediction sends leaf photos to the crop-disease service and keeps
// the local prediction history.
package prediction

import (
	"context"
	"errors"
	nethttp "net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plantify/plantify-go/apierror"
	"github.com/plantify/plantify-go/httpclient"
	"github.com/plantify/plantify-go/logger"
	"github.com/plantify/plantify-go/store"
	"github.com/plantify/plantify-go/validation"
)

const (
	imageField       = "image"
	defaultImageName = "disease_image.jpg"
	defaultImageType = "image/jpeg"

	// DefaultMaxHistory is how many entries the history keeps, newest first.
	DefaultMaxHistory = 100
)

var errNoDisease = errors.New("prediction response carried no disease name")

// Image is the photo to classify.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
	// URI is where the photo lives locally. It is kept in the history entry.
	URI string
}

// Prediction is the crop-disease service's answer.
type Prediction struct {
	DiseaseName string  `json:"disease_name"`
	Confidence  float64 `json:"confidence"`
	ClassLabel  string  `json:"class_label,omitempty"`
}

// Entry is one prediction history record.
type Entry struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Time       time.Time `json:"time"`
	Disease    string    `json:"disease"`
	Confidence float64   `json:"confidence"`
	ImageURL   string    `json:"image_url"`
}

// Result is the outcome of Predict. On success Entry is the history record
// written for it.
type Result struct {
	Prediction Prediction
	Entry      Entry
	Failure    *apierror.Info
}

// OK reports whether the prediction succeeded.
func (r Result) OK() bool { return r.Failure == nil }

// Option configures a Service.
type Option func(*Service)

// WithMaxHistory bounds the stored history. Values below 1 are ignored.
func WithMaxHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

// WithClock sets the time source for history entries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service runs predictions.
type Service struct {
	client     httpclient.Client
	store      store.Store
	logger     logger.Logger
	now        func() time.Time
	maxHistory int

	// mu serializes history read-modify-write cycles.
	mu sync.Mutex
}

// NewService creates a Service.
func NewService(client httpclient.Client, st store.Store, log logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		client:     client,
		store:      st,
		logger:     log.WithFields(map[string]any{"component": "prediction"}),
		now:        time.Now,
		maxHistory: DefaultMaxHistory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Predict uploads img to the crop-disease service and records the answer in
// the history. A history write failure is logged and does not fail the
// prediction.
func (s *Service) Predict(ctx context.Context, img Image) Result {
	if len(img.Data) == 0 {
		return s.fail(validation.NewFieldError(imageField, "Please select an image first"))
	}

	name, ct := img.Name, img.ContentType
	if name == "" {
		name = defaultImageName
	}
	if ct == "" {
		ct = defaultImageType
	}

	resp, err := s.client.Do(ctx, &httpclient.Request{
		Method:   nethttp.MethodPost,
		Endpoint: httpclient.EndpointCropDiseasePredict,
		Multipart: &httpclient.Multipart{Files: []httpclient.File{
			{Field: imageField, Name: name, ContentType: ct, Data: img.Data},
		}},
		Retryable: true,
	})
	if err != nil {
		return s.fail(err)
	}

	var p Prediction
	if err := resp.JSON(&p); err != nil {
		return s.fail(err)
	}
	if strings.TrimSpace(p.DiseaseName) == "" {
		return s.fail(errNoDisease)
	}

	entry := Entry{
		ID:         uuid.NewString(),
		Email:      s.userEmail(ctx),
		Time:       s.now().UTC(),
		Disease:    p.DiseaseName,
		Confidence: p.Confidence,
		ImageURL:   img.URI,
	}
	if err := s.record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to save prediction history")
	}

	s.logger.Info().
		Str("disease", p.DiseaseName).
		Interface("confidence", p.Confidence).
		Msg("prediction completed")
	return Result{Prediction: p, Entry: entry}
}

func (s *Service) fail(err error) Result {
	info := apierror.Describe(err, apierror.OpPrediction)
	s.logger.Warn().Err(err).Str("kind", info.Kind.String()).Msg("prediction failed")
	return Result{Failure: info}
}

func (s *Service) userEmail(ctx context.Context) string {
	email, err := store.GetString(ctx, s.store, store.KeyUserEmail)
	if err != nil {
		s.logger.Debug().Err(err).Msg("user email unavailable")
	}
	return email
}
