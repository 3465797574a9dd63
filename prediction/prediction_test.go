package prediction

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/plantify/plantify-go/apierror"
	"github.com/plantify/plantify-go/httpclient"
	"github.com/plantify/plantify-go/logger"
	"github.com/plantify/plantify-go/store"
	tst "github.com/plantify/plantify-go/testing"
	"github.com/plantify/plantify-go/testing/fakeapi"
	"github.com/plantify/plantify-go/testing/mocks"
)

const predictPath = "/crop-disease/predict/"

var fixedTime = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

type staticBase string

func (b staticBase) Resolve(context.Context) string { return string(b) }

func newClient(srv *fakeapi.Server) httpclient.Client {
	return httpclient.NewBuilder(logger.Nop()).
		WithBaseURLResolver(staticBase(srv.AccountURL())).
		WithRetries(3, tst.TestShortDelay).
		Build()
}

func newService(t *testing.T, opts ...Option) (*Service, *fakeapi.Server, store.Store) {
	t.Helper()
	srv := fakeapi.New()
	t.Cleanup(srv.Close)

	st := store.NewMemory()
	require.NoError(t, st.Set(context.Background(), store.KeyUserEmail, []byte(tst.TestEmail)))

	opts = append([]Option{WithClock(func() time.Time { return fixedTime })}, opts...)
	return NewService(newClient(srv), st, logger.Nop(), opts...), srv, st
}

func TestPredictRecordsHistory(t *testing.T) {
	svc, srv, _ := newService(t)
	ctx := context.Background()

	res := svc.Predict(ctx, Image{Data: tst.TestImage, URI: "file:///photos/leaf.jpg"})

	require.True(t, res.OK(), "predict failed: %v", res.Failure)
	assert.Equal(t, "Tomato___Late_blight", res.Prediction.DiseaseName)
	assert.InDelta(t, 0.97, res.Prediction.Confidence, 1e-9)
	assert.Equal(t, tst.TestEmail, res.Entry.Email)
	assert.Equal(t, fixedTime, res.Entry.Time)
	assert.Equal(t, "file:///photos/leaf.jpg", res.Entry.ImageURL)
	assert.NotEmpty(t, res.Entry.ID)

	rec, ok := srv.LastRequest(predictPath)
	require.True(t, ok)
	assert.Contains(t, rec.Header.Get("Content-Type"), "multipart/form-data; boundary=")
	assert.Contains(t, string(rec.Body), `name="image"; filename="disease_image.jpg"`)
	assert.Contains(t, string(rec.Body), "Content-Type: image/jpeg")

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, res.Entry, history[0])
}

func TestHistoryIsNewestFirstAndBounded(t *testing.T) {
	svc, srv, _ := newService(t, WithMaxHistory(2))
	ctx := context.Background()

	for _, disease := range []string{"Apple___scab", "Corn___rust", "Grape___rot"} {
		srv.SetPrediction(fakeapi.Prediction{DiseaseName: disease, Confidence: 0.5})
		require.True(t, svc.Predict(ctx, Image{Data: tst.TestImage}).OK())
	}

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Grape___rot", history[0].Disease)
	assert.Equal(t, "Corn___rust", history[1].Disease)

	latest, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "Grape___rot", latest[0].Disease)
}

func TestPredictWithoutImage(t *testing.T) {
	svc, srv, _ := newService(t)

	res := svc.Predict(context.Background(), Image{})

	require.False(t, res.OK())
	assert.Equal(t, apierror.KindValidation, res.Failure.Kind)
	assert.Equal(t, 0, srv.Calls(predictPath))
}

func TestPredictServerErrorIsRetried(t *testing.T) {
	svc, srv, _ := newService(t)
	ctx := context.Background()
	for range 3 {
		srv.FailNext(predictPath, http.StatusInternalServerError, `{"error":"Model unavailable"}`)
	}

	res := svc.Predict(ctx, Image{Data: tst.TestImage})

	require.False(t, res.OK())
	assert.Equal(t, apierror.KindServer, res.Failure.Kind)
	assert.Equal(t, "Model unavailable", res.Failure.Message)
	assert.Equal(t, 3, srv.Calls(predictPath))

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPredictRejectsEmptyAnswer(t *testing.T) {
	svc, srv, _ := newService(t)
	srv.SetPrediction(fakeapi.Prediction{})

	res := svc.Predict(context.Background(), Image{Data: tst.TestImage})

	require.False(t, res.OK())
	history, err := svc.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryWriteFailureKeepsPrediction(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	st := &mocks.MockStore{}
	st.On("Get", mock.Anything, store.KeyUserEmail).Return([]byte(tst.TestEmail), nil)
	st.ExpectMissing(store.KeyPredictionHistory)
	st.On("Set", mock.Anything, store.KeyPredictionHistory, mock.Anything).Return(errors.New("disk full"))

	res := NewService(newClient(srv), st, nil).Predict(context.Background(), Image{Data: tst.TestImage})

	require.True(t, res.OK())
	assert.Equal(t, tst.TestEmail, res.Entry.Email)
	st.AssertExpectations(t)
}

func TestClearHistory(t *testing.T) {
	svc, _, st := newService(t)
	ctx := context.Background()
	require.True(t, svc.Predict(ctx, Image{Data: tst.TestImage}).OK())

	require.NoError(t, svc.ClearHistory(ctx))

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
	_, err = st.Get(ctx, store.KeyPredictionHistory)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHistoryReportsCorruptData(t *testing.T) {
	svc, _, st := newService(t)
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, store.KeyPredictionHistory, []byte("not json")))

	_, err := svc.History(ctx, 0)

	var opErr *store.OperationError
	assert.ErrorAs(t, err, &opErr)
}
