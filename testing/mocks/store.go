package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/plantify/plantify-go/store"
)

// MockStore provides a testify-based mock implementation of store.Store.
//
// Example usage:
//
//	st := &mocks.MockStore{}
//	st.On("Get", mock.Anything, store.KeyAccessToken).Return([]byte("token"), nil)
//	st.On("Set", mock.Anything, store.KeyPredictionHistory, mock.Anything).Return(errors.New("disk full"))
type MockStore struct {
	mock.Mock
}

var _ store.Store = (*MockStore)(nil)

// Get implements store.Store
func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	arguments := m.Called(ctx, key)
	var value []byte
	if v := arguments.Get(0); v != nil {
		value = v.([]byte)
	}
	return value, arguments.Error(1)
}

// Set implements store.Store
func (m *MockStore) Set(ctx context.Context, key string, value []byte) error {
	arguments := m.Called(ctx, key, value)
	return arguments.Error(0)
}

// Delete implements store.Store
func (m *MockStore) Delete(ctx context.Context, key string) error {
	arguments := m.Called(ctx, key)
	return arguments.Error(0)
}

// Close implements store.Store
func (m *MockStore) Close() error {
	arguments := m.Called()
	return arguments.Error(0)
}

// ExpectMissing sets up Get to report key as absent.
func (m *MockStore) ExpectMissing(key string) *mock.Call {
	return m.On("Get", mock.Anything, key).Return(nil, store.ErrNotFound)
}
