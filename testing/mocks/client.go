package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/plantify/plantify-go/httpclient"
)

// MockClient provides a testify-based mock implementation of httpclient.Client.
//
// Example usage:
//
//	c := &mocks.MockClient{}
//	c.On("Do", mock.Anything, mock.MatchedBy(func(r *httpclient.Request) bool {
//		return r.Endpoint == httpclient.EndpointLogin
//	})).Return(&httpclient.Response{StatusCode: 200, Body: body}, nil)
type MockClient struct {
	mock.Mock
}

var _ httpclient.Client = (*MockClient)(nil)

// Do implements httpclient.Client
func (m *MockClient) Do(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	arguments := m.Called(ctx, req)
	var resp *httpclient.Response
	if r := arguments.Get(0); r != nil {
		resp = r.(*httpclient.Response)
	}
	return resp, arguments.Error(1)
}

// ExpectEndpoint matches requests sent to endpoint.
func ExpectEndpoint(endpoint httpclient.Endpoint) any {
	return mock.MatchedBy(func(r *httpclient.Request) bool {
		return r != nil && r.Endpoint == endpoint
	})
}

// MockConnectivityChecker provides a testify-based mock implementation of
// httpclient.ConnectivityChecker.
type MockConnectivityChecker struct {
	mock.Mock
}

var _ httpclient.ConnectivityChecker = (*MockConnectivityChecker)(nil)

// Check implements httpclient.ConnectivityChecker
func (m *MockConnectivityChecker) Check(ctx context.Context) error {
	arguments := m.Called(ctx)
	return arguments.Error(0)
}

// ExpectOnline sets up every check to succeed.
func (m *MockConnectivityChecker) ExpectOnline() *mock.Call {
	return m.On("Check", mock.Anything).Return(nil)
}

// ExpectOffline sets up every check to fail with httpclient.ErrOffline.
func (m *MockConnectivityChecker) ExpectOffline() *mock.Call {
	return m.On("Check", mock.Anything).Return(httpclient.ErrOffline)
}
