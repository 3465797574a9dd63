// Package testing provides shared helpers for testing code built on the
// Plantify client.
//
// # Mocks
//
// The mocks subpackage provides testify-based mock implementations of the
// client's interfaces: store.Store, httpclient.Client and
// httpclient.ConnectivityChecker.
//
// # Fake backend
//
// The fakeapi subpackage runs an in-process account and crop-disease
// backend on an httptest server, with per-path failure injection.
//
// # Usage
//
//	srv := fakeapi.New()
//	defer srv.Close()
//	srv.AddUser(fakeapi.User{Email: testing.TestEmail, Password: testing.TestPassword, Verified: true})
package testing
