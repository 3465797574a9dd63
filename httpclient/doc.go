// Package httpclient executes logical API requests against the Plantify
// backend.
//
// Each request goes through a connectivity pre-check, bearer token
// attachment, JSON or multipart body encoding and a bounded retry loop.
// Failures are returned as *Error values carrying an apierror.Kind, the HTTP
// status when one was received and the message extracted from the response
// body.
//
// Only transient failures (network, timeout, 429 and 5xx) are retried, and
// only when repeating the request is safe: idempotent methods, requests
// marked Retryable, and failures at the pre-check stage where nothing was
// sent.
//
// Example:
//
//	client := httpclient.NewBuilder(log).
//		WithBaseURLResolver(resolver).
//		WithTokenSource(tokens).
//		WithConnectivityChecker(httpclient.NewHeadChecker("https://www.google.com", 5*time.Second)).
//		Build()
//
//	resp, err := client.Do(ctx, &httpclient.Request{
//		Method:   http.MethodGet,
//		Endpoint: httpclient.EndpointProfile,
//	})
package httpclient
