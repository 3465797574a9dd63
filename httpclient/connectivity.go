package httpclient

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"
)

// ErrOffline is returned by HeadChecker when the probe host answers with an
// error status.
var ErrOffline = errors.New("connectivity check failed")

// HeadChecker checks connectivity with a HEAD request to a host that is
// expected to always be up.
type HeadChecker struct {
	URL     string
	Timeout time.Duration
	Client  *nethttp.Client
}

// NewHeadChecker creates a HeadChecker using a plain http.Client.
func NewHeadChecker(url string, timeout time.Duration) *HeadChecker {
	return &HeadChecker{URL: url, Timeout: timeout, Client: &nethttp.Client{}}
}

// Check implements ConnectivityChecker
func (h *HeadChecker) Check(ctx context.Context) error {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodHead, h.URL, nethttp.NoBody)
	if err != nil {
		return fmt.Errorf("connectivity check: %w", err)
	}

	client := h.Client
	if client == nil {
		client = nethttp.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("connectivity check: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %s answered %d", ErrOffline, h.URL, resp.StatusCode)
	}
	return nil
}
