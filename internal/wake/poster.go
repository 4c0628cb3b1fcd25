package wake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"
)

// httpTimeout and httpConnectTimeout are spec.md §5's bounded total/connect
// timeouts for the wake webhook delivery: the worker goroutine blocks on
// this call, so it must never hang indefinitely.
const (
	httpTimeout        = 5 * time.Second
	httpConnectTimeout = 3 * time.Second
)

// HTTPPoster posts the wake Payload as JSON to the configured server URL,
// the production Poster implementation.
type HTTPPoster struct {
	client *http.Client
}

// NewHTTPPoster builds an HTTPPoster with spec.md §5's bounded timeouts.
func NewHTTPPoster() *HTTPPoster {
	dialer := &net.Dialer{Timeout: httpConnectTimeout}
	return &HTTPPoster{
		client: &http.Client{
			Timeout: httpTimeout,
			Transport: &http.Transport{
				DialContext: dialer.DialContext,
			},
		},
	}
}

// PostWake sends payload as a JSON POST body to url. Failures are returned
// to the caller to log; per spec.md §7 the wake scheduler never retries a
// failed delivery itself.
func (p *HTTPPoster) PostWake(ctx context.Context, url string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("wake: marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, httpTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("wake: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("wake: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("wake: server returned status %d", resp.StatusCode)
	}
	return nil
}
