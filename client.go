package entkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// =====================================
// Remote Transport
// =====================================

// Transport issues one HTTP exchange against the remote admin surface.
// A non-2xx response is not a transport error: the status code is returned
// alongside the body and interpreted by the orchestrator. Only failures to
// complete the exchange at all (connection, context cancellation, encoding)
// return a non-nil error.
type Transport interface {
	Do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, int, error)
}

// HTTPTransport implements Transport over net/http. Authentication is an
// external collaborator: when TokenSource is set its result is attached as a
// bearer credential, and how that token is obtained or refreshed is not this
// type's concern.
type HTTPTransport struct {
	BaseURL string
	Client  *http.Client

	// TokenSource supplies the bearer credential per request. Optional.
	TokenSource func(ctx context.Context) (string, error)

	// Headers are attached to every request. Optional.
	Headers map[string]string
}

// NewHTTPTransport creates a transport for the given base URL with a default
// client timeout.
func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, int, error) {
	target := t.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}
	if t.TokenSource != nil {
		token, err := t.TokenSource(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("acquire token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	return data, resp.StatusCode, nil
}
