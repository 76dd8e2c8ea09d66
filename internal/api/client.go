// Package api is the HTTP client for the homeboard server. It owns the
// request/response plumbing: bearer credentials, failure classification,
// response-shape normalization, and retry of transient failures. Callers
// above it only ever see typed entities and the package's error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	requestTimeout = 15 * time.Second
	maxRetries     = 2
	retryBase      = 500 * time.Millisecond
)

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// SetToken installs the bearer credential for subsequent requests. An
// empty token is the unauthenticated state, not an error.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Do issues one API request. Transient failures (network, 5xx) are
// retried with capped exponential backoff; 4xx responses never are. The
// response body is decoded into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.once(ctx, method, path, payload, out)
		if err != nil && Retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte, out any) error {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and cancellations land here too; the caller cannot
		// know whether the server committed anything.
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode >= 400 {
		return classifyStatus(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := decodeInto(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func classifyStatus(status int, raw []byte) error {
	msg := errorMessage(raw)
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case status == http.StatusForbidden || status == http.StatusPaymentRequired:
		return ErrEntitlement
	case status < 500:
		return &ValidationError{Status: status, Message: msg}
	default:
		return &ServerError{Status: status, Message: msg}
	}
}

func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

// decodeInto tolerates the response shapes older server versions emit:
// a list may arrive bare or wrapped as {"items": [...]} / {"data": [...]},
// and an entity may arrive bare or wrapped under a single key. The
// normalization lives here so nothing above the client sees the variants.
func decodeInto(raw []byte, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	rv := reflect.ValueOf(out)
	wantsList := rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Slice

	if raw[0] != '{' {
		return json.Unmarshal(raw, out)
	}

	if wantsList {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return err
		}
		for _, key := range []string{"items", "data"} {
			if inner, ok := wrapper[key]; ok {
				return json.Unmarshal(inner, out)
			}
		}
		if len(wrapper) == 1 {
			for _, inner := range wrapper {
				return json.Unmarshal(inner, out)
			}
		}
		return fmt.Errorf("expected a list, got object keys %v", keysOf(wrapper))
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return err
	}
	if len(wrapper) == 1 {
		for _, inner := range wrapper {
			inner = bytes.TrimSpace(inner)
			if len(inner) > 0 && inner[0] == '{' {
				return json.Unmarshal(inner, out)
			}
		}
	}
	return json.Unmarshal(raw, out)
}

func keysOf(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
