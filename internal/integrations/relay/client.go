// Package relay is the HTTP client for the chat relay endpoint.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"tienda-chat/internal/domain"
)

const (
	defaultPath    = "/api/chat"
	defaultTimeout = 60 * time.Second
)

type chatRequest struct {
	Messages []domain.Turn `json:"messages"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StatusError is returned when the relay answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *StatusError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("relay: unexpected status %d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("relay: unexpected status %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

type Client struct {
	rc   *resty.Client
	path string
}

type Option func(*Client)

func WithPath(path string) Option {
	return func(c *Client) {
		if p := strings.TrimSpace(path); p != "" {
			c.path = p
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.rc.SetTimeout(d)
		}
	}
}

// WithHTTPClient swaps the underlying transport, keeping base URL and headers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			base := c.rc.BaseURL
			c.rc = resty.NewWithClient(hc).
				SetBaseURL(base).
				SetHeader("Content-Type", "application/json").
				SetHeader("Accept", "application/json")
		}
	}
}

// New builds a Client for the relay served at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("relay: base URL must not be empty")
	}
	c := &Client{
		rc: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		path: defaultPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Relay posts the turns and returns the reply text.
func (c *Client) Relay(ctx context.Context, turns []domain.Turn) (string, error) {
	var out chatResponse
	var failure errorResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(chatRequest{Messages: turns}).
		SetResult(&out).
		SetError(&failure).
		Post(c.path)
	if err != nil {
		return "", fmt.Errorf("relay: request failed: %w", err)
	}
	if resp.IsError() {
		return "", &StatusError{StatusCode: resp.StatusCode(), Message: failure.Error, Details: failure.Details}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	}
	if out.Reply == "" {
		return "", errors.New("relay: response missing reply")
	}
	return out.Reply, nil
}
