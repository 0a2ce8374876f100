package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"transportadoras-server-go/internal/domain/carrier"
	platformerrors "transportadoras-server-go/internal/platform/errors"
)

// ErrUnauthorized signals that the server rejected the session token and the
// caller must send the user back through the portal login.
var ErrUnauthorized = errors.New("sessão expirada")

const defaultTimeout = 10 * time.Second

// StatusError carries the server's error envelope for non-2xx responses.
type StatusError struct {
	StatusCode int
	Reason     string
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d): %s", e.Reason, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s (%d)", e.Reason, e.StatusCode)
}

// TokenSource supplies the current session token per request, so the client
// picks up token changes without being rebuilt.
type TokenSource func() string

// Client talks to the transportadoras REST API.
type Client struct {
	baseURL string
	token   TokenSource
	http    *http.Client
}

type Options struct {
	BaseURL string
	Token   TokenSource
	Timeout time.Duration
}

func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, platformerrors.New(platformerrors.KindConfig, "api.new", "base URL is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	token := opts.Token
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// List fetches every record, ordered by name.
func (c *Client) List(ctx context.Context) ([]carrier.Carrier, error) {
	var out []carrier.Carrier
	if err := c.do(ctx, http.MethodGet, "/api/transportadoras", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []carrier.Carrier{}
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (carrier.Carrier, error) {
	var out carrier.Carrier
	err := c.do(ctx, http.MethodGet, "/api/transportadoras/"+id, nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, record carrier.Carrier) (carrier.Carrier, error) {
	var out carrier.Carrier
	err := c.do(ctx, http.MethodPost, "/api/transportadoras", record, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, record carrier.Carrier) (carrier.Carrier, error) {
	var out carrier.Carrier
	err := c.do(ctx, http.MethodPut, "/api/transportadoras/"+id, record, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/transportadoras/"+id, nil, nil)
}

// Ping probes connectivity with a HEAD request, which the server answers
// without a session check.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodHead, "/api/transportadoras", nil, nil)
}

// Health fetches the server's health report as a raw document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return platformerrors.Wrap(platformerrors.KindClient, "api.do", "encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindClient, "api.do", "build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("X-Session-Token", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindClient, "api.do",
			fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || method == http.MethodHead {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindClient, "api.do", "read response", err)
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return platformerrors.Wrap(platformerrors.KindClient, "api.do", "decode response", err)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	se := &StatusError{
		StatusCode: resp.StatusCode,
		Reason:     http.StatusText(resp.StatusCode),
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return se
	}
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(data, &envelope); err == nil && envelope.Error != "" {
		se.Reason = envelope.Error
		se.Detail = envelope.Message
	}
	return se
}
