package hass

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-hatool/pkg/interfaces/logger"
)

// ErrEntityRequired is returned when no entity id is given.
var ErrEntityRequired = errors.New("hass: entity is required")

// maxErrorBody caps how much of a failed response is kept on StatusError.
const maxErrorBody = 4096

// Client talks to the Home Assistant REST API states endpoint.
type Client struct {
	host    string
	port    int
	token   string
	scheme  string
	timeout time.Duration
	tls     *tls.Config
	client  *http.Client
	logger  logger.Logger
}

type Option func(*Client)

// WithHTTPClient allows injecting a custom HTTP client. It takes precedence
// over WithTimeout and WithTLSConfig.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// WithTimeout bounds the whole exchange. Zero keeps the default of no timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithTLSConfig sets the TLS configuration of the default transport.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(cl *Client) {
		cl.tls = cfg
	}
}

// New constructs a client for https://host:port authenticating with token.
func New(host string, port int, token string, opts ...Option) *Client {
	c := &Client{
		host:   host,
		port:   port,
		token:  token,
		scheme: "https",
		logger: &logger.Nop{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
		if c.tls != nil {
			transport := http.DefaultTransport.(*http.Transport).Clone()
			transport.TLSClientConfig = c.tls
			c.client.Transport = transport
		}
	}
	return c
}

// StateURL returns the states endpoint for entity.
func (c *Client) StateURL(entity string) string {
	u := url.URL{
		Scheme: c.scheme,
		Host:   net.JoinHostPort(c.host, strconv.Itoa(c.port)),
		Path:   "/api/states/" + entity,
	}
	return u.String()
}

// GetState reads the current state object of entity.
func (c *Client) GetState(ctx context.Context, entity string) (any, error) {
	return c.Request(ctx, entity, nil)
}

// SetState updates the state of entity and returns the resulting state object.
func (c *Client) SetState(ctx context.Context, entity, state string) (any, error) {
	return c.Request(ctx, entity, map[string]string{"state": state})
}

// Request performs a POST with payload as JSON when payload is non-empty,
// otherwise a GET. The decoded response body is returned as-is.
func (c *Client) Request(ctx context.Context, entity string, payload map[string]string) (any, error) {
	if strings.TrimSpace(entity) == "" {
		return nil, ErrEntityRequired
	}
	target := c.StateURL(entity)

	method := http.MethodGet
	var body io.Reader
	if len(payload) > 0 {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("hass: encode payload: %w", err)
		}
		c.logger.Debug("sending state", logger.Field{Key: "url", Value: target}, logger.Field{Key: "body", Value: string(encoded)})
		method = http.MethodPost
		body = bytes.NewReader(encoded)
	} else {
		c.logger.Debug("getting state", logger.Field{Key: "url", Value: target})
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("hass: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hass: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(snippet),
		}
	}

	var out any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("hass: decode response: %w", err)
	}
	return out, nil
}
