// Package whatsapp is the Blibsend gateway client used for owner reminders and offers.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	notificationapp "github.com/wimotos/backend/internal/application/notification"
	"github.com/wimotos/backend/internal/infrastructure/config"
)

var (
	_ notificationapp.MessageSender = (*Client)(nil)
	_ notificationapp.MediaSender   = (*Client)(nil)
)

const (
	signinPath    = "/auth/signin"
	sendPath      = "/messages/send"
	sendMediaPath = "/messages/send-media"

	defaultTimeout   = 25 * time.Second
	defaultUserAgent = "wi_motos/1.0"
)

// Client sends WhatsApp messages through the Blibsend HTTP API
type Client struct {
	cfg        config.WhatsAppConfig
	httpClient *http.Client
	tokens     *TokenCache
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default instrumented http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock sets the clock used for token expiry
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a Blibsend client
func NewClient(cfg config.WhatsAppConfig, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tokens = NewTokenCache(c.signin, c.now)
	return c
}

// Configured reports whether the gateway URL and credentials are set
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

type textMessage struct {
	To   []string `json:"to"`
	Body string   `json:"body"`
}

type mediaMessage struct {
	To      []string `json:"to"`
	Type    string   `json:"type"`
	Title   string   `json:"title,omitempty"`
	Caption string   `json:"caption,omitempty"`
	Media   string   `json:"media"`
}

// SendText sends a text message. An empty destination list falls back to the owner number.
func (c *Client) SendText(ctx context.Context, to []string, body string) error {
	dest, err := c.destinations(to)
	if err != nil {
		return err
	}
	return c.post(ctx, sendPath, textMessage{To: dest, Body: body})
}

// SendMedia sends an image given as a data URI
func (c *Client) SendMedia(ctx context.Context, to []string, title, caption, dataURI string) error {
	dest, err := c.destinations(to)
	if err != nil {
		return err
	}
	return c.post(ctx, sendMediaPath, mediaMessage{
		To:      dest,
		Type:    "image",
		Title:   title,
		Caption: caption,
		Media:   dataURI,
	})
}

func (c *Client) destinations(to []string) ([]string, error) {
	out := make([]string, 0, len(to))
	for _, n := range to {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	if len(out) == 0 && c.cfg.DefaultTo != "" {
		out = append(out, c.cfg.DefaultTo)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no destination number", ErrNotConfigured)
	}
	return out, nil
}

// post sends payload with a bearer token. A 401 drops the cached token and retries once.
func (c *Client) post(ctx context.Context, path string, payload any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("blibsend: failed to marshal request: %w", err)
	}

	status, respBody, err := c.authorizedPost(ctx, path, body)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		c.logger.Debug("blibsend token rejected, signing in again", zap.String("path", path))
		c.tokens.Invalidate()
		status, respBody, err = c.authorizedPost(ctx, path, body)
		if err != nil {
			return err
		}
	}
	if status == http.StatusOK || status == http.StatusCreated {
		return nil
	}
	return newDeliveryError(status, respBody)
}

func (c *Client) authorizedPost(ctx context.Context, path string, body []byte) (int, []byte, error) {
	token, err := c.tokens.Get(ctx)
	if err != nil {
		return 0, nil, err
	}
	return c.doRequest(ctx, path, body, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("session_token", c.cfg.SessionToken)
	})
}

type signinResponse struct {
	Token     string  `json:"token"`
	ExpiresIn float64 `json:"expires_in"`
	ExiresIn  float64 `json:"exires_in"`
}

// signin exchanges the client credentials for a token. The gateway has shipped the
// lifetime under a misspelled key, so both spellings are read.
func (c *Client) signin(ctx context.Context) (string, time.Duration, error) {
	status, body, err := c.doRequest(ctx, signinPath, []byte("{}"), func(req *http.Request) {
		req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	})
	if err != nil {
		return "", 0, err
	}
	if status >= http.StatusMultipleChoices {
		return "", 0, fmt.Errorf("blibsend signin: %w", newDeliveryError(status, body))
	}

	var resp signinResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", 0, fmt.Errorf("blibsend signin: failed to parse response: %w", err)
	}
	if resp.Token == "" {
		return "", 0, fmt.Errorf("blibsend signin: %w", newDeliveryError(status, []byte("response without token")))
	}
	secs := resp.ExpiresIn
	if secs <= 0 {
		secs = resp.ExiresIn
	}
	c.logger.Debug("blibsend signin ok", zap.Float64("expires_in", secs))
	return resp.Token, time.Duration(secs) * time.Second, nil
}

func (c *Client) doRequest(ctx context.Context, path string, body []byte, decorate func(*http.Request)) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("blibsend: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("blibsend %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("blibsend: failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
