// Package authapi is the HTTP client for the vybe authentication service.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pscheid92/vybe/internal/domain"
	apperrors "github.com/pscheid92/vybe/internal/errors"
	"github.com/pscheid92/vybe/internal/metrics"
	"github.com/pscheid92/vybe/internal/platform/correlation"
	"github.com/pscheid92/vybe/internal/platform/version"
)

const (
	DefaultTimeout = 10 * time.Second

	loginPath    = "/api/v1/auth/login"
	registerPath = "/api/v1/auth/register"
	mePath       = "/api/v1/auth/me"
	logoutPath   = "/api/v1/auth/logout"

	maxBodyBytes = 1 << 20
)

// Client talks to /api/v1/auth. It implements domain.AuthService.
type Client struct {
	baseURL string
	tokens  domain.TokenStore
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.ClientMetrics
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, timeout included.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every call. A client passed with WithHTTPClient is copied,
// not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger sets the diagnostics logger. The default logger is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics records call counts and latency per operation.
func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client for the service at baseURL. The bearer token for
// authenticated calls is read from tokens on every request.
func NewClient(baseURL string, tokens domain.TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ domain.AuthService = (*Client)(nil)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	var resp tokenResponse
	if err := c.do(ctx, "login", http.MethodPost, loginPath, credentials{email, password}, &resp, false); err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Success: true,
		Tokens: domain.TokenPair{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
		},
	}, nil
}

func (c *Client) Register(ctx context.Context, email, password string) (*domain.RegisterResponse, error) {
	var user domain.User
	if err := c.do(ctx, "register", http.MethodPost, registerPath, credentials{email, password}, &user, false); err != nil {
		return nil, err
	}
	return &domain.RegisterResponse{Success: true, User: user}, nil
}

// CurrentUser fetches the profile of the token holder. Without a stored access
// token it fails with domain.ErrNotAuthenticated and sends nothing.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, "getCurrentUser", http.MethodGet, mePath, nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes the session server-side. Local state is not touched.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, logoutPath, nil, nil, true)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any, authenticated bool) error {
	start := time.Now()
	err := c.roundTrip(ctx, method, path, body, out, authenticated)
	c.metrics.Observe(op, outcome(err), time.Since(start))
	if err != nil {
		c.diagnose(ctx, err, op)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any, authenticated bool) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	correlation.Inject(ctx, req.Header)

	if authenticated {
		pair, ok, err := c.tokens.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to read access token: %w", err)
		}
		if !ok || pair.AccessToken == "" {
			return domain.ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &apperrors.RequestError{Method: method, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &apperrors.RequestError{Method: method, URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respErr := &apperrors.ResponseError{Method: method, URL: url, StatusCode: resp.StatusCode, Raw: raw}
		_ = json.Unmarshal(raw, &respErr.Body)
		return respErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) diagnose(ctx context.Context, err error, op string) {
	if c.logger != nil {
		apperrors.LogDiagnosticsTo(ctx, c.logger, err, op)
		return
	}
	apperrors.LogDiagnostics(ctx, err, op)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperrors.Kind(err))
}
