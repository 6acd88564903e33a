package client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperr "github.com/timmfy/ai-radio/internal/errors"
	"github.com/timmfy/ai-radio/internal/spotify/auth"
)

const (
	// BaseURL is the Spotify Web API base URL.
	BaseURL = "https://api.spotify.com/v1"

	// Reads are retried once on network and 5xx failures. Playback
	// commands are never repeated.
	maxReadRetries = 1
	baseRetryWait  = 500 * time.Millisecond
)

// Client is a Spotify API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	storage    *auth.TokenStorage
	token      *auth.Token
	mu         sync.RWMutex
	retryWait  time.Duration
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log.With().Str("component", "spotify").Logger()
	}
}

// WithRetryWait sets the delay before a retried read.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) {
		c.retryWait = d
	}
}

// New creates a new Spotify client. storage may be nil when the token is
// supplied directly with UseAccessToken.
func New(clientID string, storage *auth.TokenStorage, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    BaseURL,
		clientID:   clientID,
		storage:    storage,
		retryWait:  baseRetryWait,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadToken loads the token from storage.
func (c *Client) LoadToken() error {
	if c.storage == nil {
		return nil
	}
	token, err := c.storage.Load()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// SetToken sets the current token and persists it.
func (c *Client) SetToken(token *auth.Token) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	if c.storage == nil {
		return nil
	}
	return c.storage.Save(token)
}

// UseAccessToken sets a bare access token for this process only.
func (c *Client) UseAccessToken(accessToken string) {
	c.mu.Lock()
	c.token = auth.NewBearerToken(accessToken)
	c.mu.Unlock()
}

// Token returns a copy of the current token, or nil.
func (c *Client) Token() *auth.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil {
		return nil
	}
	t := *c.token
	return &t
}

// IsAuthenticated returns true if there's a valid (non-expired) token.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != nil && !c.token.IsExpired()
}

// HasToken returns true if there's any token (even if expired).
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != nil
}

// RefreshToken refreshes the access token if needed.
func (c *Client) RefreshToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return apperr.ErrNotAuthenticated
	}

	if !c.token.IsExpired() {
		return nil
	}

	if !c.token.CanRefresh() {
		return fmt.Errorf("access token expired: %w", apperr.ErrNotAuthenticated)
	}

	newToken, err := auth.RefreshAccessToken(ctx, c.clientID, c.token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %v: %w", err, apperr.ErrNotAuthenticated)
	}

	// Preserve refresh token if not returned
	if newToken.RefreshToken == "" {
		newToken.RefreshToken = c.token.RefreshToken
	}

	c.token = newToken
	if c.storage == nil {
		return nil
	}
	return c.storage.Save(newToken)
}

// getToken returns the current access token, refreshing if needed.
func (c *Client) getToken(ctx context.Context) (string, error) {
	if err := c.RefreshToken(ctx); err != nil {
		return "", err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == nil || c.token.AccessToken == "" {
		return "", apperr.ErrNotAuthenticated
	}

	return c.token.AccessToken, nil
}

// Get performs a GET request to the Spotify API.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.request(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request to the Spotify API.
func (c *Client) Post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.request(ctx, http.MethodPost, path, body, result)
}

// Put performs a PUT request to the Spotify API.
func (c *Client) Put(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.request(ctx, http.MethodPut, path, body, result)
}

func retriesFor(method string) int {
	if method == http.MethodGet {
		return maxReadRetries
	}
	return 0
}

func (c *Client) request(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	token, err := c.getToken(ctx)
	if err != nil {
		return err
	}

	var jsonBody []byte
	if body != nil {
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	fullURL := c.baseURL + path
	c.log.Debug().Str("method", method).Str("url", fullURL).RawJSON("body", nonEmptyJSON(jsonBody)).Msg("request")

	retries := retriesFor(method)
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			wait := c.retryWait * time.Duration(1<<(attempt-1))
			c.log.Debug().Int("attempt", attempt).Dur("wait", wait).Err(lastErr).Msg("retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		var bodyReader io.Reader
		if jsonBody != nil {
			bodyReader = bytes.NewReader(jsonBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				if stderrors.Is(ctxErr, context.DeadlineExceeded) {
					return fmt.Errorf("%s %s: %w", method, path, apperr.ErrTimeout)
				}
				return ctxErr
			}
			lastErr = fmt.Errorf("request failed: %v: %w", err, apperr.ErrNetworkError)
			c.log.Debug().Err(err).Msg("network error")
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %v: %w", err, apperr.ErrNetworkError)
			continue
		}

		c.log.Debug().Int("status", resp.StatusCode).Msg("response")

		if resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if resp.StatusCode >= 500 {
			lastErr = parseAPIError(resp.StatusCode, respBody)
			c.log.Debug().Err(lastErr).Msg("server error")
			continue
		}

		if resp.StatusCode >= 400 {
			return parseAPIError(resp.StatusCode, respBody)
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
		}

		return nil
	}

	if retries == 0 {
		return lastErr
	}
	return fmt.Errorf("request failed after %d attempts: %w", retries+1, lastErr)
}

func nonEmptyJSON(b []byte) []byte {
	if len(b) == 0 {
		return []byte("null")
	}
	return b
}

func parseAPIError(status int, body []byte) *APIError {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.ErrorInfo.Message == "" {
		apiErr.ErrorInfo.Message = strings.TrimSpace(string(body))
		if apiErr.ErrorInfo.Message == "" {
			apiErr.ErrorInfo.Message = http.StatusText(status)
		}
	}
	apiErr.ErrorInfo.Status = status
	return &apiErr
}

// APIError represents a Spotify API error response.
type APIError struct {
	ErrorInfo struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Reason  string `json:"reason,omitempty"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Spotify API error %d: %s", e.ErrorInfo.Status, e.ErrorInfo.Message)
}

// Is maps API failures onto the shared error sentinels.
func (e *APIError) Is(target error) bool {
	status := e.ErrorInfo.Status
	switch target {
	case apperr.ErrNotAuthenticated:
		return status == http.StatusUnauthorized
	case apperr.ErrRateLimited:
		return status == http.StatusTooManyRequests
	case apperr.ErrNoActiveDevice:
		return e.IsNoActiveDevice()
	case apperr.ErrPremiumRequired:
		return status == http.StatusForbidden && e.ErrorInfo.Reason == "PREMIUM_REQUIRED"
	case apperr.ErrNetworkError:
		return status >= 500
	}
	return false
}

// IsNoActiveDevice returns true if the error indicates no active device.
func (e *APIError) IsNoActiveDevice() bool {
	return e.ErrorInfo.Status == http.StatusNotFound &&
		(e.ErrorInfo.Reason == "NO_ACTIVE_DEVICE" || strings.Contains(strings.ToLower(e.ErrorInfo.Message), "device"))
}

// IsNoActiveDeviceError checks if an error is a "no active device" error.
func IsNoActiveDeviceError(err error) bool {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.IsNoActiveDevice()
	}
	return false
}

// BuildURL builds a URL with query parameters.
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	u, _ := url.Parse(path)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
