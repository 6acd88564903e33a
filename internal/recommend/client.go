// Package recommend turns prompts into song recommendations, either by
// calling a remote generate-tracks endpoint or by asking OpenAI directly.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/timmfy/ai-radio/internal/core"
	apperr "github.com/timmfy/ai-radio/internal/errors"
)

// GeneratePath is the route that serves recommendations.
const GeneratePath = "/api/generate-tracks"

// Request is the body of a generate-tracks call.
type Request struct {
	Prompt string `json:"prompt"`
}

// Response is the body returned by generate-tracks.
type Response struct {
	Songs []core.Song `json:"songs"`
}

// ErrorResponse is returned by generate-tracks on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Client calls a remote generate-tracks endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryWait  time.Duration
	log        zerolog.Logger
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retryWait:  500 * time.Millisecond,
		log:        log.With().Str("component", "recommend").Logger(),
	}
}

// Recommend asks the service for songs matching prompt. Network and 5xx
// failures are retried once.
func (c *Client) Recommend(ctx context.Context, prompt string) ([]core.Song, error) {
	body, err := json.Marshal(Request{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			c.log.Debug().Err(lastErr).Msg("retrying recommendation")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryWait):
			}
		}

		songs, err := c.do(ctx, body)
		if err == nil {
			return songs, nil
		}
		lastErr = err
		if !apperr.IsTransient(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, body []byte) ([]core.Song, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+GeneratePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w: %v", apperr.ErrRecommendation, apperr.ErrNetworkError, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", apperr.ErrRecommendation, apperr.ErrNetworkError, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		var errResp ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		err := fmt.Errorf("%w: status %d: %s", apperr.ErrRecommendation, resp.StatusCode, msg)
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w (%w)", err, apperr.ErrNetworkError)
		}
		return nil, err
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", apperr.ErrRecommendation, err)
	}

	c.log.Debug().Int("songs", len(out.Songs)).Msg("recommendations received")
	return out.Songs, nil
}

var _ core.Recommender = (*Client)(nil)
