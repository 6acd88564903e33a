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

const (
	// DefaultOpenAIURL is the chat completions endpoint.
	DefaultOpenAIURL = "https://api.openai.com/v1/chat/completions"
	// DefaultModel is the model asked for recommendations.
	DefaultModel = "gpt-4"

	systemPrompt = "You are a music expert. Given a user's mood or request, return only a JSON array " +
		"of 10 songs that match the vibe. Each song must include 'title' and 'artist'. Format it as valid JSON."
)

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	APIKey  string
	Model   string
	URL     string
	Timeout time.Duration
}

// Generator produces recommendations with an OpenAI chat model.
type Generator struct {
	cfg        GeneratorConfig
	httpClient *http.Client
	retryWait  time.Duration
	log        zerolog.Logger
}

// NewGenerator creates a generator.
func NewGenerator(cfg GeneratorConfig, log zerolog.Logger) *Generator {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.URL == "" {
		cfg.URL = DefaultOpenAIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retryWait:  500 * time.Millisecond,
		log:        log.With().Str("component", "openai").Logger(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Recommend asks the model for songs matching prompt. Network and 5xx
// failures are retried once.
func (g *Generator) Recommend(ctx context.Context, prompt string) ([]core.Song, error) {
	if g.cfg.APIKey == "" {
		return nil, apperr.WithSuggestion(
			fmt.Errorf("%w: no OpenAI API key configured", apperr.ErrRecommendation),
			"Set OPENAI_API_KEY or recommend.openai_api_key")
	}

	body, err := json.Marshal(chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			g.log.Debug().Err(lastErr).Msg("retrying completion")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.retryWait):
			}
		}

		songs, err := g.complete(ctx, body)
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

func (g *Generator) complete(ctx context.Context, body []byte) ([]core.Song, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w: %v", apperr.ErrRecommendation, apperr.ErrNetworkError, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: failed to read response: %v", apperr.ErrRecommendation, apperr.ErrNetworkError, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: openai status %d (%w)", apperr.ErrRecommendation, resp.StatusCode, apperr.ErrNetworkError)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("%w: failed to parse OpenAI response: %v", apperr.ErrRecommendation, err)
	}
	if chat.Error != nil {
		return nil, fmt.Errorf("%w: openai: %s", apperr.ErrRecommendation, chat.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: openai status %d", apperr.ErrRecommendation, resp.StatusCode)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai returned no choices", apperr.ErrRecommendation)
	}

	songs, err := ParseSongs(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	g.log.Debug().Int("songs", len(songs)).Dur("took", time.Since(start)).Msg("model answered")
	return songs, nil
}

// ParseSongs extracts a song list from model output. It accepts a bare
// JSON array, an object with a "songs" array, and either one wrapped in a
// markdown code fence. Entries without a title are dropped; titles and
// artists are otherwise kept byte for byte.
func ParseSongs(content string) ([]core.Song, error) {
	content = stripFence(strings.TrimSpace(content))

	var songs []core.Song
	if err := json.Unmarshal([]byte(content), &songs); err != nil {
		var wrapped Response
		if err2 := json.Unmarshal([]byte(content), &wrapped); err2 != nil || wrapped.Songs == nil {
			return nil, fmt.Errorf("%w: failed to parse song list: %v", apperr.ErrRecommendation, err)
		}
		songs = wrapped.Songs
	}

	out := songs[:0]
	for _, s := range songs {
		if s.Title == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var _ core.Recommender = (*Generator)(nil)
