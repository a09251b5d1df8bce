// Package gemini implements the client for the hosted Gemini
// generative-language API. The client owns no conversation state: it is
// handed the transcript on every call and returns one reply.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"souschef/internal/chat"
)

// ErrNoAPIKey is returned when a reply is requested without a credential.
var ErrNoAPIKey = errors.New("gemini: API key not configured")

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 60 * time.Second

	maxRetries = 3
)

// systemInstruction is the fixed turn prefixed to every transcript.
const systemInstruction = "You are souschef, a friendly cooking assistant. " +
	"Answer questions about cooking, ingredients, and recipes concisely. " +
	"Use metric units unless the user asks otherwise."

// Config holds client settings.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

// DefaultConfig returns sensible defaults for the given credential.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: defaultBaseURL,
		Model:   defaultModel,
		Timeout: defaultTimeout,
	}
}

// Client issues generateContent calls against the Gemini REST API.
type Client struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client
	logger          *zap.Logger
}

// NewClient creates a client with default settings.
func NewClient(apiKey string, logger *zap.Logger) *Client {
	return NewClientWithConfig(DefaultConfig(apiKey), logger)
}

// NewClientWithConfig creates a client with custom settings.
func NewClientWithConfig(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey:          cfg.APIKey,
		baseURL:         baseURL,
		model:           model,
		maxOutputTokens: cfg.MaxOutputTokens,
		httpClient:      &http.Client{Timeout: timeout},
		logger:          logger,
	}
}

// Model returns the model in use.
func (c *Client) Model() string {
	return c.model
}

// GenerateReply sends the prior transcript plus a new user turn and returns
// the generated text. User turns map to role "user", generated turns to role
// "model"; a fixed system instruction precedes the transcript.
func (c *Client) GenerateReply(ctx context.Context, history []chat.Message, userText string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return "", errors.New("gemini: empty user text")
	}

	// Centralized timeout handling: apply the client timeout when the
	// caller's context has no deadline, so a hung call cannot leave the
	// UI busy forever.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	contents := make([]Content, 0, len(history)+1)
	for _, msg := range history {
		role := "model"
		if msg.IsUser {
			role = "user"
		}
		contents = append(contents, Content{
			Role:  role,
			Parts: []Part{{Text: msg.Text}},
		})
	}
	contents = append(contents, Content{
		Role:  "user",
		Parts: []Part{{Text: userText}},
	})

	reqBody := Request{
		Contents: contents,
		SystemInstruction: &Content{
			Parts: []Part{{Text: systemInstruction}},
		},
		GenerationConfig: GenerationConfig{
			Temperature:     1.0,
			MaxOutputTokens: c.maxOutputTokens,
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	start := time.Now()
	c.logger.Debug("generateContent",
		zap.String("model", c.model),
		zap.Int("history_turns", len(history)),
		zap.Int("user_len", len(userText)))

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(1<<uint(i-1)) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return "", fmt.Errorf("gemini: marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return "", fmt.Errorf("gemini: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("gemini: request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("gemini: read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("gemini: rate limit exceeded (429)")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("gemini: API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var apiResp Response
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return "", fmt.Errorf("gemini: parse response: %w", err)
		}
		if apiResp.Error != nil {
			return "", fmt.Errorf("gemini: API error: %s", apiResp.Error.Message)
		}
		if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
			return "", errors.New("gemini: no completion returned")
		}

		var result strings.Builder
		for _, part := range apiResp.Candidates[0].Content.Parts {
			result.WriteString(part.Text)
		}
		reply := strings.TrimSpace(result.String())

		c.logger.Debug("generateContent completed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("reply_len", len(reply)),
			zap.Int("total_tokens", apiResp.UsageMetadata.TotalTokenCount))
		return reply, nil
	}

	c.logger.Warn("generateContent exhausted retries",
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(lastErr))
	return "", fmt.Errorf("gemini: max retries exceeded: %w", lastErr)
}
