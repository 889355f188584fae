package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/idilsaglam/questlog/internal/model"
)

const (
	openaiBaseURL      = "https://api.openai.com/v1"
	openaiModel        = "gpt-4o-mini"
	openaiMaxRetries   = 3
	openaiInitialDelay = 1 * time.Second
)

// OpenAIClient drafts suggestions through a chat completions endpoint.
type OpenAIClient struct {
	apiKey       string
	baseURL      string
	model        string
	kind         model.Kind
	client       *http.Client
	initialDelay time.Duration
}

type OpenAIOption func(*OpenAIClient)

// WithBaseURL points the client at an OpenAI-compatible server.
func WithBaseURL(u string) OpenAIOption {
	return func(c *OpenAIClient) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithModel(m string) OpenAIOption {
	return func(c *OpenAIClient) {
		if m != "" {
			c.model = m
		}
	}
}

func WithHTTPClient(h *http.Client) OpenAIOption {
	return func(c *OpenAIClient) { c.client = h }
}

// WithRetryDelay sets the first backoff delay; later ones double.
func WithRetryDelay(d time.Duration) OpenAIOption {
	return func(c *OpenAIClient) { c.initialDelay = d }
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type openaiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewOpenAIClient creates a client generating items of the given kind.
func NewOpenAIClient(apiKey string, kind model.Kind, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:       apiKey,
		baseURL:      openaiBaseURL,
		model:        openaiModel,
		kind:         kind,
		client:       &http.Client{Timeout: 60 * time.Second},
		initialDelay: openaiInitialDelay,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (Suggestion, error) {
	if strings.TrimSpace(prompt) == "" {
		return Suggestion{}, ErrEmptyPrompt
	}
	if c.apiKey == "" {
		return Suggestion{}, ErrNotConfigured
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt(c.kind)},
			{Role: "user", Content: "Prompt: " + prompt},
		},
	}
	req.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(req)
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Retry with exponential backoff
	var lastErr error
	for attempt := 0; attempt < openaiMaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * c.initialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return Suggestion{}, ctx.Err()
			}
		}

		respBody, status, err := c.post(ctx, body)
		if err != nil {
			if ctx.Err() != nil {
				return Suggestion{}, ctx.Err()
			}
			lastErr = err
			continue
		}

		if status != http.StatusOK {
			var apiErr openaiError
			if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
				lastErr = fmt.Errorf("OpenAI API error (%d): %s", status, apiErr.Error.Message)
			} else {
				lastErr = fmt.Errorf("OpenAI API error (%d): %s", status, string(respBody))
			}
			// Retry on rate limit (429) or server errors (5xx)
			if status == http.StatusTooManyRequests || status >= 500 {
				continue
			}
			return Suggestion{}, lastErr
		}

		return parseSuggestion(respBody)
	}

	return Suggestion{}, fmt.Errorf("max retries (%d) exceeded: %w", openaiMaxRetries, lastErr)
}

func (c *OpenAIClient) post(ctx context.Context, body []byte) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

func parseSuggestion(respBody []byte) (Suggestion, error) {
	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return Suggestion{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return Suggestion{}, errors.New("no choices returned")
	}

	content := strings.TrimSpace(cr.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var s Suggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &s); err != nil {
		return Suggestion{}, fmt.Errorf("failed to decode suggestion: %w", err)
	}
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	if s.Title == "" {
		return Suggestion{}, errors.New("generated suggestion has no title")
	}
	return s, nil
}
