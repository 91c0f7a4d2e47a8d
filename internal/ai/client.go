package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"threads-autoposter/internal/config"
	"threads-autoposter/internal/logger"
)

// Client talks to an OpenAI-compatible chat-completion endpoint
// (OpenRouter by default). Sampling parameters are fixed: the platform
// copy this generates is short-form, so temperature 0.7 and 500 output
// tokens cover every caller.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	baseURL      string
	model        string
	extraHeaders map[string]string
	breaker      *gobreaker.CircuitBreaker
	rateLimiter  *rate.Limiter
}

const (
	completionTemperature = 0.7
	completionMaxTokens   = 500
)

func NewClient(cfg *config.Config) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "LLMAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second,
		},
		apiKey:      cfg.LLMAPIKey,
		baseURL:     strings.TrimRight(cfg.LLMBaseURL, "/"),
		model:       cfg.LLMModel,
		breaker:     breaker,
		rateLimiter: rate.NewLimiter(rate.Limit(1), 3),
	}
}

// SetExtraHeaders sets optional per-provider headers (OpenRouter
// attribution headers, for example) sent with every completion call.
func (c *Client) SetExtraHeaders(headers map[string]string) {
	c.extraHeaders = headers
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

// Complete sends the prompt as a single user-role message and returns
// the first choice's content, trimmed of surrounding whitespace.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		payload, err := json.Marshal(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "user", Content: prompt},
			},
			Temperature: completionTemperature,
			MaxTokens:   completionMaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		for k, v := range c.extraHeaders {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return nil, fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
		}

		var parsed chatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if parsed.Error != nil {
			return nil, fmt.Errorf("api error: %s", parsed.Error.Message)
		}
		if len(parsed.Choices) == 0 {
			return nil, fmt.Errorf("empty choices in response")
		}

		return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// Generate returns the model's reply, or an error-message string when
// the call fails. Content generation is never allowed to abort a run.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	text, err := c.Complete(ctx, prompt)
	if err != nil {
		logger.Error("LLM completion failed", "error", err)
		return fmt.Sprintf("Error: %v", err)
	}
	return text
}

// GenerateCaption returns generated caption copy, substituting a
// random pre-written caption when the completion call fails.
func (c *Client) GenerateCaption(ctx context.Context, prompt string) string {
	text, err := c.Complete(ctx, prompt)
	if err != nil {
		logger.Warn("LLM completion failed, using fallback caption", "error", err)
		return FallbackCaption()
	}
	return text
}
