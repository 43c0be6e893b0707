package services

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

	"github.com/sony/gobreaker"

	"gammadesk/backend-go/internal/config"
)

var (
	// ErrCompletionTimeout marks a completion call that exceeded its bound.
	// Reported distinctly from generic upstream failure.
	ErrCompletionTimeout = errors.New("completion request timed out")
	// ErrEmptyAnswer marks a 2xx completion response with no usable text.
	ErrEmptyAnswer = errors.New("completion returned no answer")
	// ErrNotConfigured marks a completion call without credentials.
	ErrNotConfigured = errors.New("completion backend not configured")
)

// UpstreamError wraps a non-2xx response from an upstream service.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d", e.Status)
}

// CompletionClient calls the chat-completions endpoint. Every call is bounded
// by a fixed timeout and guarded by a circuit breaker; there are no retries.
type CompletionClient struct {
	baseURL string
	apiKey  string
	model   string
	hc      *http.Client
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
}

func NewCompletionClient(cfg config.Config) *CompletionClient {
	failLimit := cfg.CircuitFailLimit
	if failLimit <= 0 {
		failLimit = 3
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "completion",
		Timeout: cfg.CircuitCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failLimit)
		},
	})
	return &CompletionClient{
		baseURL: strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		apiKey:  cfg.OpenAIAPIKey,
		model:   cfg.OpenAIModel,
		hc:      &http.Client{},
		timeout: cfg.CompletionTimeout,
		cb:      cb,
	}
}

func (c *CompletionClient) Configured() bool {
	return c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a system+user prompt pair and returns the trimmed answer.
func (c *CompletionClient) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.complete(ctx, system, user)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("completion circuit open: %w", err)
		}
		return "", err
	}
	return out.(string), nil
}

func (c *CompletionClient) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: 0.2,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.hc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrCompletionTimeout
		}
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", &UpstreamError{Status: res.StatusCode, Body: string(body)}
	}

	var out chatResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyAnswer
	}
	answer := strings.TrimSpace(out.Choices[0].Message.Content)
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}
