package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-3-5-haiku-20241022"

// ErrAPIKeyRequired is returned when no API key is configured.
var ErrAPIKeyRequired = errors.New("API key required")

// AnthropicConfig holds configuration for the Anthropic client.
type AnthropicConfig struct {
	// APIKey falls back to ANTHROPIC_API_KEY when empty.
	APIKey string

	Model     string        // default: DefaultAnthropicModel
	Timeout   time.Duration // per attempt, default: 60s
	MaxTokens int64         // default: 1024

	// MaxRetries applies to rate-limit, server and timeout errors. Default 2.
	MaxRetries     int
	InitialBackoff time.Duration // default: 1s
}

// AnthropicClient implements TextGenerator using the Messages API.
type AnthropicClient struct {
	cfg            AnthropicConfig
	client         anthropic.Client
	circuitBreaker *CircuitBreaker
}

// NewAnthropicClient validates cfg and creates a client.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or llm.api_key", ErrAPIKeyRequired)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = time.Second
	}

	return &AnthropicClient{
		cfg: cfg,
		// The SDK's own retries are disabled; callWithRetry owns backoff.
		client:         anthropic.NewClient(option.WithAPIKey(cfg.APIKey), option.WithMaxRetries(0)),
		circuitBreaker: NewCircuitBreaker("anthropic"),
	}, nil
}

// GetModel returns the configured model name.
func (c *AnthropicClient) GetModel() string {
	return c.cfg.Model
}

// Breaker exposes the client's circuit breaker.
func (c *AnthropicClient) Breaker() *CircuitBreaker {
	return c.circuitBreaker
}

// Complete sends a single-turn message and returns the first text block.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := c.circuitBreaker.Execute(ctx, func() (string, error) {
		return c.callWithRetry(ctx, prompt)
	})
	if errors.Is(err, ErrCircuitOpen) {
		return "", fmt.Errorf("anthropic: %w", err)
	}
	return out, err
}

func (c *AnthropicClient) callWithRetry(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: c.cfg.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.InitialBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := c.send(ctx, params)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !isRetryable(err) {
			return "", fmt.Errorf("anthropic: %w", err)
		}
	}
	return "", fmt.Errorf("anthropic: failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func (c *AnthropicClient) send(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(message.Content) == 0 {
		return "", errors.New("unexpected response format: no content blocks")
	}
	content := message.Content[0]
	if content.Type != "text" {
		return "", fmt.Errorf("unexpected response format: not a text block (type=%s)", content.Type)
	}
	return content.Text, nil
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}
