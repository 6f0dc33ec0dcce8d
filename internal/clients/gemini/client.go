// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/models"
)

const (
	DefaultModel             = "gemini-2.0-flash"
	DefaultRequestsPerMinute = 30
	DefaultBreakerFailures   = 5
)

// ErrNoContent is returned when the model answers without any text.
var ErrNoContent = errors.New("no content generated")

// Compile-time interface check
var _ interfaces.AIClient = (*Client)(nil)

// generator is the slice of the genai models API the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements AIClient on top of genai. Every call passes a process
// wide rate limiter and a circuit breaker; failures are never retried.
type Client struct {
	models  generator
	model   string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *common.Logger
}

// ClientOption configures the client
type ClientOption func(*clientSettings)

type clientSettings struct {
	model             string
	requestsPerMinute int
	breakerFailures   int
	breakerTimeout    time.Duration
	logger            *common.Logger
}

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(s *clientSettings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithRateLimit caps calls per minute across the process
func WithRateLimit(perMinute int) ClientOption {
	return func(s *clientSettings) {
		if perMinute > 0 {
			s.requestsPerMinute = perMinute
		}
	}
}

// WithBreaker sets how many consecutive failures open the breaker and how
// long it stays open.
func WithBreaker(failures int, openFor time.Duration) ClientOption {
	return func(s *clientSettings) {
		if failures > 0 {
			s.breakerFailures = failures
		}
		if openFor > 0 {
			s.breakerTimeout = openFor
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(s *clientSettings) {
		s.logger = logger
	}
}

// OptionsFromConfig maps the config section onto client options.
func OptionsFromConfig(cfg common.GeminiConfig, logger *common.Logger) []ClientOption {
	return []ClientOption{
		WithModel(cfg.Model),
		WithRateLimit(cfg.RequestsPerMinute),
		WithBreaker(cfg.BreakerFailures, cfg.GetBreakerTimeout()),
		WithLogger(logger),
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newClient(genaiClient.Models, opts...), nil
}

func newClient(g generator, opts ...ClientOption) *Client {
	s := clientSettings{
		model:             DefaultModel,
		requestsPerMinute: DefaultRequestsPerMinute,
		breakerFailures:   DefaultBreakerFailures,
		breakerTimeout:    60 * time.Second,
		logger:            common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	logger := s.logger
	failures := uint32(s.breakerFailures)
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "gemini",
		Timeout: s.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	})

	perSecond := rate.Limit(float64(s.requestsPerMinute) / 60)
	return &Client{
		models:  g,
		model:   s.model,
		limiter: rate.NewLimiter(perSecond, 1),
		breaker: breaker,
		logger:  logger,
	}
}

// Close closes the client
func (c *Client) Close() error {
	// The genai client doesn't have a Close method
	return nil
}

// Complete sends one prompt with the system instruction and sampling settings
// and returns the concatenated text of the first candidate.
func (c *Client) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	c.logger.Debug().Str("model", c.model).Int("prompt_len", len(req.Prompt)).Msg("Generating content")

	out, err := c.breaker.Execute(func() (interface{}, error) {
		result, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), config)
		if err != nil {
			return nil, fmt.Errorf("failed to generate content: %w", err)
		}
		return extractTextFromResponse(result)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoContent
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrNoContent
	}
	return sb.String(), nil
}
