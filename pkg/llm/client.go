package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/watchengine/watch-engine-backend/pkg/config"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
	"github.com/watchengine/watch-engine-backend/pkg/metrics"
)

const (
	breakerName       = "openai"
	operationChat     = "chat"
	operationEmbed    = "embedding"
	defaultChatModel  = openai.GPT4Turbo
	defaultEmbedModel = openai.SmallEmbedding3
)

var errAPIKeyRequired = errors.New("openai api key is required")

// ChatRequest is a single system+user exchange.
type ChatRequest struct {
	System      string
	User        string
	Temperature float32
	Seed        *int
}

// Chatter returns the assistant text for a chat exchange.
type Chatter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Embedder turns text into a fixed-size embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Client wraps the OpenAI API behind a circuit breaker. It implements both
// Chatter and Embedder.
type Client struct {
	api        completionAPI
	breaker    *gobreaker.CircuitBreaker[any]
	chatModel  string
	embedModel openai.EmbeddingModel
	dimensions int
	timeout    time.Duration
	metrics    *metrics.LLMMetrics
	logg       *logger.Logger
}

// Option configures optional client behavior.
type Option func(*options)

type options struct {
	httpClient *http.Client
	metrics    *metrics.LLMMetrics
	logg       *logger.Logger
	api        completionAPI
}

// WithHTTPClient overrides the HTTP client handed to the OpenAI SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

func WithMetrics(m *metrics.LLMMetrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithLogger(logg *logger.Logger) Option {
	return func(o *options) { o.logg = logg }
}

func withAPI(api completionAPI) Option {
	return func(o *options) { o.api = api }
}

func NewClient(cfg config.OpenAIConfig, opts ...Option) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errAPIKeyRequired
	}
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	api := o.api
	if api == nil {
		sdkCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
		if base := strings.TrimSpace(cfg.BaseURL); base != "" {
			sdkCfg.BaseURL = base
		}
		if o.httpClient != nil {
			sdkCfg.HTTPClient = o.httpClient
		}
		api = openai.NewClientWithConfig(sdkCfg)
	}

	c := &Client{
		api:        api,
		chatModel:  firstNonEmpty(cfg.ChatModel, defaultChatModel),
		embedModel: openai.EmbeddingModel(firstNonEmpty(cfg.EmbeddingModel, string(defaultEmbedModel))),
		dimensions: cfg.EmbeddingDimensions,
		timeout:    cfg.Timeout,
		metrics:    o.metrics,
		logg:       o.logg,
	}
	c.breaker = newBreaker(cfg, c.onStateChange)
	c.metrics.SetBreakerState(breakerName, int(gobreaker.StateClosed))
	return c, nil
}

func newBreaker(cfg config.OpenAIConfig, onChange func(name string, from, to gobreaker.State)) *gobreaker.CircuitBreaker[any] {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful:  countsAsHealthy,
		OnStateChange: onChange,
	})
}

// countsAsHealthy keeps caller mistakes (bad key, bad request) from tripping the breaker.
func countsAsHealthy(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.HTTPStatusCode
		return status >= 400 && status < 500 && status != http.StatusTooManyRequests
	}
	return false
}

func (c *Client) onStateChange(name string, from, to gobreaker.State) {
	c.metrics.SetBreakerState(name, int(to))
	if c.logg == nil {
		return
	}
	ctx := c.logg.WithFields(context.Background(), map[string]any{
		"breaker": name,
		"from":    from.String(),
		"to":      to.String(),
	})
	c.logg.Warn(ctx, "llm.breaker.state_change")
}

// Complete sends a chat completion and returns the first choice content. An
// empty string means the model produced no content.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "OpenAI API key is not configured")
	}
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User})

	resp, err := execute(c, ctx, operationChat, func(ctx context.Context) (openai.ChatCompletionResponse, error) {
		return c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.chatModel,
			Messages:    messages,
			Temperature: req.Temperature,
			Seed:        req.Seed,
		})
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Embed returns the embedding for text using the configured model and dimensions.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "OpenAI API key is not configured")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "embedding text is required")
	}

	resp, err := execute(c, ctx, operationEmbed, func(ctx context.Context) (openai.EmbeddingResponse, error) {
		return c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:      []string{text},
			Model:      c.embedModel,
			Dimensions: c.dimensions,
		})
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "No embedding returned from OpenAI")
	}
	return resp.Data[0].Embedding, nil
}

func execute[T any](c *Client, ctx context.Context, operation string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.breaker.Execute(func() (any, error) {
		return fn(ctx)
	})
	elapsed := time.Since(start)
	if err != nil {
		mapped := mapError(err)
		c.metrics.ObserveCall(operation, outcomeFor(mapped), elapsed)
		return zero, mapped
	}
	c.metrics.ObserveCall(operation, metrics.OutcomeSuccess, elapsed)
	typed, ok := out.(T)
	if !ok {
		return zero, pkgerrors.New(pkgerrors.CodeInternal, "unexpected llm response type")
	}
	return typed, nil
}

func mapError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "OpenAI is temporarily unavailable")
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code, _ := apiErr.Code.(string)
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized || code == "invalid_api_key":
			return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "OpenAI API key is invalid")
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return pkgerrors.Wrap(pkgerrors.CodeRateLimit, err, "OpenAI rate limit exceeded")
		}
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "OpenAI request failed")
	}
	return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "OpenAI request failed")
}

func outcomeFor(err error) string {
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeDependency:
		return metrics.OutcomeUnavailable
	case pkgerrors.CodeUnauthorized, pkgerrors.CodeRateLimit:
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailure
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
