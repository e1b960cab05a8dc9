package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ivlev/adforge/internal/config"
	"github.com/ivlev/adforge/internal/logger"

	"github.com/ollama/ollama/api"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrGenerationFailed wraps every failed completion.
var ErrGenerationFailed = errors.New("text generation failed")

// Request is a single chat completion: a system instruction and a user prompt.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
}

// Completer turns a prompt into raw model text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// NewCompleter picks the client implementation named by cfg.AIClientType.
func NewCompleter(cfg *config.Config, log *zap.Logger) (Completer, error) {
	log = logger.OrNop(log)
	switch strings.ToLower(cfg.AIClientType) {
	case "openai", "":
		if cfg.AIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		openaiConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
		if cfg.AIBaseURL != "" {
			openaiConfig.BaseURL = cfg.AIBaseURL
		}
		openaiConfig.HTTPClient = &http.Client{Timeout: cfg.AITimeout}
		log.Info("OpenAI client created",
			zap.String("base_url", openaiConfig.BaseURL),
			zap.String("model", cfg.AIModel),
			zap.Duration("timeout", cfg.AITimeout))
		return &openAIClient{
			client: openaigo.NewClientWithConfig(openaiConfig),
			model:  cfg.AIModel,
			log:    log,
		}, nil
	case "ollama":
		return newOllamaClient(cfg, log)
	default:
		return nil, fmt.Errorf("unknown AI client type: '%s'", cfg.AIClientType)
	}
}

type openAIClient struct {
	client *openaigo.Client
	model  string
	log    *zap.Logger
}

func (c *openAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: req.SystemPrompt},
		{Role: openaigo.ChatMessageRoleUser, Content: req.UserPrompt},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
	})
	duration := time.Since(start)

	if err != nil {
		observe(c.model, statusError, duration)
		c.log.Error("AI request failed", zap.String("model", c.model), zap.Duration("took", duration), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		observe(c.model, statusEmpty, duration)
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	observe(c.model, statusSuccess, duration)
	c.log.Info("AI response received",
		zap.String("model", c.model),
		zap.Duration("took", duration),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	return resp.Choices[0].Message.Content, nil
}

type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

func newOllamaClient(cfg *config.Config, log *zap.Logger) (*ollamaClient, error) {
	// api.NewClient wants the bare host URL.
	baseURL := strings.TrimSuffix(cfg.AIBaseURL, "/v1")
	baseURL = strings.TrimSuffix(baseURL, "/")

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL '%s': %w", baseURL, err)
	}

	log.Info("Ollama client created",
		zap.String("base_url", baseURL),
		zap.String("model", cfg.AIModel),
		zap.Duration("timeout", cfg.AITimeout))

	return &ollamaClient{
		client:  api.NewClient(parsedURL, &http.Client{Timeout: cfg.AITimeout}),
		model:   cfg.AIModel,
		timeout: cfg.AITimeout,
		log:     log,
	}, nil
}

func (c *ollamaClient) Complete(ctx context.Context, req Request) (string, error) {
	stream := false
	chatReq := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": req.Temperature,
		},
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	var resp api.ChatResponse
	err := c.client.Chat(ctx, chatReq, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		observe(c.model, statusError, duration)
		c.log.Error("Ollama request failed", zap.String("model", c.model), zap.Duration("took", duration), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if resp.Message.Content == "" {
		observe(c.model, statusEmpty, duration)
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	observe(c.model, statusSuccess, duration)
	c.log.Info("Ollama response received",
		zap.String("model", c.model),
		zap.Duration("took", duration),
		zap.Int("prompt_tokens", resp.PromptEvalCount),
		zap.Int("completion_tokens", resp.EvalCount))
	return resp.Message.Content, nil
}
