package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"taxquery/config"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Provider 底层文本补全服务
type Provider interface {
	Complete(ctx context.Context, prompt string, stop []string) (string, error)
	Name() string
}

// OpenAIProvider OpenAI 兼容接口（默认指向 Groq）
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider 创建 OpenAI 兼容 provider
func NewOpenAIProvider(baseURL, apiKey, model string, temperature float32) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, stop []string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		Stop:        stop,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GeminiProvider Google Gemini
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider 创建 Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey, model string, temperature float32) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{client: client, model: model, temperature: temperature}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Complete(ctx context.Context, prompt string, stop []string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:   genai.Ptr(p.temperature),
		StopSequences: stop,
	}
	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return result.Text(), nil
}

// NewProvider 根据配置创建 provider，API key 为空时从环境变量读取
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		key := firstNonEmpty(cfg.APIKey, os.Getenv("GEMINI_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set")
		}
		return NewGeminiProvider(ctx, key, cfg.Model, cfg.Temperature)
	case "", "openai", "groq":
		key := firstNonEmpty(cfg.APIKey, os.Getenv("GROQ_API_KEY"), os.Getenv("OPENAI_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("GROQ_API_KEY / OPENAI_API_KEY not set")
		}
		return NewOpenAIProvider(cfg.BaseURL, key, cfg.Model, cfg.Temperature), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
