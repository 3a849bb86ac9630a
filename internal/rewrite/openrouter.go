package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"

	"go.uber.org/zap"

	"github.com/valpere/unfriction/internal/postprocess"
)

var DefaultOpenRouterModels = []string{
	"google/gemini-2.0-flash-exp:free",
	"qwen/qwen2.5-72b-instruct:free",
	"mistralai/mistral-nemo:free",
	"meta-llama/llama-3.1-8b-instruct:free",
}

type OpenRouterRewriter struct {
	apiKey   string
	baseURL  string
	models   []string
	cfg      Config
	prompter *Prompter
	http     *transport
	logger   *zap.Logger
}

func NewOpenRouterRewriter(cfg Config, prompter *Prompter, logger *zap.Logger) *OpenRouterRewriter {
	cfg = cfg.withDefaults()
	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	models := DefaultOpenRouterModels
	if cfg.Model != "" {
		models = []string{cfg.Model}
	}
	if prompter == nil {
		prompter = NewPrompter(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenRouterRewriter{
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		models:   models,
		cfg:      cfg,
		prompter: prompter,
		http:     newTransport(cfg, logger),
		logger:   logger,
	}
}

func (s *OpenRouterRewriter) Name() string {
	return "openrouter"
}

func (s *OpenRouterRewriter) pickModel() string {
	return s.models[rand.Intn(len(s.models))]
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (s *OpenRouterRewriter) Rewrite(ctx context.Context, req Request) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("openrouter: %w", ErrMissingKey)
	}

	prompt, err := s.prompter.Render(req)
	if err != nil {
		return "", err
	}
	model := s.pickModel()
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: s.cfg.Temperature,
		MaxTokens:   maxTokensFor(req, s.cfg.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.http.do(ctx, func() (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
		httpReq.Header.Set("HTTP-Referer", "https://unfriction.local")
		httpReq.Header.Set("X-Title", "unfriction")
		return httpReq, nil
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		s.logger.Warn("openrouter error", zap.Int("status", resp.StatusCode), zap.Any("body", errResp))
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from API", ErrNoRewrite)
	}

	s.logger.Debug("openrouter rewrite",
		zap.String("model", model),
		zap.String("category", string(req.Category)),
		zap.Int("prompt_tokens", out.Usage.PromptTokens),
		zap.Int("completion_tokens", out.Usage.CompletionTokens))

	return postprocess.Normalize(out.Choices[0].Message.Content), nil
}
