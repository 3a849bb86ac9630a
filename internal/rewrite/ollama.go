package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/valpere/unfriction/internal/postprocess"
)

// OllamaRewriter uses a local Ollama model.
type OllamaRewriter struct {
	model    string
	baseURL  string
	cfg      Config
	prompter *Prompter
	http     *transport
	logger   *zap.Logger
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// NewOllamaRewriter creates a rewriter backed by a local Ollama model.
func NewOllamaRewriter(cfg Config, prompter *Prompter, logger *zap.Logger) *OllamaRewriter {
	cfg = cfg.withDefaults()
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	if prompter == nil {
		prompter = NewPrompter(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaRewriter{
		model:    cfg.Model,
		baseURL:  cfg.Endpoint,
		cfg:      cfg,
		prompter: prompter,
		http:     newTransport(cfg, logger),
		logger:   logger,
	}
}

func (r *OllamaRewriter) Name() string {
	return "ollama"
}

// Rewrite sends the rendered prompt to /api/generate.
func (r *OllamaRewriter) Rewrite(ctx context.Context, req Request) (string, error) {
	prompt, err := r.prompter.Render(req)
	if err != nil {
		return "", err
	}

	jsonData, err := json.Marshal(ollamaRequest{
		Model:  r.model,
		Prompt: prompt,
		System: SystemPrompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: r.cfg.Temperature,
			NumPredict:  maxTokensFor(req, r.cfg.MaxTokens),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal rewrite request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	resp, err := r.http.do(ctx, func() (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/generate", r.baseURL), bytes.NewReader(jsonData))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		return httpReq, nil
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode rewrite response: %w", err)
	}

	out := postprocess.Normalize(ollamaResp.Response)
	if out == "" {
		return "", ErrNoRewrite
	}
	r.logger.Debug("ollama rewrite", zap.String("model", r.model), zap.String("category", string(req.Category)))
	return out, nil
}
