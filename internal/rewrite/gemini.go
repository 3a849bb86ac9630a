package rewrite

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/valpere/unfriction/internal/postprocess"
)

// GeminiRewriter generates rewrites with Google's Gemini API.
type GeminiRewriter struct {
	client   *genai.Client
	model    string
	cfg      Config
	prompter *Prompter
	logger   *zap.Logger
}

// NewGeminiRewriter creates a Gemini-backed rewriter.
func NewGeminiRewriter(ctx context.Context, cfg Config, prompter *Prompter, logger *zap.Logger) (*GeminiRewriter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingKey)
	}
	cfg = cfg.withDefaults()
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	if prompter == nil {
		prompter = NewPrompter(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiRewriter{
		client:   client,
		model:    cfg.Model,
		cfg:      cfg,
		prompter: prompter,
		logger:   logger,
	}, nil
}

func (g *GeminiRewriter) Name() string {
	return "gemini"
}

func (g *GeminiRewriter) Rewrite(ctx context.Context, req Request) (string, error) {
	prompt, err := g.prompter.Render(req)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx,
		g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(g.cfg.Temperature),
			MaxOutputTokens:   int32(maxTokensFor(req, g.cfg.MaxTokens)),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	out := postprocess.Normalize(resp.Text())
	if out == "" {
		return "", ErrNoRewrite
	}
	g.logger.Debug("gemini rewrite", zap.String("model", g.model), zap.String("category", string(req.Category)))
	return out, nil
}
