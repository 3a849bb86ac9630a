package rewrite

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"go.uber.org/zap"

	"github.com/valpere/unfriction/internal/postprocess"
)

const (
	azureModule            = "unfriction/rewrite"
	azureVersion           = "v1.0.0"
	defaultAzureAPIVersion = "2024-02-15-preview"
)

// AzureRewriter calls an Azure OpenAI chat deployment through an azcore
// pipeline, which owns retries for 408, 429 and 5xx responses.
type AzureRewriter struct {
	pipeline runtime.Pipeline
	endpoint string
	cfg      Config
	prompter *Prompter
	logger   *zap.Logger
}

// NewAzureRewriter validates cfg and builds the pipeline. transport may be
// nil to use the default HTTP client.
func NewAzureRewriter(cfg Config, prompter *Prompter, logger *zap.Logger, transport policy.Transporter) (*AzureRewriter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("azure: %w", ErrMissingKey)
	}
	if cfg.Endpoint == "" || cfg.Deployment == "" {
		return nil, fmt.Errorf("azure: endpoint and deployment are required")
	}
	cfg = cfg.withDefaults()
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAzureAPIVersion
	}

	opts := &policy.ClientOptions{
		Retry: policy.RetryOptions{
			MaxRetries:    int32(cfg.MaxRetries),
			RetryDelay:    time.Second,
			MaxRetryDelay: 30 * time.Second,
			TryTimeout:    cfg.Timeout,
		},
	}
	if transport != nil {
		opts.Transport = transport
	}

	if prompter == nil {
		prompter = NewPrompter(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AzureRewriter{
		pipeline: runtime.NewPipeline(azureModule, azureVersion, runtime.PipelineOptions{}, opts),
		endpoint: strings.TrimRight(cfg.Endpoint, "/") + "/",
		cfg:      cfg,
		prompter: prompter,
		logger:   logger,
	}, nil
}

func (a *AzureRewriter) Name() string {
	return "azure"
}

func (a *AzureRewriter) url() string {
	return fmt.Sprintf("%sopenai/deployments/%s/chat/completions?api-version=%s",
		a.endpoint, url.PathEscape(a.cfg.Deployment), url.QueryEscape(a.cfg.APIVersion))
}

func (a *AzureRewriter) Rewrite(ctx context.Context, req Request) (string, error) {
	prompt, err := a.prompter.Render(req)
	if err != nil {
		return "", err
	}

	httpReq, err := runtime.NewRequest(ctx, http.MethodPost, a.url())
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Raw().Header.Set("api-key", a.cfg.APIKey)

	body := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: a.cfg.Temperature,
		MaxTokens:   maxTokensFor(req, a.cfg.MaxTokens),
	}
	if err := runtime.MarshalAsJSON(httpReq, body); err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := a.pipeline.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: azure request failed: %v", ErrNoRewrite, err)
	}
	if !runtime.HasStatusCode(resp, http.StatusOK) {
		return "", runtime.NewResponseError(resp)
	}

	var out chatResponse
	if err := runtime.UnmarshalAsJSON(resp, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from API", ErrNoRewrite)
	}

	a.logger.Debug("azure rewrite",
		zap.String("deployment", a.cfg.Deployment),
		zap.String("category", string(req.Category)),
		zap.Int("total_tokens", out.Usage.TotalTokens))

	return postprocess.Normalize(out.Choices[0].Message.Content), nil
}
