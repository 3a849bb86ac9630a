package rewrite

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/unfriction/internal/friction"
)

var modalReq = Request{
	Category: friction.Modal,
	Context:  "moderate",
	Text:     "You should call her.",
	Attempt:  1,
	Matches:  1,
}

func chatReply(w http.ResponseWriter, content string) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
}

func TestOpenRouterRewriter_NoAPIKey(t *testing.T) {
	r := NewOpenRouterRewriter(Config{}, nil, nil)

	_, err := r.Rewrite(context.Background(), modalReq)
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestOpenRouterRewriter_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test/model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "You should call her.")
		assert.InDelta(t, 0.3, req.Temperature, 1e-6)
		assert.Equal(t, 150, req.MaxTokens)

		chatReply(w, "Here is the rewritten text: \"You might call her .\"")
	}))
	defer server.Close()

	r := NewOpenRouterRewriter(Config{APIKey: "test-key", Endpoint: server.URL, Model: "test/model"}, nil, nil)

	out, err := r.Rewrite(context.Background(), modalReq)
	require.NoError(t, err)
	assert.Equal(t, "You might call her.", out)
}

func TestOpenRouterRewriter_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		chatReply(w, "You might call her.")
	}))
	defer server.Close()

	r := NewOpenRouterRewriter(Config{APIKey: "k", Endpoint: server.URL, Model: "m", MaxRetries: 3}, nil, nil)
	r.http.backoff = time.Millisecond

	out, err := r.Rewrite(context.Background(), modalReq)
	require.NoError(t, err)
	assert.Equal(t, "You might call her.", out)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestOpenRouterRewriter_GivesUp(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	r := NewOpenRouterRewriter(Config{APIKey: "k", Endpoint: server.URL, Model: "m", MaxRetries: 2}, nil, nil)
	r.http.backoff = time.Millisecond

	_, err := r.Rewrite(context.Background(), modalReq)
	assert.ErrorIs(t, err, ErrNoRewrite)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestOpenRouterRewriter_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	r := NewOpenRouterRewriter(Config{APIKey: "k", Endpoint: server.URL, Model: "m"}, nil, nil)

	_, err := r.Rewrite(context.Background(), modalReq)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenRouterRewriter_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	r := NewOpenRouterRewriter(Config{APIKey: "k", Endpoint: server.URL, Model: "m"}, nil, nil)

	_, err := r.Rewrite(context.Background(), modalReq)
	assert.ErrorIs(t, err, ErrNoRewrite)
}

func TestOllamaRewriter_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, SystemPrompt, req.System)
		assert.Contains(t, req.Prompt, "You should call her.")

		json.NewEncoder(w).Encode(ollamaResponse{Response: "<think>swap it</think>You might call her."})
	}))
	defer server.Close()

	r := NewOllamaRewriter(Config{Endpoint: server.URL}, nil, nil)

	out, err := r.Rewrite(context.Background(), modalReq)
	require.NoError(t, err)
	assert.Equal(t, "You might call her.", out)
}

func TestOllamaRewriter_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaResponse{Response: ""})
	}))
	defer server.Close()

	r := NewOllamaRewriter(Config{Endpoint: server.URL}, nil, nil)

	_, err := r.Rewrite(context.Background(), modalReq)
	assert.ErrorIs(t, err, ErrNoRewrite)
}

func TestOllamaRewriter_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	r := NewOllamaRewriter(Config{Endpoint: server.URL}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Rewrite(ctx, modalReq)
	require.Error(t, err)
}

func TestNewAzureRewriter_Validation(t *testing.T) {
	_, err := NewAzureRewriter(Config{}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = NewAzureRewriter(Config{APIKey: "k"}, nil, nil, nil)
	assert.Error(t, err)
}

func TestAzureRewriter_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/gpt4o/chat/completions", r.URL.Path)
		assert.Equal(t, defaultAzureAPIVersion, r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Empty(t, req.Model)
		assert.Equal(t, 150, req.MaxTokens)

		chatReply(w, "You might call her.")
	}))
	defer server.Close()

	r, err := NewAzureRewriter(Config{APIKey: "secret", Endpoint: server.URL, Deployment: "gpt4o"}, nil, nil, server.Client())
	require.NoError(t, err)

	out, err := r.Rewrite(context.Background(), modalReq)
	require.NoError(t, err)
	assert.Equal(t, "You might call her.", out)
}

func TestAzureRewriter_BadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"content_filter","message":"filtered"}}`))
	}))
	defer server.Close()

	r, err := NewAzureRewriter(Config{APIKey: "secret", Endpoint: server.URL, Deployment: "d"}, nil, nil, server.Client())
	require.NoError(t, err)

	_, err = r.Rewrite(context.Background(), modalReq)
	var respErr *azcore.ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusBadRequest, respErr.StatusCode)
}

func TestPrompter_PlaceholderHint(t *testing.T) {
	p := NewPrompter(nil)

	plain, err := p.Render(modalReq)
	require.NoError(t, err)
	assert.NotContains(t, plain, "[PHn]")

	req := modalReq
	req.Text = "You should open [PH0] today."
	withMarker, err := p.Render(req)
	require.NoError(t, err)
	assert.True(t, strings.Contains(withMarker, "[PHn]"))
}
