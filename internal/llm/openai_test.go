package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/orchestration"
)

// chatServer fakes the chat completions endpoint and records request bodies.
type chatServer struct {
	mu       sync.Mutex
	bodies   [][]byte
	status   int
	response string
}

func newChatServer(status int, response string) (*chatServer, *httptest.Server) {
	cs := &chatServer{status: status, response: response}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		cs.mu.Lock()
		cs.bodies = append(cs.bodies, body)
		cs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(cs.status)
		w.Write([]byte(cs.response))
	}))
	return cs, srv
}

func testMessages() []orchestration.ChatMessage {
	return []orchestration.ChatMessage{
		{Role: orchestration.RoleSystem, Content: "You are a documentation writer."},
		{Role: orchestration.RoleUser, Content: "Document the billing module."},
		{Role: orchestration.RoleAssistant, Content: "Draft one."},
		{Role: orchestration.RoleUser, Content: "Expand it."},
	}
}

func TestCompleteSuccess(t *testing.T) {
	cs, srv := newChatServer(http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "## Billing\n\nGenerated documentation."}}],
		"usage": {"prompt_tokens": 100, "completion_tokens": 400, "total_tokens": 500}
	}`)
	defer srv.Close()

	client := NewOpenAIClient("test-key", srv.URL+"/")
	content, tokens, err := client.Complete(context.Background(), "gpt-4-turbo", testMessages())

	require.NoError(t, err)
	assert.Equal(t, "## Billing\n\nGenerated documentation.", content)
	assert.Equal(t, 500, tokens)

	require.Len(t, cs.bodies, 1)
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(cs.bodies[0], &req))
	assert.Equal(t, "gpt-4-turbo", req.Model)
	require.Len(t, req.Messages, 4)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Equal(t, "assistant", req.Messages[2].Role)
	assert.Equal(t, "user", req.Messages[3].Role)
	assert.Equal(t, "Draft one.", req.Messages[2].Content)
}

func TestCompleteEmptyChoices(t *testing.T) {
	_, srv := newChatServer(http.StatusOK, `{
		"id": "chatcmpl-2",
		"object": "chat.completion",
		"choices": [],
		"usage": {"total_tokens": 7}
	}`)
	defer srv.Close()

	client := NewOpenAIClient("test-key", srv.URL+"/")
	content, tokens, err := client.Complete(context.Background(), "gpt-4-turbo", testMessages())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty choices")
	assert.Empty(t, content)
	assert.Equal(t, 7, tokens)
}

func TestCompleteUpstreamError(t *testing.T) {
	_, srv := newChatServer(http.StatusUnauthorized, `{"error": {"message": "invalid api key"}}`)
	defer srv.Close()

	client := NewOpenAIClient("bad-key", srv.URL+"/")
	_, _, err := client.Complete(context.Background(), "gpt-4-turbo", testMessages())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}

func TestCompleteCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	_, srv := newChatServer(http.StatusUnauthorized, `{"error": {"message": "invalid api key"}}`)
	defer srv.Close()

	client := NewOpenAIClient("bad-key", srv.URL+"/")
	for i := 0; i < 6; i++ {
		_, _, err := client.Complete(context.Background(), "gpt-4-turbo", testMessages())
		require.Error(t, err)
	}

	_, _, err := client.Complete(context.Background(), "gpt-4-turbo", testMessages())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}
