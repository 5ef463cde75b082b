package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/orchestration"
)

var tracer = otel.Tracer("doc-orchestrator/llm")

// OpenAIClient adapts the OpenAI chat completion API to the orchestration
// backend contract. All calls pass through a circuit breaker so a degraded
// upstream fails fast instead of stalling every agent.
type OpenAIClient struct {
	client  openai.Client
	breaker *gobreaker.CircuitBreaker
}

// NewOpenAIClient builds a client for the given API key. baseURL overrides
// the upstream endpoint and is primarily used by tests.
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	settings := gobreaker.Settings{
		Name:        "openai-chat",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s changed from %s to %s", name, from, to)
		},
	}

	return &OpenAIClient{
		client:  openai.NewClient(opts...),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Complete sends the conversation to the chat completion endpoint and
// returns the reply text plus total token usage.
func (c *OpenAIClient) Complete(ctx context.Context, model string, messages []orchestration.ChatMessage) (string, int, error) {
	ctx, span := tracer.Start(ctx, "llm.complete", trace.WithAttributes(
		attribute.String("llm.model", model),
		attribute.Int("llm.messages", len(messages)),
	))
	defer span.End()

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	for _, m := range messages {
		switch m.Role {
		case orchestration.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case orchestration.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		span.RecordError(err)
		return "", 0, fmt.Errorf("chat completion: %w", err)
	}

	resp := result.(*openai.ChatCompletion)
	if len(resp.Choices) == 0 {
		return "", int(resp.Usage.TotalTokens), fmt.Errorf("chat completion: empty choices")
	}

	tokens := int(resp.Usage.TotalTokens)
	span.SetAttributes(attribute.Int("llm.tokens_used", tokens))
	return resp.Choices[0].Message.Content, tokens, nil
}
