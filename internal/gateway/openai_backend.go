package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend speaks the OpenAI-compatible chat completions endpoint
// (LiteLLM proxy, OpenAI itself, or any bit-compatible gateway in front of
// another provider).
type OpenAIBackend struct {
	client *goopenai.Client
	model  string
}

// NewOpenAIBackend builds a backend pointed at baseURL, normalizing it to
// carry a /v1 suffix the way the teacher's LiteLLM generator does, with the
// same pooled-transport HTTP client configuration.
func NewOpenAIBackend(baseURL, apiKey, model string, timeout time.Duration) *OpenAIBackend {
	cfg := goopenai.DefaultConfig(apiKey)

	normalized := strings.TrimSuffix(baseURL, "/")
	if !strings.HasSuffix(normalized, "/v1") {
		normalized += "/v1"
	}
	cfg.BaseURL = normalized

	cfg.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &OpenAIBackend{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Complete(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	creq := goopenai.ChatCompletionRequest{
		Model:    b.model,
		Messages: messages,
	}
	if req.Temperature != 0 {
		creq.Temperature = req.Temperature
	}
	if req.MaxTokens > 0 {
		creq.MaxTokens = req.MaxTokens
	}
	if req.ResponseFormat != nil {
		creq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.ResponseFormat.Name,
				Schema: json.RawMessage(req.ResponseFormat.Schema),
				Strict: true,
			},
		}
	}

	resp, err := b.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return ChatResponse{}, wrapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return ChatResponse{}, &GatewayError{StatusCode: 0, Body: "empty choices in LM response"}
	}

	out := ChatResponse{Content: resp.Choices[0].Message.Content}
	if resp.Usage.TotalTokens > 0 {
		out.HasUsage = true
		out.Usage = Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return out, nil
}

// wrapOpenAIError maps go-openai's error types onto the gateway's taxonomy.
func wrapOpenAIError(err error) error {
	if apiErr, ok := err.(*goopenai.APIError); ok {
		return &GatewayError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	if reqErr, ok := err.(*goopenai.RequestError); ok {
		return &GatewayError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	// Transport-level failure (timeout, connection reset, context cancellation).
	return &GatewayError{StatusCode: 0, Body: err.Error()}
}
