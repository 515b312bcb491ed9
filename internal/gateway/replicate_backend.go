package gateway

import (
	"context"
	"fmt"
	"strings"

	replicatego "github.com/replicate/replicate-go"
)

// ReplicateBackend drives a Replicate-hosted model directly. Replicate has
// no native multi-turn chat primitive, so (matching this codebase's own
// Replicate generator) only the latest user message is forwarded as the
// prompt; the conversational history a chat model would need is the
// openai/bedrock backends' job.
type ReplicateBackend struct {
	client            *replicatego.Client
	model             string
	temperature       float32
	topP              float32
	repetitionPenalty float32
	maxTokens         int
	seed              int
}

// NewReplicateBackend constructs a backend for the given model identifier
// (e.g. "meta/llama-2-7b-chat").
func NewReplicateBackend(apiKey, model string, temperature, topP, repetitionPenalty float32, maxTokens, seed int) (*ReplicateBackend, error) {
	client, err := replicatego.NewClient(replicatego.WithToken(apiKey))
	if err != nil {
		return nil, fmt.Errorf("replicate backend: failed to create client: %w", err)
	}
	return &ReplicateBackend{
		client:            client,
		model:             model,
		temperature:       temperature,
		topP:              topP,
		repetitionPenalty: repetitionPenalty,
		maxTokens:         maxTokens,
		seed:              seed,
	}, nil
}

func (b *ReplicateBackend) Name() string { return "replicate" }

func (b *ReplicateBackend) Complete(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	prompt := lastUserMessage(req.Messages)
	if prompt == "" {
		return ChatResponse{}, &GatewayError{StatusCode: 400, Body: "replicate backend: request has no user message"}
	}

	input := replicatego.PredictionInput{
		"prompt":             prompt,
		"temperature":        float64(b.temperature),
		"top_p":              float64(b.topP),
		"repetition_penalty": float64(b.repetitionPenalty),
		"seed":               b.seed,
	}
	maxTokens := b.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 {
		input["max_length"] = maxTokens
	}

	output, err := b.client.Run(ctx, b.model, input, nil)
	if err != nil {
		return ChatResponse{}, wrapReplicateError(err)
	}
	return ChatResponse{Content: extractReplicateText(output)}, nil
}

func extractReplicateText(output replicatego.PredictionOutput) string {
	switch v := output.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, "")
	case []any:
		parts := make([]string, 0, len(v))
		for _, elem := range v {
			if s, ok := elem.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "")
	default:
		return fmt.Sprintf("%v", output)
	}
}

func wrapReplicateError(err error) error {
	if apiErr, ok := err.(*replicatego.APIError); ok {
		return &GatewayError{StatusCode: apiErr.Status, Body: apiErr.Error()}
	}
	return &GatewayError{StatusCode: 0, Body: err.Error()}
}
