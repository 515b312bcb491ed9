package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/praetorian-inc/interviewcoach/pkg/registry"
)

// Backends is the process-wide registry of LM Gateway backend factories,
// selected by the configured LITELLM_PROVIDER name.
var Backends = registry.New[Backend]("gateway.Backend")

func init() {
	Backends.Register("openai", newOpenAIBackendFromConfig)
	Backends.Register("bedrock", newBedrockBackendFromConfig)
	Backends.Register("replicate", newReplicateBackendFromConfig)
}

func newOpenAIBackendFromConfig(cfg registry.Config) (Backend, error) {
	baseURL, err := registry.RequireString(cfg, "base_url")
	if err != nil {
		return nil, fmt.Errorf("openai backend: %w", err)
	}
	apiKey, err := registry.GetAPIKeyWithEnv(cfg, "OPENAI_API_KEY", "openai")
	if err != nil {
		return nil, fmt.Errorf("openai backend: %w", err)
	}
	model, err := registry.RequireString(cfg, "model")
	if err != nil {
		return nil, fmt.Errorf("openai backend: %w", err)
	}
	timeoutSeconds := registry.GetInt(cfg, "timeout_seconds", 120)
	return NewOpenAIBackend(baseURL, apiKey, model, time.Duration(timeoutSeconds)*time.Second), nil
}

func newBedrockBackendFromConfig(cfg registry.Config) (Backend, error) {
	model, err := registry.RequireString(cfg, "model")
	if err != nil {
		return nil, fmt.Errorf("bedrock backend: %w", err)
	}
	region, err := registry.RequireString(cfg, "region")
	if err != nil {
		return nil, fmt.Errorf("bedrock backend: %w", err)
	}
	maxTokens := registry.GetInt(cfg, "max_tokens", 1024)
	temperature := registry.GetFloat64(cfg, "temperature", 0.7)
	topP := registry.GetFloat64(cfg, "top_p", 0)
	return NewBedrockBackend(context.Background(), model, region, maxTokens, temperature, topP)
}

func newReplicateBackendFromConfig(cfg registry.Config) (Backend, error) {
	apiKey, err := registry.GetAPIKeyWithEnv(cfg, "REPLICATE_API_TOKEN", "replicate")
	if err != nil {
		return nil, fmt.Errorf("replicate backend: %w", err)
	}
	model, err := registry.RequireString(cfg, "model")
	if err != nil {
		return nil, fmt.Errorf("replicate backend: %w", err)
	}
	temperature := registry.GetFloat32(cfg, "temperature", 1.0)
	topP := registry.GetFloat32(cfg, "top_p", 1.0)
	repetitionPenalty := registry.GetFloat32(cfg, "repetition_penalty", 1.0)
	maxTokens := registry.GetInt(cfg, "max_tokens", 0)
	seed := registry.GetInt(cfg, "seed", 9)
	return NewReplicateBackend(apiKey, model, temperature, topP, repetitionPenalty, maxTokens, seed)
}
