package main

import (
	"fmt"

	"github.com/praetorian-inc/interviewcoach/internal/evaluator"
	"github.com/praetorian-inc/interviewcoach/internal/gateway"
	"github.com/praetorian-inc/interviewcoach/internal/interviewer"
	"github.com/praetorian-inc/interviewcoach/internal/observer"
	"github.com/praetorian-inc/interviewcoach/pkg/config"
	"github.com/praetorian-inc/interviewcoach/pkg/registry"
)

const version = "0.1.0"

// defaultBedrockRegion is used when the configured backend is bedrock; the
// config shape carries no AWS region field, LiteLLM-style deployments
// already pin the account's default region out of band.
const defaultBedrockRegion = "us-east-1"

func printVersion() {
	fmt.Printf("interviewcoach %s\n", version)
}

func listBackends() {
	fmt.Println("Registered LM Gateway Backends")
	fmt.Println("==============================")
	fmt.Println()
	for _, name := range gateway.Backends.List() {
		fmt.Printf("  - %s\n", name)
	}
}

// buildBackend instantiates the gateway.Backend named by cfg.LiteLLMProvider,
// translating Config's flat fields into the registry.Config shape each
// backend factory expects.
func buildBackend(cfg *config.Config) (gateway.Backend, error) {
	var rc registry.Config
	switch cfg.LiteLLMProvider {
	case "bedrock":
		rc = registry.Config{
			"model":  cfg.LiteLLMModel,
			"region": defaultBedrockRegion,
		}
	case "replicate":
		rc = registry.Config{
			"api_key": cfg.LiteLLMAPIKey,
			"model":   cfg.LiteLLMModel,
		}
	default:
		rc = registry.Config{
			"base_url":        cfg.LiteLLMBaseURL,
			"api_key":         cfg.LiteLLMAPIKey,
			"model":           cfg.LiteLLMModel,
			"timeout_seconds": cfg.LiteLLMTimeout,
		}
	}

	backend, err := gateway.Backends.Create(cfg.LiteLLMProvider, rc)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", cfg.LiteLLMProvider, err)
	}
	return backend, nil
}

// agentSet bundles the three LM roles built from one shared Gateway.
type agentSet struct {
	observer    *observer.Analyzer
	interviewer *interviewer.Planner
	evaluator   *evaluator.Reporter
}

func buildAgents(gw *gateway.Gateway, cfg *config.Config) agentSet {
	return agentSet{
		observer: observer.New(gw, observer.Config{
			Temperature:       cfg.Observer.Temperature,
			MaxTokens:         cfg.Observer.MaxTokens,
			GenerationRetries: cfg.Observer.GenerationRetries,
		}),
		interviewer: interviewer.New(gw, interviewer.Config{
			Temperature: cfg.Interviewer.Temperature,
			MaxTokens:   cfg.Interviewer.MaxTokens,
		}),
		evaluator: evaluator.New(gw, evaluator.Config{
			Temperature:       cfg.Evaluator.Temperature,
			MaxTokens:         cfg.Evaluator.MaxTokens,
			GenerationRetries: cfg.Evaluator.GenerationRetries,
		}),
	}
}
