// Package config defines the interview coach's runtime configuration: the
// LM gateway endpoint, per-agent generation parameters, and the ambient
// stack (logging, metrics, observability, persisted logs).
package config

import (
	"fmt"
	"strings"
)

// AgentConfig carries one agent's per-call generation parameters.
type AgentConfig struct {
	Temperature       float64 `yaml:"temperature" koanf:"temperature" validate:"gte=0,lte=2"`
	MaxTokens         int     `yaml:"max_tokens" koanf:"max_tokens" validate:"gte=64,lte=8192"`
	GenerationRetries int     `yaml:"generation_retries" koanf:"generation_retries" validate:"gte=0,lte=10"`
}

// Config is the complete interview coach configuration.
type Config struct {
	LiteLLMBaseURL    string `yaml:"litellm_base_url" koanf:"litellm_base_url" validate:"required,url"`
	LiteLLMAPIKey     string `yaml:"litellm_api_key" koanf:"litellm_api_key"`
	LiteLLMModel      string `yaml:"litellm_model" koanf:"litellm_model" validate:"required"`
	LiteLLMTimeout    int    `yaml:"litellm_timeout" koanf:"litellm_timeout" validate:"gte=1"`
	LiteLLMMaxRetries int    `yaml:"litellm_max_retries" koanf:"litellm_max_retries" validate:"gte=0"`
	LiteLLMProvider   string `yaml:"litellm_provider" koanf:"litellm_provider" validate:"oneof=openai bedrock replicate"`

	MaxTurns           int    `yaml:"max_turns" koanf:"max_turns" validate:"gte=1"`
	HistoryWindowTurns int    `yaml:"history_window_turns" koanf:"history_window_turns" validate:"gte=1"`
	InterviewLogDir    string `yaml:"interview_log_dir" koanf:"interview_log_dir" validate:"required"`

	MetricsAddr string `yaml:"metrics_addr" koanf:"metrics_addr"`

	ObservabilityEnabled bool   `yaml:"observability_enabled" koanf:"observability_enabled"`
	OTelEndpoint         string `yaml:"otel_exporter_otlp_endpoint" koanf:"otel_exporter_otlp_endpoint"`

	Observer    AgentConfig `yaml:"observer" koanf:"observer"`
	Interviewer AgentConfig `yaml:"interviewer" koanf:"interviewer"`
	Evaluator   AgentConfig `yaml:"evaluator" koanf:"evaluator"`
}

// Defaults returns a Config pre-populated with the values the interview
// runs on when no file or environment variable overrides a field.
func Defaults() *Config {
	return &Config{
		LiteLLMBaseURL:     "http://localhost:4000",
		LiteLLMModel:       "gpt-4o-mini",
		LiteLLMTimeout:     60,
		LiteLLMMaxRetries:  2,
		LiteLLMProvider:    "openai",
		MaxTurns:           20,
		HistoryWindowTurns: 10,
		InterviewLogDir:    "./interview_logs",
		Observer:           AgentConfig{Temperature: 0.2, MaxTokens: 512, GenerationRetries: 2},
		Interviewer:        AgentConfig{Temperature: 0.6, MaxTokens: 400, GenerationRetries: 0},
		Evaluator:          AgentConfig{Temperature: 0.3, MaxTokens: 2048, GenerationRetries: 2},
	}
}

// Validate checks invariants struct tags can't express cleanly and returns a
// message naming the offending field. A missing API key is not checked here:
// the openai and replicate backends report it when they are built, before
// the session's first LM call.
func (c *Config) Validate() error {
	c.LiteLLMBaseURL = strings.TrimRight(c.LiteLLMBaseURL, "/")

	if c.LiteLLMTimeout < 1 {
		return fmt.Errorf("litellm_timeout must be >= 1 second, got: %d", c.LiteLLMTimeout)
	}
	if c.LiteLLMMaxRetries < 0 {
		return fmt.Errorf("litellm_max_retries must be non-negative, got: %d", c.LiteLLMMaxRetries)
	}
	switch c.LiteLLMProvider {
	case "openai", "bedrock", "replicate":
	default:
		return fmt.Errorf("litellm_provider must be one of openai, bedrock, replicate, got: %q", c.LiteLLMProvider)
	}
	if c.MaxTurns < 1 {
		return fmt.Errorf("max_turns must be >= 1, got: %d", c.MaxTurns)
	}
	if c.HistoryWindowTurns < 1 {
		return fmt.Errorf("history_window_turns must be >= 1, got: %d", c.HistoryWindowTurns)
	}
	if c.InterviewLogDir == "" {
		return fmt.Errorf("interview_log_dir must not be empty")
	}
	for _, agent := range []struct {
		name string
		cfg  AgentConfig
	}{{"observer", c.Observer}, {"interviewer", c.Interviewer}, {"evaluator", c.Evaluator}} {
		if err := agent.cfg.validate(agent.name); err != nil {
			return err
		}
	}
	return nil
}

func (a AgentConfig) validate(name string) error {
	if a.Temperature < 0 || a.Temperature > 2 {
		return fmt.Errorf("%s.temperature must be in [0, 2], got: %f", name, a.Temperature)
	}
	if a.MaxTokens < 64 || a.MaxTokens > 8192 {
		return fmt.Errorf("%s.max_tokens must be in [64, 8192], got: %d", name, a.MaxTokens)
	}
	if a.GenerationRetries < 0 || a.GenerationRetries > 10 {
		return fmt.Errorf("%s.generation_retries must be in [0, 10], got: %d", name, a.GenerationRetries)
	}
	return nil
}
