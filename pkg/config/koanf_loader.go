package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// agentEnvPrefixes are the top-level env var prefixes that address a
// per-agent AgentConfig field, so OBSERVER_MAX_TOKENS maps to the nested
// observer.max_tokens key rather than a flat one.
var agentEnvPrefixes = []string{"observer_", "interviewer_", "evaluator_"}

// transformEnvKey lowercases an env var name and, for the per-agent
// prefixes, turns the separator between the agent name and its field into a
// dot so it addresses the nested AgentConfig struct (OBSERVER_MAX_TOKENS ->
// observer.max_tokens). Every other key stays flat, matching Config's
// top-level koanf tags (LITELLM_BASE_URL -> litellm_base_url).
func transformEnvKey(s string) string {
	lower := strings.ToLower(s)
	for _, prefix := range agentEnvPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return strings.Replace(lower, "_", ".", 1)
		}
	}
	return lower
}

// LoadConfigKoanf loads configuration with precedence Environment Variables
// > Config File > Defaults. configPath may be empty, in which case only
// defaults and the environment apply.
func LoadConfigKoanf(configPath string) (*Config, error) {
	cfg := Defaults()
	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", transformEnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return cfg, nil
}
