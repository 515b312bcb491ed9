package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigKoanf_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfigKoanf("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "gpt-4o-mini", cfg.LiteLLMModel)
	assert.Equal(t, 20, cfg.MaxTurns)
}

func TestLoadConfigKoanf_FlatEnvVarsOverrideDefaults(t *testing.T) {
	os.Setenv("MAX_TURNS", "8")
	os.Setenv("LITELLM_PROVIDER", "replicate")
	defer func() {
		os.Unsetenv("MAX_TURNS")
		os.Unsetenv("LITELLM_PROVIDER")
	}()

	cfg, err := LoadConfigKoanf("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8, cfg.MaxTurns)
	assert.Equal(t, "replicate", cfg.LiteLLMProvider)
}

func TestLoadConfigKoanf_PerAgentEnvVarsMapToNestedStruct(t *testing.T) {
	os.Setenv("OBSERVER_TEMPERATURE", "0.1")
	os.Setenv("OBSERVER_MAX_TOKENS", "900")
	os.Setenv("EVALUATOR_GENERATION_RETRIES", "5")
	defer func() {
		os.Unsetenv("OBSERVER_TEMPERATURE")
		os.Unsetenv("OBSERVER_MAX_TOKENS")
		os.Unsetenv("EVALUATOR_GENERATION_RETRIES")
	}()

	cfg, err := LoadConfigKoanf("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 0.1, cfg.Observer.Temperature)
	assert.Equal(t, 900, cfg.Observer.MaxTokens)
	assert.Equal(t, 5, cfg.Evaluator.GenerationRetries)
	// Unrelated agent fields keep their defaults.
	assert.Equal(t, 2, cfg.Observer.GenerationRetries)
	assert.Equal(t, 0.6, cfg.Interviewer.Temperature)
}

func TestLoadConfigKoanf_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
litellm_model: gpt-4o
max_turns: 15
`)

	os.Setenv("MAX_TURNS", "25")
	defer os.Unsetenv("MAX_TURNS")

	cfg, err := LoadConfigKoanf(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 25, cfg.MaxTurns)
	assert.Equal(t, "gpt-4o", cfg.LiteLLMModel)
}

func TestLoadConfigKoanf_ValidationRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{"bad provider", map[string]string{"LITELLM_PROVIDER": "anthropic"}},
		{"zero max_turns", map[string]string{"MAX_TURNS": "0"}},
		{"observer temperature too high", map[string]string{"OBSERVER_TEMPERATURE": "5.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				os.Setenv(k, v)
				defer os.Unsetenv(k)
			}

			cfg, err := LoadConfigKoanf("")
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadConfigKoanf_NonexistentFile(t *testing.T) {
	cfg, err := LoadConfigKoanf("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestTransformEnvKey(t *testing.T) {
	cases := map[string]string{
		"LITELLM_BASE_URL":      "litellm_base_url",
		"MAX_TURNS":             "max_turns",
		"OBSERVER_TEMPERATURE":  "observer.temperature",
		"OBSERVER_MAX_TOKENS":   "observer.max_tokens",
		"INTERVIEWER_MAX_TOKENS": "interviewer.max_tokens",
	}
	for in, want := range cases {
		assert.Equal(t, want, transformEnvKey(in), in)
	}
}
