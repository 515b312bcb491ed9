package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads a single YAML configuration file on top of Defaults(),
// interpolates ${VAR}-style environment references (so a committed file can
// reference LITELLM_API_KEY without embedding the secret), and validates
// the result. Prefer LoadConfigKoanf when environment variable overrides on
// top of the file are also needed.
func LoadConfig(path string) (*Config, error) {
	cfg, err := loadSingleConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := interpolateConfigEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to interpolate environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadSingleConfig reads and parses a single YAML configuration file,
// starting from Defaults() so omitted fields keep their default value.
func loadSingleConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	return cfg, nil
}

// interpolateConfigEnvVars interpolates ${VAR} references in the string
// fields a deployment is likely to want templated: the API key and the
// OTel collector endpoint.
func interpolateConfigEnvVars(cfg *Config) error {
	getenv := func(key string) (string, bool) {
		val := os.Getenv(key)
		if val == "" {
			return "", false
		}
		return val, true
	}

	if cfg.LiteLLMAPIKey != "" {
		key, err := interpolateEnvVars(cfg.LiteLLMAPIKey, getenv)
		if err != nil {
			return err
		}
		cfg.LiteLLMAPIKey = key
	}
	if cfg.OTelEndpoint != "" {
		endpoint, err := interpolateEnvVars(cfg.OTelEndpoint, getenv)
		if err != nil {
			return err
		}
		cfg.OTelEndpoint = endpoint
	}

	return nil
}

// interpolateEnvVars replaces ${VAR} with environment variable values.
func interpolateEnvVars(s string, getenv func(string) (string, bool)) (string, error) {
	result := s
	start := 0
	for {
		idx := strings.Index(result[start:], "${")
		if idx == -1 {
			break
		}
		idx += start

		endIdx := strings.Index(result[idx:], "}")
		if endIdx == -1 {
			return "", fmt.Errorf("unclosed environment variable reference at position %d", idx)
		}
		endIdx += idx

		varName := result[idx+2 : endIdx]
		value, ok := getenv(varName)
		if !ok {
			return "", fmt.Errorf("environment variable %q is not set", varName)
		}

		result = result[:idx] + value + result[endIdx+1:]
		start = idx + len(value)
	}
	return result, nil
}
