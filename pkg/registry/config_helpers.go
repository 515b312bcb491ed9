package registry

import (
	"fmt"
	"os"
)

// GetString retrieves a string value from Config with a default fallback.
func GetString(cfg Config, key string, defaultValue string) string {
	if val, ok := cfg[key].(string); ok {
		return val
	}
	return defaultValue
}

// GetInt retrieves an int value from Config with a default fallback.
// Handles both int and float64 (JSON numbers are float64).
func GetInt(cfg Config, key string, defaultValue int) int {
	switch val := cfg[key].(type) {
	case int:
		return val
	case float64:
		return int(val)
	default:
		return defaultValue
	}
}

// GetFloat64 retrieves a float64 value from Config with a default fallback.
// Handles both float64 and int.
func GetFloat64(cfg Config, key string, defaultValue float64) float64 {
	switch val := cfg[key].(type) {
	case float64:
		return val
	case int:
		return float64(val)
	default:
		return defaultValue
	}
}

// RequireString retrieves a required string value from Config.
// Returns an error if the key is missing or not a string.
func RequireString(cfg Config, key string) (string, error) {
	val, ok := cfg[key].(string)
	if !ok || val == "" {
		return "", fmt.Errorf("required config key %q missing or empty", key)
	}
	return val, nil
}

// GetFloat32 retrieves a float32 value from Config with a default fallback.
// Handles both float64 and int.
func GetFloat32(cfg Config, key string, defaultValue float32) float32 {
	switch val := cfg[key].(type) {
	case float64:
		return float32(val)
	case int:
		return float32(val)
	default:
		return defaultValue
	}
}

// GetAPIKeyWithEnv retrieves an API key from config, falling back to an environment
// variable. Returns an error if neither source provides a value.
func GetAPIKeyWithEnv(cfg Config, envVar string, backendName string) (string, error) {
	key := GetString(cfg, "api_key", "")
	if key == "" {
		key = os.Getenv(envVar)
	}
	if key == "" {
		return "", fmt.Errorf("%s backend requires 'api_key' configuration or %s environment variable", backendName, envVar)
	}
	return key, nil
}
