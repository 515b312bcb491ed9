package registry

import (
	"testing"
)

func TestGetString(t *testing.T) {
	cfg := Config{"name": "test", "empty": ""}

	if got := GetString(cfg, "name", "default"); got != "test" {
		t.Errorf("GetString(name) = %q, want %q", got, "test")
	}
	if got := GetString(cfg, "empty", "default"); got != "" {
		t.Errorf("GetString(empty) = %q, want %q", got, "")
	}
	if got := GetString(cfg, "missing", "default"); got != "default" {
		t.Errorf("GetString(missing) = %q, want %q", got, "default")
	}
}

func TestGetInt(t *testing.T) {
	cfg := Config{
		"int_val":   100,
		"float_val": 200.0, // JSON numbers are float64
		"zero":      0,
	}

	if got := GetInt(cfg, "int_val", -1); got != 100 {
		t.Errorf("GetInt(int_val) = %d, want %d", got, 100)
	}
	if got := GetInt(cfg, "float_val", -1); got != 200 {
		t.Errorf("GetInt(float_val) = %d, want %d", got, 200)
	}
	if got := GetInt(cfg, "zero", -1); got != 0 {
		t.Errorf("GetInt(zero) = %d, want %d", got, 0)
	}
	if got := GetInt(cfg, "missing", -1); got != -1 {
		t.Errorf("GetInt(missing) = %d, want %d", got, -1)
	}
}

func TestGetFloat64(t *testing.T) {
	cfg := Config{
		"float_val": 0.7,
		"int_val":   100,
		"zero":      0.0,
	}

	if got := GetFloat64(cfg, "float_val", 0.0); got != 0.7 {
		t.Errorf("GetFloat64(float_val) = %f, want %f", got, 0.7)
	}
	if got := GetFloat64(cfg, "int_val", 0.0); got != 100.0 {
		t.Errorf("GetFloat64(int_val) = %f, want %f", got, 100.0)
	}
	if got := GetFloat64(cfg, "zero", 1.0); got != 0.0 {
		t.Errorf("GetFloat64(zero) = %f, want %f", got, 0.0)
	}
	if got := GetFloat64(cfg, "missing", 0.5); got != 0.5 {
		t.Errorf("GetFloat64(missing) = %f, want %f", got, 0.5)
	}
}

func TestRequireString(t *testing.T) {
	cfg := Config{"name": "test"}

	val, err := RequireString(cfg, "name")
	if err != nil {
		t.Fatalf("RequireString(name) error = %v, want nil", err)
	}
	if val != "test" {
		t.Errorf("RequireString(name) = %q, want %q", val, "test")
	}

	_, err = RequireString(cfg, "missing")
	if err == nil {
		t.Fatal("RequireString(missing) error = nil, want error")
	}
	if errMsg := err.Error(); errMsg == "" {
		t.Error("error message is empty")
	}
}

func TestGetAPIKeyWithEnv(t *testing.T) {
	cfg := Config{"api_key": "cfg-key"}

	if got, err := GetAPIKeyWithEnv(cfg, "SOME_API_KEY", "test"); err != nil || got != "cfg-key" {
		t.Errorf("GetAPIKeyWithEnv(cfg) = (%q, %v), want (%q, nil)", got, err, "cfg-key")
	}

	t.Setenv("SOME_API_KEY", "env-key")
	if got, err := GetAPIKeyWithEnv(Config{}, "SOME_API_KEY", "test"); err != nil || got != "env-key" {
		t.Errorf("GetAPIKeyWithEnv(env fallback) = (%q, %v), want (%q, nil)", got, err, "env-key")
	}

	if _, err := GetAPIKeyWithEnv(Config{}, "UNSET_API_KEY", "test"); err == nil {
		t.Fatal("GetAPIKeyWithEnv(neither source) error = nil, want error")
	}
}
