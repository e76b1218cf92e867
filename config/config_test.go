package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aschepis/backscratcher/companion/infer"
)

var envKeys = []string{
	"COMPANION_CONFIG_PATH",
	"DEFAULT_MODEL",
	"INFER_URL",
	"OPENAI_API_KEY",
	"MODEL_USE_SYSTEM_PROMPT",
	"MODEL_HAS_REASONING",
	"MODEL_REASONING",
	"INFER_TIMEOUT",
	"NAME",
	"ROLE_SHORT_DESCRIPTION",
	"PERSONALITY_DESCRIPTION",
	"COMPANION_DB",
}

// clearEnv isolates a test from the environment it runs in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
	for _, key := range []string{"MODEL_THINK_ON_POSTFIX", "MODEL_THINK_OFF_POSTFIX"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("NAME", "Ordis")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Infer.DefaultModel != "default" {
		t.Errorf("Expected default model 'default', got %q", cfg.Infer.DefaultModel)
	}
	if cfg.Infer.URL != "http://infer" {
		t.Errorf("Expected default url, got %q", cfg.Infer.URL)
	}
	if cfg.Persona.Name != "Ordis" {
		t.Errorf("Expected name from env, got %q", cfg.Persona.Name)
	}
	if cfg.Persona.RoleShortDescription != "AI companion" {
		t.Errorf("Expected default role, got %q", cfg.Persona.RoleShortDescription)
	}

	settings := LoadInferSettings(cfg)
	want := infer.Settings{Model: "default", UseSystemPrompt: true, Reasoning: infer.ReasoningNone}
	if settings != want {
		t.Errorf("Expected %+v, got %+v", want, settings)
	}
	if settings.ToggleableReasoning() {
		t.Error("Expected reasoning not to be toggleable without postfixes")
	}
}

func TestLoadConfigRequiresName(t *testing.T) {
	clearEnv(t)
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error without a persona name")
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
infer:
  default_model: qwen3
  url: http://localhost:8080
  use_system_prompt: false
  think_on_postfix: " /think"
  think_off_postfix: " /no_think"
  timeout: 30
persona:
  name: Ordis
  personality_description: You are calm.
database:
  history_limit: 10
`)
	t.Setenv("DEFAULT_MODEL", "llama")
	t.Setenv("MODEL_THINK_OFF_POSTFIX", "")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Infer.DefaultModel != "llama" {
		t.Errorf("Expected env to override model, got %q", cfg.Infer.DefaultModel)
	}
	if cfg.Infer.URL != "http://localhost:8080" {
		t.Errorf("Expected url from file, got %q", cfg.Infer.URL)
	}
	if cfg.Persona.PersonalityDescription != "You are calm." {
		t.Errorf("Expected personality from file, got %q", cfg.Persona.PersonalityDescription)
	}
	if cfg.Persona.RoleShortDescription != "AI companion" {
		t.Errorf("Expected default role to survive merge, got %q", cfg.Persona.RoleShortDescription)
	}
	if cfg.Database.HistoryLimit != 10 {
		t.Errorf("Expected history limit 10, got %d", cfg.Database.HistoryLimit)
	}

	settings := LoadInferSettings(cfg)
	if settings.UseSystemPrompt {
		t.Error("Expected use_system_prompt false from file")
	}
	if settings.ThinkOnSuffix != " /think" {
		t.Errorf("Expected think-on postfix from file, got %q", settings.ThinkOnSuffix)
	}
	if settings.ThinkOffSuffix != "" {
		t.Errorf("Expected env to clear think-off postfix, got %q", settings.ThinkOffSuffix)
	}
	if !settings.ToggleableReasoning() {
		t.Error("Expected reasoning to be toggleable")
	}
}

func TestReasoningMode(t *testing.T) {
	tests := []struct {
		name         string
		hasReasoning string
		mode         string
		want         infer.ReasoningMode
		wantErr      bool
	}{
		{"unset", "", "", infer.ReasoningNone, false},
		{"has reasoning", "true", "", infer.ReasoningNative, false},
		{"no reasoning", "false", "", infer.ReasoningNone, false},
		{"two step", "", "two_step", infer.ReasoningTwoStep, false},
		{"consistent", "true", "native", infer.ReasoningNative, false},
		{"conflict", "true", "none", "", true},
		{"unknown mode", "", "sometimes", "", true},
		{"bad bool", "yes please", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("NAME", "Ordis")
			t.Setenv("MODEL_HAS_REASONING", tt.hasReasoning)
			t.Setenv("MODEL_REASONING", tt.mode)

			cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig returned error: %v", err)
			}
			if got := LoadInferSettings(cfg).Reasoning; got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestInvalidEnvValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"MODEL_USE_SYSTEM_PROMPT", "maybe"},
		{"MODEL_HAS_REASONING", "sometimes"},
		{"INFER_TIMEOUT", "soon"},
		{"INFER_URL", "infer"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("NAME", "Ordis")
			t.Setenv(tt.key, tt.value)
			if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
				t.Errorf("Expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "infer: [not, a, map")
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	clearEnv(t)
	cfg := Defaults()
	cfg.Persona.Name = "Ordis"
	cfg.Infer.Reasoning = "two_step"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := SaveConfig(&cfg, path); err != nil {
		t.Fatalf("SaveConfig returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat saved config: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("Expected mode 0600, got %o", perm)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if loaded.Persona.Name != "Ordis" || loaded.Infer.Reasoning != "two_step" {
		t.Errorf("Unexpected loaded config %+v", loaded)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("COMPANION_CONFIG_PATH", "/etc/companion.yaml")
	if got := GetConfigPath(); got != "/etc/companion.yaml" {
		t.Errorf("Expected env path, got %q", got)
	}

	t.Setenv("COMPANION_CONFIG_PATH", "")
	if got := GetConfigPath(); !strings.HasSuffix(got, filepath.Join(".companion", "config.yaml")) {
		t.Errorf("Unexpected default path %q", got)
	}
}

func TestNewWireClient(t *testing.T) {
	cfg := Defaults()
	cfg.Infer.URL = "http://localhost:8080/"
	cfg.Infer.APIKey = "secret"

	client, err := NewWireClient(&cfg)
	if err != nil {
		t.Fatalf("NewWireClient returned error: %v", err)
	}
	if client.Endpoint() != "http://localhost:8080/v1/chat/completions" {
		t.Errorf("Unexpected endpoint %q", client.Endpoint())
	}

	cfg.Infer.URL = "not a url"
	if _, err := NewWireClient(&cfg); err == nil {
		t.Error("Expected error for invalid url")
	}
}
