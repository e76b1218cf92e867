package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/aschepis/backscratcher/companion/infer"
	"github.com/aschepis/backscratcher/companion/prompts"
)

// InferConfig describes the completion endpoint and the model behind it.
type InferConfig struct {
	DefaultModel    string `yaml:"default_model,omitempty"`     // Model name sent with every request
	URL             string `yaml:"url,omitempty"`               // Base URL, /v1/chat/completions is appended
	APIKey          string `yaml:"api_key,omitempty"`           // Optional bearer token
	UseSystemPrompt *bool  `yaml:"use_system_prompt,omitempty"` // Nil means true
	HasReasoning    *bool  `yaml:"has_reasoning,omitempty"`     // Shorthand for reasoning: native
	Reasoning       string `yaml:"reasoning,omitempty"`         // "none", "native" or "two_step"
	ThinkOnPostfix  string `yaml:"think_on_postfix,omitempty"`
	ThinkOffPostfix string `yaml:"think_off_postfix,omitempty"`
	Timeout         int    `yaml:"timeout,omitempty"` // Request timeout in seconds
}

// DatabaseConfig describes where the message log is read from.
type DatabaseConfig struct {
	Path         string `yaml:"path,omitempty"`
	HistoryLimit int    `yaml:"history_limit,omitempty"` // Messages replayed from a thread
}

// Config is the companion configuration.
type Config struct {
	Infer    InferConfig     `yaml:"infer,omitempty"`
	Persona  prompts.Persona `yaml:"persona,omitempty"`
	Database DatabaseConfig  `yaml:"database,omitempty"`
}

// GetConfigPath returns the default config file path.
// Can be overridden via COMPANION_CONFIG_PATH environment variable.
func GetConfigPath() string {
	if envPath := os.Getenv("COMPANION_CONFIG_PATH"); envPath != "" {
		return ExpandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.companion/config.yaml"
	}
	return filepath.Join(homeDir, ".companion", "config.yaml")
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// Defaults returns the configuration used when nothing is configured.
func Defaults() Config {
	return Config{
		Infer: InferConfig{
			DefaultModel: "default",
			URL:          "http://infer",
			Timeout:      120,
		},
		Persona: prompts.Persona{
			RoleShortDescription:   prompts.DefaultRoleShortDescription,
			PersonalityDescription: prompts.DefaultPersonalityDescription,
		},
		Database: DatabaseConfig{
			Path:         "~/.companion/companion.db",
			HistoryLimit: 50,
		},
	}
}

// LoadConfig loads the configuration. The file at path is merged onto the
// defaults if it exists, then environment variables are applied on top.
// The result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()

	expandedPath := ExpandPath(path)
	if _, err := os.Stat(expandedPath); err == nil {
		data, err := os.ReadFile(expandedPath) //#nosec 304 -- intentional file read for config
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", expandedPath, err)
		}

		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", expandedPath, err)
		}

		if err := mergo.Merge(&cfg, fileConfig, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies the environment variables of the deployment.
func applyEnvOverrides(cfg *Config) error {
	overrideString(&cfg.Infer.DefaultModel, "DEFAULT_MODEL")
	overrideString(&cfg.Infer.URL, "INFER_URL")
	overrideString(&cfg.Infer.APIKey, "OPENAI_API_KEY")
	overrideString(&cfg.Infer.Reasoning, "MODEL_REASONING")
	overrideString(&cfg.Persona.Name, "NAME")
	overrideString(&cfg.Persona.RoleShortDescription, "ROLE_SHORT_DESCRIPTION")
	overrideString(&cfg.Persona.PersonalityDescription, "PERSONALITY_DESCRIPTION")
	overrideString(&cfg.Database.Path, "COMPANION_DB")

	// Postfixes may be set to the empty string to disable a configured toggle.
	if v, ok := os.LookupEnv("MODEL_THINK_ON_POSTFIX"); ok {
		cfg.Infer.ThinkOnPostfix = v
	}
	if v, ok := os.LookupEnv("MODEL_THINK_OFF_POSTFIX"); ok {
		cfg.Infer.ThinkOffPostfix = v
	}

	if err := overrideBool(&cfg.Infer.UseSystemPrompt, "MODEL_USE_SYSTEM_PROMPT"); err != nil {
		return err
	}
	if err := overrideBool(&cfg.Infer.HasReasoning, "MODEL_HAS_REASONING"); err != nil {
		return err
	}

	if v := os.Getenv("INFER_TIMEOUT"); v != "" {
		timeout, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("INFER_TIMEOUT must be a number of seconds: %w", err)
		}
		cfg.Infer.Timeout = timeout
	}
	return nil
}

func overrideString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func overrideBool(dst **bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s must be 'true' or 'false': %w", key, err)
	}
	*dst = &parsed
	return nil
}

// Validate checks the configuration for values the companion cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Persona.Name) == "" {
		return fmt.Errorf("persona name is required (set NAME or persona.name)")
	}
	if c.Infer.DefaultModel == "" {
		return fmt.Errorf("infer.default_model is required")
	}

	parsed, err := url.Parse(c.Infer.URL)
	if err != nil {
		return fmt.Errorf("invalid infer.url %q: %w", c.Infer.URL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid infer.url %q: scheme and host are required", c.Infer.URL)
	}

	if c.Infer.Reasoning != "" && !infer.ReasoningMode(c.Infer.Reasoning).Valid() {
		return fmt.Errorf("unknown infer.reasoning %q (want none, native or two_step)", c.Infer.Reasoning)
	}
	if c.Infer.HasReasoning != nil && c.Infer.Reasoning != "" {
		native := infer.ReasoningMode(c.Infer.Reasoning) == infer.ReasoningNative
		if *c.Infer.HasReasoning != native {
			return fmt.Errorf("infer.has_reasoning=%t conflicts with infer.reasoning %q", *c.Infer.HasReasoning, c.Infer.Reasoning)
		}
	}

	if c.Infer.Timeout < 0 {
		return fmt.Errorf("infer.timeout must not be negative")
	}
	if c.Database.HistoryLimit < 0 {
		return fmt.Errorf("database.history_limit must not be negative")
	}
	return nil
}

// SaveConfig saves the configuration to the specified path.
func SaveConfig(cfg *Config, path string) error {
	expandedPath := ExpandPath(path)

	// Ensure directory exists
	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(expandedPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
