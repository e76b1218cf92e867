package config

import (
	"time"

	"github.com/aschepis/backscratcher/companion/infer"
	llmopenai "github.com/aschepis/backscratcher/companion/llm/openai"
)

// LoadInferSettings derives the inference engine settings from a loaded
// configuration. Unset booleans fall back to the system prompt being used
// and to a reasoning mode implied by has_reasoning.
func LoadInferSettings(cfg *Config) infer.Settings {
	useSystemPrompt := true
	if cfg.Infer.UseSystemPrompt != nil {
		useSystemPrompt = *cfg.Infer.UseSystemPrompt
	}

	reasoning := infer.ReasoningMode(cfg.Infer.Reasoning)
	if reasoning == "" {
		reasoning = infer.ReasoningNone
		if cfg.Infer.HasReasoning != nil && *cfg.Infer.HasReasoning {
			reasoning = infer.ReasoningNative
		}
	}

	return infer.Settings{
		Model:           cfg.Infer.DefaultModel,
		UseSystemPrompt: useSystemPrompt,
		Reasoning:       reasoning,
		ThinkOnSuffix:   cfg.Infer.ThinkOnPostfix,
		ThinkOffSuffix:  cfg.Infer.ThinkOffPostfix,
	}
}

// NewWireClient creates the completion client from the configuration.
func NewWireClient(cfg *Config) (*llmopenai.OpenAIClient, error) {
	timeout := time.Duration(cfg.Infer.Timeout) * time.Second
	var opts []llmopenai.Option
	if cfg.Infer.APIKey != "" {
		opts = append(opts, llmopenai.WithAPIKey(cfg.Infer.APIKey))
	}
	return llmopenai.NewOpenAIClient(cfg.Infer.URL, timeout, opts...)
}
