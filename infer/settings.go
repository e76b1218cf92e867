package infer

import "fmt"

// ReasoningMode selects how reasoning is obtained from the model. It is
// chosen once per deployment.
type ReasoningMode string

const (
	// ReasoningNone makes a single call and never extracts reasoning.
	ReasoningNone ReasoningMode = "none"
	// ReasoningNative expects the model to open every reply with a
	// <think>...</think> block.
	ReasoningNative ReasoningMode = "native"
	// ReasoningTwoStep asks for reasoning in one call and for the answer in a
	// second call when reasoning is wanted.
	ReasoningTwoStep ReasoningMode = "two_step"
)

// Valid reports whether m is a known mode.
func (m ReasoningMode) Valid() bool {
	switch m {
	case ReasoningNone, ReasoningNative, ReasoningTwoStep:
		return true
	default:
		return false
	}
}

// Settings describe the model behind the completion endpoint.
type Settings struct {
	// Model is sent as the "model" field of every request.
	Model string
	// UseSystemPrompt is false for models that reject system messages. The
	// first system message is then merged into the following user message.
	UseSystemPrompt bool
	Reasoning       ReasoningMode
	// ThinkOnSuffix and ThinkOffSuffix are appended to the last outgoing
	// message to switch reasoning on or off for models with a prompt-level
	// toggle.
	ThinkOnSuffix  string
	ThinkOffSuffix string
}

// ToggleableReasoning reports whether either control suffix is configured.
func (s Settings) ToggleableReasoning() bool {
	return s.ThinkOnSuffix != "" || s.ThinkOffSuffix != ""
}

// Validate checks the settings.
func (s Settings) Validate() error {
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if !s.Reasoning.Valid() {
		return fmt.Errorf("unknown reasoning mode %q", s.Reasoning)
	}
	return nil
}
