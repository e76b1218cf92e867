// Package infer runs a conversation chain through the completion endpoint
// and parses the reply.
//
// Every call goes through the same steps: the chain is flattened into wire
// messages, adapted to the model (system prompt merging, reasoning toggle
// suffix), sent, and the raw reply is parsed. When the provider reports an
// error, the engine asks the model, in a fresh chain, whether the error is
// about context length and returns *llm.ContextLengthError if it is.
//
// Drop, Keep and Push differ only in what happens to the caller's chain:
// Drop takes a chain value, Keep leaves the chain untouched and Push appends
// the assistant's answer to it.
package infer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aschepis/backscratcher/companion/chain"
	"github.com/aschepis/backscratcher/companion/llm"
	"github.com/aschepis/backscratcher/companion/prompts"
	"github.com/aschepis/backscratcher/companion/reply"
)

// Engine sends chains to a completion endpoint. It holds no per-call state
// and is safe for concurrent use as long as each caller uses its own chain.
type Engine struct {
	sender   llm.Sender
	settings Settings
	persona  prompts.Persona
	logger   zerolog.Logger
}

// New creates an Engine. The persona is used for the system prompt of the
// engine's own helper calls.
func New(sender llm.Sender, settings Settings, persona prompts.Persona, logger zerolog.Logger) (*Engine, error) {
	if sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid inference settings: %w", err)
	}
	return &Engine{
		sender:   sender,
		settings: settings,
		persona:  persona,
		logger:   logger.With().Str("component", "inferEngine").Logger(),
	}, nil
}

// Settings returns the engine's settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// IsContextLengthError asks the model whether providerError is about the
// context window. The question is sent on a new chain for client through the
// plain send path, so it never triggers another classification.
func (e *Engine) IsContextLengthError(ctx context.Context, client *chain.Client, providerError string) (bool, error) {
	ch := chain.New(client)
	system := prompts.System(e.persona, prompts.InferenceAgent)
	ch.PushMessage(system.Role, system.Text())
	ch.PushMessage(llm.RoleUser, prompts.IsContextLength(providerError))

	raw, err := e.sendPlain(ctx, ch, false)
	if err != nil {
		return false, err
	}

	parse := reply.Plain[reply.YesNo](reply.Object[reply.YesNo])
	if e.settings.Reasoning == ReasoningNative {
		parse = reply.Reasoned[reply.YesNo](reply.Object[reply.YesNo])
	}
	answer, err := parse(raw)
	if err != nil {
		return false, err
	}
	return answer.Value.Answer, nil
}

// sendPlain assembles and sends ch without error recovery.
func (e *Engine) sendPlain(ctx context.Context, ch chain.Chain, wantReasoning bool) (string, error) {
	messages := e.assemble(ch, wantReasoning)

	clientID := "none"
	if client := ch.Client(); client != nil {
		clientID = client.ID.String()
	}
	e.logger.Debug().
		Str("client_id", clientID).
		Str("chain_id", ch.ID().String()).
		Int("messages", len(messages)).
		Str("model", e.settings.Model).
		Bool("reasoning", wantReasoning).
		Msg("Sending chain")

	return e.sender.Send(ctx, messages, e.settings.Model)
}

// send is sendPlain plus context-length classification of provider errors.
// A failed classification never replaces the original error.
func (e *Engine) send(ctx context.Context, ch chain.Chain, wantReasoning bool) (string, error) {
	raw, err := e.sendPlain(ctx, ch, wantReasoning)
	if err == nil {
		return raw, nil
	}

	apiErr, ok := llm.AsAPIError(err)
	if !ok || apiErr.Kind != llm.APIErrorResponse {
		return "", err
	}

	isContextLength, classifyErr := e.IsContextLengthError(ctx, ch.Client(), apiErr.Message)
	if classifyErr != nil {
		e.logger.Warn().
			Err(classifyErr).
			Str("chain_id", ch.ID().String()).
			Str("provider_error", apiErr.Message).
			Msg("Failed to classify provider error, returning it unchanged")
		return "", err
	}
	if !isContextLength {
		return "", err
	}

	e.logger.Info().
		Str("chain_id", ch.ID().String()).
		Int("messages", ch.MessageCount()).
		Msg("Provider error classified as context length overflow")
	return "", &llm.ContextLengthError{Message: apiErr.Message, Err: apiErr}
}

// assemble flattens ch into the messages sent to the model. Only the returned
// slice is adapted; ch is never modified.
func (e *Engine) assemble(ch chain.Chain, wantReasoning bool) []llm.Message {
	messages := ch.WireMessages()
	if !e.settings.UseSystemPrompt {
		messages = mergeSystemPrompt(messages)
	}
	if e.settings.ToggleableReasoning() {
		suffix := e.settings.ThinkOffSuffix
		if wantReasoning {
			suffix = e.settings.ThinkOnSuffix
		}
		appendSuffix(messages, suffix)
	}
	return messages
}

// mergeSystemPrompt folds the first system message into the user message
// right after it. Without a following user message the system message is
// sent as a user message instead.
func mergeSystemPrompt(messages []llm.Message) []llm.Message {
	for i, msg := range messages {
		if msg.Role != llm.RoleSystem {
			continue
		}
		if i+1 < len(messages) && messages[i+1].Role == llm.RoleUser {
			user := messages[i+1].Clone()
			if len(user.Content) > 0 && user.Content[0].Type == llm.ContentPartTypeText {
				user.Content[0].Text = msg.Text() + user.Content[0].Text
			} else {
				user.Content = append([]llm.ContentPart{{Type: llm.ContentPartTypeText, Text: msg.Text()}}, user.Content...)
			}
			merged := make([]llm.Message, 0, len(messages)-1)
			merged = append(merged, messages[:i]...)
			merged = append(merged, user)
			return append(merged, messages[i+2:]...)
		}
		messages[i].Role = llm.RoleUser
		return messages
	}
	return messages
}

// appendSuffix appends suffix to the last text part of the last message,
// creating the part when the message ends with something else.
func appendSuffix(messages []llm.Message, suffix string) {
	if suffix == "" || len(messages) == 0 {
		return
	}
	last := &messages[len(messages)-1]
	if n := len(last.Content); n > 0 && last.Content[n-1].Type == llm.ContentPartTypeText {
		last.Content[n-1].Text += suffix
		return
	}
	last.Content = append(last.Content, llm.ContentPart{Type: llm.ContentPartTypeText, Text: suffix})
}
