package openai

import (
	"github.com/aschepis/backscratcher/companion/llm"
	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"
)

// ChatRequest is the outgoing chat completions body. go-openai's request
// types drop empty text and empty content through omitempty, which providers
// reject, so the request side is encoded with these types instead.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// ChatMessage is one outgoing turn. Content is always a list of parts.
type ChatMessage struct {
	Role    string     `json:"role"`
	Content []ChatPart `json:"content"`
}

// ChatPart is a typed content part. Text is sent even when empty.
type ChatPart struct {
	Type openai.ChatMessagePartType `json:"type"`
	Text string                     `json:"text"`
}

// NewChatRequest builds the request body for model and msgs.
func NewChatRequest(model string, msgs []llm.Message) ChatRequest {
	return ChatRequest{
		Model:    model,
		Messages: ToOpenAIMessages(msgs),
	}
}

// ToOpenAIMessages converts llm.Messages to OpenAI chat message format.
// The result is never nil.
func ToOpenAIMessages(msgs []llm.Message) []ChatMessage {
	return lo.Map(msgs, func(msg llm.Message, _ int) ChatMessage {
		return ToOpenAIMessage(msg)
	})
}

// ToOpenAIMessage converts a single llm.Message to OpenAI format.
func ToOpenAIMessage(msg llm.Message) ChatMessage {
	var role string
	switch msg.Role {
	case llm.RoleUser:
		role = openai.ChatMessageRoleUser
	case llm.RoleAssistant:
		role = openai.ChatMessageRoleAssistant
	case llm.RoleSystem:
		role = openai.ChatMessageRoleSystem
	default:
		role = openai.ChatMessageRoleUser // Default fallback
	}

	parts := lo.FilterMap(msg.Content, func(part llm.ContentPart, _ int) (ChatPart, bool) {
		switch part.Type {
		case llm.ContentPartTypeText:
			return ChatPart{
				Type: openai.ChatMessagePartTypeText,
				Text: part.Text,
			}, true
		default:
			return ChatPart{}, false
		}
	})
	if parts == nil {
		parts = []ChatPart{}
	}

	return ChatMessage{
		Role:    role,
		Content: parts,
	}
}
