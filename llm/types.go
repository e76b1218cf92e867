package llm

// MessageRole represents the role of a message in a conversation.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Valid reports whether r is one of the three roles the wire format accepts.
func (r MessageRole) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// Message is the provider-facing projection of one conversation turn:
// a role plus an ordered list of content parts.
type Message struct {
	Role    MessageRole
	Content []ContentPart
}

// ContentPart represents a single content part within a message.
type ContentPart struct {
	Type ContentPartType
	Text string // For text parts
}

// ContentPartType represents the type of content part.
type ContentPartType string

const (
	ContentPartTypeText ContentPartType = "text"
)

// NewTextMessage creates a new message with a single text part.
func NewTextMessage(role MessageRole, text string) Message {
	return Message{
		Role: role,
		Content: []ContentPart{
			{
				Type: ContentPartTypeText,
				Text: text,
			},
		},
	}
}

// Text concatenates all text parts of the message.
func (m Message) Text() string {
	var text string
	for _, part := range m.Content {
		if part.Type == ContentPartTypeText {
			text += part.Text
		}
	}
	return text
}

// Clone returns a deep copy of the message so callers can rewrite parts
// without aliasing the original content slice.
func (m Message) Clone() Message {
	content := make([]ContentPart, len(m.Content))
	copy(content, m.Content)
	return Message{Role: m.Role, Content: content}
}

// CloneMessages deep-copies a message list.
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, msg := range msgs {
		out[i] = msg.Clone()
	}
	return out
}
