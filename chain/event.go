package chain

import (
	"fmt"

	"github.com/aschepis/backscratcher/companion/llm"
)

// EventKind distinguishes the two kinds of chain events.
type EventKind int

const (
	// EventNewMessage opens a new message with a role.
	EventNewMessage EventKind = iota
	// EventContent appends a text fragment to the most recently opened message.
	EventContent
)

// String returns a readable name for the kind.
func (k EventKind) String() string {
	switch k {
	case EventNewMessage:
		return "new_message"
	case EventContent:
		return "content"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one entry in a chain. Role is set for EventNewMessage, Text for
// EventContent.
type Event struct {
	Kind EventKind
	Role llm.MessageRole
	Text string
}

// NewMessage returns an event that opens a message with the given role.
func NewMessage(role llm.MessageRole) Event {
	return Event{Kind: EventNewMessage, Role: role}
}

// Content returns a text fragment event.
func Content(text string) Event {
	return Event{Kind: EventContent, Text: text}
}

// node is immutable once created. Forks share nodes.
type node struct {
	event Event
	prev  *node
}
