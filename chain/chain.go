package chain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aschepis/backscratcher/companion/llm"
)

// ErrContentBeforeMessage is returned by PushItem when a content fragment is
// pushed onto a chain that has no open message.
var ErrContentBeforeMessage = errors.New("content fragment pushed before any message")

// Client is the identity of a conversation participant. It is created once
// and shared by every chain built on its behalf.
type Client struct {
	ID uuid.UUID
}

// NewClient creates a client with a fresh identifier.
func NewClient() *Client {
	return &Client{ID: uuid.New()}
}

// Chain is an append-only conversation built from immutable, backward-linked
// nodes. A Chain is a value: copying it with Fork is O(1) and appending to
// one copy never affects another.
//
// The zero value is not usable; create chains with New or Root.Fork.
type Chain struct {
	id       uuid.UUID
	client   *Client
	tail     *node
	events   int
	messages int
}

// New returns an empty chain bound to client.
func New(client *Client) Chain {
	return Chain{
		id:     uuid.New(),
		client: client,
	}
}

// ID identifies this branch of the conversation.
func (c Chain) ID() uuid.UUID {
	return c.id
}

// Client returns the client the chain was created for.
func (c Chain) Client() *Client {
	return c.client
}

// EventCount returns the number of events reachable from the tail.
func (c Chain) EventCount() int {
	return c.events
}

// MessageCount returns the number of NewMessage events reachable from the tail.
func (c Chain) MessageCount() int {
	return c.messages
}

// Empty reports whether nothing has been pushed yet.
func (c Chain) Empty() bool {
	return c.tail == nil
}

// Fork returns a new branch sharing this chain's history.
func (c Chain) Fork() Chain {
	c.id = uuid.New()
	return c
}

// PushMessage opens a message with role and appends one fragment per part.
func (c *Chain) PushMessage(role llm.MessageRole, parts ...string) {
	c.push(NewMessage(role))
	for _, part := range parts {
		c.push(Content(part))
	}
}

// PushItem appends a single event. A content fragment on an empty chain is
// rejected with ErrContentBeforeMessage, a message with an unknown role with
// an error.
func (c *Chain) PushItem(e Event) error {
	switch e.Kind {
	case EventNewMessage:
		if !e.Role.Valid() {
			return fmt.Errorf("unknown message role %q", e.Role)
		}
	case EventContent:
		if c.tail == nil {
			return ErrContentBeforeMessage
		}
	default:
		return fmt.Errorf("unknown event kind %s", e.Kind)
	}
	c.push(e)
	return nil
}

func (c *Chain) push(e Event) {
	c.tail = &node{event: e, prev: c.tail}
	c.events++
	if e.Kind == EventNewMessage {
		c.messages++
	}
}

// WireMessages linearizes the chain from root to tail. Fragments fold into
// the message opened by the latest NewMessage, and adjacent fragments are
// concatenated into a single text part.
//
// WireMessages panics if the first event is not a NewMessage. PushItem and
// PushMessage never build such a chain.
func (c Chain) WireMessages() []llm.Message {
	if c.tail == nil {
		return []llm.Message{}
	}

	events := make([]Event, c.events)
	i := len(events)
	for n := c.tail; n != nil; n = n.prev {
		i--
		events[i] = n.event
	}

	if events[0].Kind != EventNewMessage {
		panic(fmt.Sprintf("chain %s starts with a %s event", c.id, events[0].Kind))
	}

	msgs := make([]llm.Message, 0, c.messages)
	for _, e := range events {
		switch e.Kind {
		case EventNewMessage:
			msgs = append(msgs, llm.Message{Role: e.Role, Content: []llm.ContentPart{}})
		case EventContent:
			current := &msgs[len(msgs)-1]
			if n := len(current.Content); n > 0 && current.Content[n-1].Type == llm.ContentPartTypeText {
				current.Content[n-1].Text += e.Text
				continue
			}
			current.Content = append(current.Content, llm.ContentPart{
				Type: llm.ContentPartTypeText,
				Text: e.Text,
			})
		}
	}
	return msgs
}
