package chain

import (
	"github.com/samber/lo"

	"github.com/aschepis/backscratcher/companion/llm"
)

// Root packages a client with the canonical chain of a conversation so that
// call sites can hold "the conversation so far" as one value and fork
// branches from it.
type Root struct {
	client *Client
	chain  Chain
}

// FromMessage creates a root seeded with a single message.
func FromMessage(client *Client, msg llm.Message) *Root {
	return FromMessages(client, []llm.Message{msg})
}

// FromMessages creates a root seeded with msgs in order.
func FromMessages(client *Client, msgs []llm.Message) *Root {
	ch := New(client)
	for _, msg := range msgs {
		ch.PushMessage(msg.Role, textParts(msg)...)
	}
	return &Root{client: client, chain: ch}
}

// Client returns the client owned by the root.
func (r *Root) Client() *Client {
	return r.client
}

// Fork returns a new branch of the root conversation.
func (r *Root) Fork() Chain {
	return r.chain.Fork()
}

func textParts(msg llm.Message) []string {
	return lo.FilterMap(msg.Content, func(part llm.ContentPart, _ int) (string, bool) {
		return part.Text, part.Type == llm.ContentPartTypeText
	})
}
