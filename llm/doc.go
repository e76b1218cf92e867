// Package llm holds the provider-neutral vocabulary shared by the inference
// core: role-tagged wire messages, the wire error taxonomy and the Sender
// abstraction for a single completion round trip.
//
// # Core Concepts
//
//  1. Messages: Message is the flattened, provider-facing projection of a
//     conversation turn: a role (user, assistant, system) and ordered
//     content parts. Only text parts exist today.
//
//  2. Sender Interface: Sender performs exactly one request/response round
//     trip against a completion endpoint and returns the raw reply text.
//     The llm/openai package implements it for OpenAI-compatible endpoints.
//
//  3. Middleware: Middleware decorates a Sender with cross-cutting concerns
//     (logging, call accounting) without touching the implementation.
//
//  4. Errors: APIError distinguishes "we could not talk to the provider"
//     (APIErrorRequestFailed), "the provider's reply was not well-formed"
//     (APIErrorParseFailed) and "the provider told us something"
//     (APIErrorResponse). ContextLengthError is the classified subtype of a
//     provider error that means the prompt overflowed the context window.
//
// Usage Example
//
//	client, err := openai.NewOpenAIClient("http://infer", 0)
//	if err != nil {
//	    return err
//	}
//	sender := llm.NewLoggingMiddleware(logger).Wrap(client)
//
//	reply, err := sender.Send(ctx, []llm.Message{
//	    llm.NewTextMessage(llm.RoleUser, "Hello!"),
//	}, "default")
//	if llm.IsErrorResponse(err) {
//	    // the provider rejected the request
//	}
package llm
