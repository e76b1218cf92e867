package llm

import (
	"context"
)

// Sender performs one completion round trip: it sends an ordered list of
// messages to the completion endpoint and returns the raw reply text.
// Failures are reported as *APIError.
type Sender interface {
	Send(ctx context.Context, messages []Message, model string) (string, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, messages []Message, model string) (string, error)

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, messages []Message, model string) (string, error) {
	return f(ctx, messages, model)
}

// Middleware provides hooks for decorating Sender calls.
type Middleware interface {
	// BeforeSend is called before the round trip.
	// It can replace the messages or return an error to abort the call.
	BeforeSend(ctx context.Context, messages []Message, model string) ([]Message, error)

	// AfterSend is called with the raw reply of a successful round trip.
	AfterSend(ctx context.Context, messages []Message, model string, reply string) (string, error)

	// OnError is called when the round trip fails.
	// It can return a modified error or nil to use the original error.
	OnError(ctx context.Context, messages []Message, model string, err error) error
}

// MiddlewareFunc is a function type that implements Middleware.
type MiddlewareFunc struct {
	BeforeSendFunc func(ctx context.Context, messages []Message, model string) ([]Message, error)
	AfterSendFunc  func(ctx context.Context, messages []Message, model string, reply string) (string, error)
	OnErrorFunc    func(ctx context.Context, messages []Message, model string, err error) error
}

// BeforeSend calls the BeforeSendFunc if set.
func (f MiddlewareFunc) BeforeSend(ctx context.Context, messages []Message, model string) ([]Message, error) {
	if f.BeforeSendFunc != nil {
		return f.BeforeSendFunc(ctx, messages, model)
	}
	return messages, nil
}

// AfterSend calls the AfterSendFunc if set.
func (f MiddlewareFunc) AfterSend(ctx context.Context, messages []Message, model string, reply string) (string, error) {
	if f.AfterSendFunc != nil {
		return f.AfterSendFunc(ctx, messages, model, reply)
	}
	return reply, nil
}

// OnError calls the OnErrorFunc if set.
func (f MiddlewareFunc) OnError(ctx context.Context, messages []Message, model string, err error) error {
	if f.OnErrorFunc != nil {
		return f.OnErrorFunc(ctx, messages, model, err)
	}
	return err
}

// WrapWithMiddleware wraps a Sender with middleware and returns a new Sender.
func WrapWithMiddleware(sender Sender, middleware ...Middleware) Sender {
	if len(middleware) == 0 {
		return sender
	}
	return &senderWithMiddleware{
		sender:     sender,
		middleware: middleware,
	}
}

// senderWithMiddleware wraps a Sender with middleware.
type senderWithMiddleware struct {
	sender     Sender
	middleware []Middleware
}

// Send implements Sender.Send with middleware support.
func (s *senderWithMiddleware) Send(ctx context.Context, messages []Message, model string) (string, error) {
	for _, mw := range s.middleware {
		var err error
		messages, err = mw.BeforeSend(ctx, messages, model)
		if err != nil {
			return "", err
		}
	}

	reply, err := s.sender.Send(ctx, messages, model)
	if err != nil {
		original := err
		for _, mw := range s.middleware {
			err = mw.OnError(ctx, messages, model, err)
			if err == nil {
				err = original
				break
			}
		}
		return "", err
	}

	for i := len(s.middleware) - 1; i >= 0; i-- {
		reply, err = s.middleware[i].AfterSend(ctx, messages, model, reply)
		if err != nil {
			return "", err
		}
	}

	return reply, nil
}

// Ensure senderWithMiddleware implements Sender
var _ Sender = (*senderWithMiddleware)(nil)
