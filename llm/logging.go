package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type startKey struct{}

// LoggingMiddleware logs every completion round trip.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a new LoggingMiddleware.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger.With().Str("component", "wireLogging").Logger(),
	}
}

// Wrap decorates sender so that each round trip is timed and logged.
func (m *LoggingMiddleware) Wrap(sender Sender) Sender {
	return SenderFunc(func(ctx context.Context, messages []Message, model string) (string, error) {
		return WrapWithMiddleware(sender, m).Send(context.WithValue(ctx, startKey{}, time.Now()), messages, model)
	})
}

// BeforeSend implements Middleware.BeforeSend.
func (m *LoggingMiddleware) BeforeSend(ctx context.Context, messages []Message, model string) ([]Message, error) {
	m.logger.Debug().
		Str("model", model).
		Int("messages", len(messages)).
		Msg("Sending completion request")
	return messages, nil
}

// AfterSend implements Middleware.AfterSend.
func (m *LoggingMiddleware) AfterSend(ctx context.Context, messages []Message, model string, reply string) (string, error) {
	m.logger.Debug().
		Str("model", model).
		Int("reply_len", len(reply)).
		Dur("elapsed", elapsed(ctx)).
		Msg("Completion request succeeded")
	return reply, nil
}

// OnError implements Middleware.OnError.
func (m *LoggingMiddleware) OnError(ctx context.Context, messages []Message, model string, err error) error {
	event := m.logger.Warn().Err(err).Str("model", model).Dur("elapsed", elapsed(ctx))
	if apiErr, ok := AsAPIError(err); ok {
		event = event.Str("kind", string(apiErr.Kind)).Int("status", apiErr.StatusCode)
	}
	event.Msg("Completion request failed")
	return err
}

func elapsed(ctx context.Context) time.Duration {
	if start, ok := ctx.Value(startKey{}).(time.Time); ok {
		return time.Since(start)
	}
	return 0
}
