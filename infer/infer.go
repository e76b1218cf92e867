package infer

import (
	"context"
	"strings"

	"github.com/aschepis/backscratcher/companion/chain"
	"github.com/aschepis/backscratcher/companion/llm"
	"github.com/aschepis/backscratcher/companion/prompts"
	"github.com/aschepis/backscratcher/companion/reply"
)

// Drop runs ch and parses the reply with parse. The chain is taken by value;
// callers that want to continue the conversation should use Push.
func Drop[T any](ctx context.Context, e *Engine, ch chain.Chain, wantReasoning bool, parse reply.Func[T]) (reply.WithReasoning[T], error) {
	result, _, err := run(ctx, e, ch, wantReasoning, parse)
	return result, err
}

// Keep runs ch and parses the reply without modifying ch.
func Keep[T any](ctx context.Context, e *Engine, ch *chain.Chain, wantReasoning bool, parse reply.Func[T]) (reply.WithReasoning[T], error) {
	result, _, err := run(ctx, e, *ch, wantReasoning, parse)
	return result, err
}

// Push runs ch, parses the reply and, on success, appends the assistant's
// answer to ch. Reasoning is not recorded. On error ch is left untouched.
func Push[T any](ctx context.Context, e *Engine, ch *chain.Chain, wantReasoning bool, parse reply.Func[T]) (reply.WithReasoning[T], error) {
	result, answer, err := run(ctx, e, *ch, wantReasoning, parse)
	if err != nil {
		return result, err
	}
	ch.PushMessage(llm.RoleAssistant, answer)
	return result, nil
}

// run applies the configured reasoning strategy. It returns the parsed
// result and the answer text without any reasoning block.
func run[T any](ctx context.Context, e *Engine, ch chain.Chain, wantReasoning bool, parse reply.Func[T]) (reply.WithReasoning[T], string, error) {
	switch e.settings.Reasoning {
	case ReasoningNative:
		return runNative(ctx, e, ch, wantReasoning, parse)
	case ReasoningTwoStep:
		if wantReasoning {
			return runTwoStep(ctx, e, ch, parse)
		}
		return runSingle(ctx, e, ch, false, parse)
	default:
		return runSingle(ctx, e, ch, wantReasoning, parse)
	}
}

func runSingle[T any](ctx context.Context, e *Engine, ch chain.Chain, wantReasoning bool, parse reply.Func[T]) (reply.WithReasoning[T], string, error) {
	raw, err := e.send(ctx, ch, wantReasoning)
	if err != nil {
		return reply.WithReasoning[T]{}, "", err
	}
	result, err := reply.Plain(parse)(raw)
	if err != nil {
		return reply.WithReasoning[T]{}, "", err
	}
	return result, raw, nil
}

func runNative[T any](ctx context.Context, e *Engine, ch chain.Chain, wantReasoning bool, parse reply.Func[T]) (reply.WithReasoning[T], string, error) {
	raw, err := e.send(ctx, ch, wantReasoning)
	if err != nil {
		return reply.WithReasoning[T]{}, "", err
	}
	result, err := reply.Reasoned(parse)(raw)
	if err != nil {
		return reply.WithReasoning[T]{}, "", err
	}
	_, answer, _ := reply.SplitReasoning(raw)
	if !wantReasoning {
		result.Reasoning = ""
	}
	return result, answer, nil
}

// runTwoStep asks for reasoning on one fork of ch and for the answer on
// another fork that carries the reasoning as an assistant turn.
func runTwoStep[T any](ctx context.Context, e *Engine, ch chain.Chain, parse reply.Func[T]) (reply.WithReasoning[T], string, error) {
	thinking := ch.Fork()
	thinking.PushMessage(llm.RoleUser, prompts.ThinkStepByStep)
	reasoning, err := e.send(ctx, thinking, true)
	if err != nil {
		return reply.WithReasoning[T]{}, "", err
	}
	reasoning = strings.TrimSpace(reasoning)

	answering := ch.Fork()
	answering.PushMessage(llm.RoleAssistant, reply.Think(reasoning))
	answering.PushMessage(llm.RoleUser, prompts.FinalAnswer)
	raw, err := e.send(ctx, answering, false)
	if err != nil {
		return reply.WithReasoning[T]{}, "", err
	}
	value, err := parse(raw)
	if err != nil {
		return reply.WithReasoning[T]{}, "", err
	}
	return reply.WithReasoning[T]{Value: value, Reasoning: reasoning}, raw, nil
}
