// Package dispatch routes decoded MAX updates through a tree of routers:
// filters decide whether a handler applies, middleware wraps each stage,
// and every handler receives the FSM context for the update's routing key.
package dispatch

import (
	"context"

	"github.com/hrygo/maxbot/fsm"
	"github.com/hrygo/maxbot/types"
)

// Event is what a handler receives: the update plus everything the
// pipeline resolved for it. Filters and middleware contribute values
// through the Values bag; the well-known keys "args" and "payload" are
// lifted into their typed fields before the handler runs.
type Event struct {
	// Update is the decoded platform event.
	Update types.Update

	// Context is the FSM context for this update's (chat, user) key.
	Context *fsm.Context

	// State is the FSM state read once at dispatch start ("" when unset).
	State string

	// Bot is the platform client driving this dispatcher.
	Bot Bot

	// Args holds command arguments injected by the command filter.
	Args []string

	// Payload holds the decoded callback payload injected by a payload
	// schema middleware.
	Payload any

	// Values carries everything else filters and middleware contributed.
	Values map[string]any
}

// Message returns the update's message for message-bearing variants,
// nil otherwise.
func (e *Event) Message() *types.Message {
	switch u := e.Update.(type) {
	case *types.MessageCreated:
		return &u.Message
	case *types.MessageEdited:
		return &u.Message
	case *types.MessageCallback:
		return u.Message
	default:
		return nil
	}
}

// Handler processes one event.
type Handler func(ctx context.Context, ev *Event) error

// Middleware wraps the next pipeline stage. Global middleware wraps the
// whole router traversal, router middleware wraps that router's handler
// selection, handler middleware wraps only the final invocation.
type Middleware func(next Handler) Handler

// compose builds mw₁(mw₂(…mwₙ(terminal))).
func compose(mws []Middleware, terminal Handler) Handler {
	h := terminal
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Filter decides whether a stage applies to an event. On success it may
// return extra values to merge into the event.
type Filter interface {
	Check(ctx context.Context, ev *Event) (ok bool, extra map[string]any, err error)
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc func(ctx context.Context, ev *Event) (bool, map[string]any, error)

func (f FilterFunc) Check(ctx context.Context, ev *Event) (bool, map[string]any, error) {
	return f(ctx, ev)
}

// Predicate adapts a plain update predicate to a Filter.
func Predicate(fn func(u types.Update) bool) Filter {
	return FilterFunc(func(_ context.Context, ev *Event) (bool, map[string]any, error) {
		return fn(ev.Update), nil, nil
	})
}

// evalFilters runs filters in order. All must pass; their extras are
// merged left to right and applied by the caller only on success.
func evalFilters(ctx context.Context, ev *Event, filters []Filter) (bool, map[string]any, error) {
	var merged map[string]any
	for _, f := range filters {
		ok, extra, err := f.Check(ctx, ev)
		if err != nil {
			return false, nil, err
		}
		if !ok {
			return false, nil, nil
		}
		if len(extra) > 0 {
			if merged == nil {
				merged = make(map[string]any, len(extra))
			}
			for k, v := range extra {
				merged[k] = v
			}
		}
	}
	return true, merged, nil
}

// applyExtras merges filter output into the event, lifting the well-known
// keys into their typed fields.
func applyExtras(ev *Event, extra map[string]any) {
	for k, v := range extra {
		switch k {
		case "args":
			if args, ok := v.([]string); ok {
				ev.Args = args
				continue
			}
		case "payload":
			ev.Payload = v
			continue
		}
		ev.Values[k] = v
	}
}
