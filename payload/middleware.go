package payload

import (
	"context"

	"github.com/hrygo/maxbot/dispatch"
	"github.com/hrygo/maxbot/types"
)

// Filter matches callback updates whose payload belongs to this schema
// and injects the decoded fields into the event as its Payload.
func (s *Schema) Filter() dispatch.Filter {
	return dispatch.FilterFunc(func(_ context.Context, ev *dispatch.Event) (bool, map[string]any, error) {
		cb, ok := ev.Update.(*types.MessageCallback)
		if !ok {
			return false, nil, nil
		}
		if !s.Matches(cb.Callback.Payload) {
			return false, nil, nil
		}
		decoded, err := s.Unpack(cb.Callback.Payload)
		if err != nil {
			return false, nil, err
		}
		return true, map[string]any{"payload": decoded}, nil
	})
}

// Provide wraps a handler so ev.Payload carries the decoded schema
// fields, for handlers registered without the schema filter.
func (s *Schema) Provide() dispatch.Middleware {
	return func(next dispatch.Handler) dispatch.Handler {
		return func(ctx context.Context, ev *dispatch.Event) error {
			if cb, ok := ev.Update.(*types.MessageCallback); ok && s.Matches(cb.Callback.Payload) {
				decoded, err := s.Unpack(cb.Callback.Payload)
				if err != nil {
					return err
				}
				ev.Payload = decoded
			}
			return next(ctx, ev)
		}
	}
}
