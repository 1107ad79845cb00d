package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/hrygo/maxbot/types"
)

// stubBot satisfies Bot with canned responses. GetUpdates serves the
// configured batches in order and then reports drained batches via the
// onDrained hook, which tests typically wire to StopPolling.
type stubBot struct {
	mu        sync.Mutex
	me        *types.User
	subs      []types.Subscription
	batches   []pollResult
	markers   []*int64
	onDrained func()
}

type pollResult struct {
	env *types.UpdateEnvelope
	err error
}

func newStubBot() *stubBot {
	username := "testbot"
	return &stubBot{
		me: &types.User{UserID: 1, FirstName: "Test", Username: &username, IsBot: true},
	}
}

func (s *stubBot) Me() *types.User { return s.me }

func (s *stubBot) GetMe(context.Context) (*types.User, error) { return s.me, nil }

func (s *stubBot) GetSubscriptions(context.Context) ([]types.Subscription, error) {
	return s.subs, nil
}

func (s *stubBot) GetChatByID(_ context.Context, chatID int64) (*types.Chat, error) {
	return &types.Chat{ChatID: chatID, Type: types.ChatTypeDialog}, nil
}

func (s *stubBot) GetChatMember(_ context.Context, _, userID int64) (*types.ChatMember, error) {
	return &types.ChatMember{User: types.User{UserID: userID}}, nil
}

func (s *stubBot) GetUpdates(_ context.Context, marker *int64) (*types.UpdateEnvelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if marker != nil {
		m := *marker
		s.markers = append(s.markers, &m)
	} else {
		s.markers = append(s.markers, nil)
	}
	if len(s.batches) == 0 {
		if s.onDrained != nil {
			s.onDrained()
		}
		return &types.UpdateEnvelope{}, nil
	}
	next := s.batches[0]
	s.batches = s.batches[1:]
	if next.err != nil {
		return nil, next.err
	}
	return next.env, nil
}

func (s *stubBot) seenMarkers() []*int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*int64, len(s.markers))
	copy(out, s.markers)
	return out
}

func messageUpdate(chatID, userID int64, text string) *types.MessageCreated {
	return &types.MessageCreated{
		UpdateMeta: types.UpdateMeta{
			UpdateType: types.UpdateMessageCreated,
			Timestamp:  types.ToMillis(time.Now()),
		},
		Message: types.Message{
			Sender:    types.User{UserID: userID},
			Recipient: types.Recipient{ChatID: chatID, ChatType: types.ChatTypeDialog},
			Body:      types.MessageBody{Mid: "mid.1", Seq: 1, Text: &text},
		},
	}
}

func callbackUpdate(chatID, userID int64, payload string) *types.MessageCallback {
	text := "pick one"
	return &types.MessageCallback{
		UpdateMeta: types.UpdateMeta{
			UpdateType: types.UpdateMessageCallback,
			Timestamp:  types.ToMillis(time.Now()),
		},
		Message: &types.Message{
			Sender:    types.User{UserID: 1, IsBot: true},
			Recipient: types.Recipient{ChatID: chatID, ChatType: types.ChatTypeDialog},
			Body:      types.MessageBody{Mid: "mid.2", Seq: 2, Text: &text},
		},
		Callback: types.Callback{
			Timestamp:  types.ToMillis(time.Now()),
			CallbackID: "cb.1",
			Payload:    payload,
			User:       types.User{UserID: userID},
		},
	}
}

// newTestDispatcher builds a dispatcher with auto requests off so tests
// control enrichment explicitly.
func newTestDispatcher(opts ...Option) *Dispatcher {
	opts = append([]Option{WithoutAutoRequests(), WithoutSubscriptionCheck()}, opts...)
	return New(nil, opts...)
}
