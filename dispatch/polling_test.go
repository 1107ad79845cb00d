package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/maxbot/client"
	"github.com/hrygo/maxbot/types"
)

func rawMessageUpdate(t *testing.T, chatID, userID int64, text string, ts int64) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"update_type": "message_created",
		"timestamp":   ts,
		"message": map[string]any{
			"sender":    map[string]any{"user_id": userID, "first_name": "U"},
			"recipient": map[string]any{"chat_id": chatID, "chat_type": "dialog"},
			"timestamp": ts,
			"body":      map[string]any{"mid": "mid.1", "seq": 1, "text": text},
		},
	})
	require.NoError(t, err)
	return raw
}

func envelope(marker int64, updates ...json.RawMessage) *types.UpdateEnvelope {
	return &types.UpdateEnvelope{Updates: updates, Marker: &marker}
}

func TestPollingDispatchesAndAdvancesMarker(t *testing.T) {
	d := newTestDispatcher()
	var texts []string
	d.OnMessage(func(_ context.Context, ev *Event) error {
		if m, ok := ev.Update.(*types.MessageCreated); ok {
			texts = append(texts, m.Message.Text())
		}
		return nil
	})

	now := types.ToMillis(time.Now()) + 1000
	bot := newStubBot()
	bot.batches = []pollResult{
		{env: envelope(101, rawMessageUpdate(t, 42, 7, "one", now))},
		{env: envelope(102, rawMessageUpdate(t, 42, 7, "two", now))},
	}
	bot.onDrained = d.StopPolling

	require.NoError(t, d.StartPolling(context.Background(), bot))

	assert.Equal(t, []string{"one", "two"}, texts)
	markers := bot.seenMarkers()
	require.Len(t, markers, 3)
	assert.Nil(t, markers[0])
	require.NotNil(t, markers[1])
	assert.EqualValues(t, 101, *markers[1])
	require.NotNil(t, markers[2])
	assert.EqualValues(t, 102, *markers[2])
}

func TestPollingRetrySchedule(t *testing.T) {
	d := newTestDispatcher()
	var slept []time.Duration
	d.sleep = func(dur time.Duration) { slept = append(slept, dur) }

	var handled int
	d.OnMessage(func(context.Context, *Event) error {
		handled++
		return nil
	})

	now := types.ToMillis(time.Now()) + 1000
	transportErr := &client.TransportError{Err: fmt.Errorf("connection refused")}
	bot := newStubBot()
	bot.batches = []pollResult{
		{err: transportErr},
		{err: transportErr},
		{err: &client.APIError{Code: 500, Body: "oops"}},
		{env: envelope(200, rawMessageUpdate(t, 42, 7, "finally", now))},
	}
	bot.onDrained = d.StopPolling

	require.NoError(t, d.StartPolling(context.Background(), bot))

	assert.Equal(t, 1, handled)
	require.Equal(t, []time.Duration{
		transportRetryDelay,
		transportRetryDelay,
		platformRetryDelay,
	}, slept)

	// The marker must never advance across a failed call: every retry
	// re-requests the same batch.
	markers := bot.seenMarkers()
	require.Len(t, markers, 5)
	for _, m := range markers[:4] {
		assert.Nil(t, m)
	}
	require.NotNil(t, markers[4])
	assert.EqualValues(t, 200, *markers[4])
}

func TestPollingStopsOnInvalidToken(t *testing.T) {
	d := newTestDispatcher()
	d.sleep = func(time.Duration) { t.Fatal("invalid token must not be retried") }

	bot := newStubBot()
	bot.batches = []pollResult{{err: client.ErrInvalidToken}}

	err := d.StartPolling(context.Background(), bot)
	require.ErrorIs(t, err, client.ErrInvalidToken)
}

func TestPollingContinuesOnLongPollTimeout(t *testing.T) {
	d := newTestDispatcher()
	d.sleep = func(time.Duration) { t.Fatal("a long-poll timeout retries immediately") }

	now := types.ToMillis(time.Now()) + 1000
	bot := newStubBot()
	bot.batches = []pollResult{
		{err: &client.TransportError{Err: timeoutNetErr{}}},
		{env: envelope(300, rawMessageUpdate(t, 1, 2, "after timeout", now))},
	}
	bot.onDrained = d.StopPolling

	var handled int
	d.OnMessage(func(context.Context, *Event) error {
		handled++
		return nil
	})

	require.NoError(t, d.StartPolling(context.Background(), bot))
	assert.Equal(t, 1, handled)
}

// timeoutNetErr is a net.Error that reports Timeout true.
type timeoutNetErr struct{}

func (timeoutNetErr) Error() string   { return "i/o timeout" }
func (timeoutNetErr) Timeout() bool   { return true }
func (timeoutNetErr) Temporary() bool { return true }

func TestPollingSkipsUnknownUpdates(t *testing.T) {
	d := newTestDispatcher()
	var handled int
	d.OnMessage(func(context.Context, *Event) error {
		handled++
		return nil
	})

	now := types.ToMillis(time.Now()) + 1000
	unknown := json.RawMessage(`{"update_type":"meteor_strike","timestamp":` + fmt.Sprint(now) + `}`)
	bot := newStubBot()
	bot.batches = []pollResult{
		{env: envelope(400, unknown, rawMessageUpdate(t, 42, 7, "still here", now))},
	}
	bot.onDrained = d.StopPolling

	require.NoError(t, d.StartPolling(context.Background(), bot))

	// The unknown update is skipped, the rest of the batch still flows.
	assert.Equal(t, 1, handled)
}

func TestPollingSkipUpdatesDropsBacklog(t *testing.T) {
	d := newTestDispatcher()
	var texts []string
	d.OnMessage(func(_ context.Context, ev *Event) error {
		if m, ok := ev.Update.(*types.MessageCreated); ok {
			texts = append(texts, m.Message.Text())
		}
		return nil
	})

	past := types.ToMillis(time.Now()) - 60_000
	future := types.ToMillis(time.Now()) + 60_000
	bot := newStubBot()
	bot.batches = []pollResult{
		{env: envelope(1, rawMessageUpdate(t, 42, 7, "stale", past), rawMessageUpdate(t, 42, 7, "fresh", future))},
		{env: envelope(2, rawMessageUpdate(t, 42, 7, "later stale", past))},
	}
	bot.onDrained = d.StopPolling

	require.NoError(t, d.StartPolling(context.Background(), bot, SkipUpdates()))

	// Only the first batch is filtered by timestamp.
	assert.Equal(t, []string{"fresh", "later stale"}, texts)
}

func TestStopPollingIsCooperative(t *testing.T) {
	d := newTestDispatcher()
	bot := newStubBot()
	bot.onDrained = d.StopPolling

	done := make(chan error, 1)
	go func() { done <- d.StartPolling(context.Background(), bot) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
}

func TestPollingStopsOnContextCancel(t *testing.T) {
	d := newTestDispatcher()
	ctx, cancel := context.WithCancel(context.Background())

	bot := newStubBot()
	bot.onDrained = cancel

	require.NoError(t, d.StartPolling(ctx, bot))
}
