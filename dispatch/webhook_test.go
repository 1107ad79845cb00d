package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/maxbot/types"
)

func postWebhook(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestWebhookDispatchesUpdate(t *testing.T) {
	d := newTestDispatcher()
	bot := newStubBot()
	require.NoError(t, d.ready(context.Background(), bot, false))

	var texts []string
	d.OnMessage(func(_ context.Context, ev *Event) error {
		if m, ok := ev.Update.(*types.MessageCreated); ok {
			texts = append(texts, m.Message.Text())
		}
		return nil
	})

	body := `{
		"update_type": "message_created",
		"timestamp": 1700000000000,
		"message": {
			"sender": {"user_id": 7, "first_name": "U"},
			"recipient": {"chat_id": 42, "chat_type": "dialog"},
			"timestamp": 1700000000000,
			"body": {"mid": "mid.1", "seq": 1, "text": "via webhook"}
		}
	}`
	rec := postWebhook(t, d.WebhookHandler(bot), body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, []string{"via webhook"}, texts)
}

func TestWebhookAcksUnknownAndMalformed(t *testing.T) {
	d := newTestDispatcher()
	bot := newStubBot()
	require.NoError(t, d.ready(context.Background(), bot, false))
	d.OnMessage(func(context.Context, *Event) error {
		t.Fatal("nothing must be dispatched")
		return nil
	})

	for _, body := range []string{
		`{"update_type":"meteor_strike","timestamp":1700000000000}`,
		`{"update_type":`,
		``,
	} {
		rec := postWebhook(t, d.WebhookHandler(bot), body)
		assert.Equal(t, http.StatusOK, rec.Code, "body %q", body)
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	}
}

func TestWebhookHandlerFailureStillAcks(t *testing.T) {
	d := newTestDispatcher()
	bot := newStubBot()
	require.NoError(t, d.ready(context.Background(), bot, false))
	d.OnMessage(func(context.Context, *Event) error {
		return assert.AnError
	})

	body := `{
		"update_type": "message_created",
		"timestamp": 1700000000000,
		"message": {
			"sender": {"user_id": 7, "first_name": "U"},
			"recipient": {"chat_id": 42, "chat_type": "dialog"},
			"timestamp": 1700000000000,
			"body": {"mid": "mid.1", "seq": 1, "text": "boom"}
		}
	}`
	rec := postWebhook(t, d.WebhookHandler(bot), body)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookHandlerStandaloneMountBindsBot(t *testing.T) {
	// Mounted on a caller's own echo app, without RunWebhook ever
	// running: default enrichment must use the handler's bot.
	d := New(nil)
	bot := newStubBot()

	var gotBot Bot
	var gotChat *types.Chat
	d.OnMessage(func(_ context.Context, ev *Event) error {
		gotBot = ev.Bot
		gotChat = ev.Update.Chat()
		return nil
	})

	body := `{
		"update_type": "message_created",
		"timestamp": 1700000000000,
		"message": {
			"sender": {"user_id": 7, "first_name": "U"},
			"recipient": {"chat_id": 42, "chat_type": "dialog"},
			"timestamp": 1700000000000,
			"body": {"mid": "mid.1", "seq": 1, "text": "standalone"}
		}
	}`
	var rec *httptest.ResponseRecorder
	require.NotPanics(t, func() {
		rec = postWebhook(t, d.WebhookHandler(bot), body)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Same(t, bot, gotBot)
	require.NotNil(t, gotChat)
	assert.EqualValues(t, 42, gotChat.ChatID)
}

func TestExtraRoutesRecorded(t *testing.T) {
	d := newTestDispatcher()
	d.Route(http.MethodGet, "/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.Len(t, d.extraRoutes, 1)
	assert.Equal(t, "/healthz", d.extraRoutes[0].path)
}
