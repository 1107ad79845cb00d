package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messageCreatedJSON = `{
	"update_type": "message_created",
	"timestamp": 1700000000000,
	"message": {
		"sender": {"user_id": 7, "first_name": "Sam", "is_bot": false},
		"recipient": {"chat_id": 42, "chat_type": "dialog"},
		"timestamp": 1700000000000,
		"body": {"mid": "mid.1", "seq": 1, "text": "/start"}
	}
}`

func TestDecodeUpdateVariants(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantType   UpdateType
		wantChatID int64
		wantUserID int64
	}{
		{
			name:       "message_created",
			json:       messageCreatedJSON,
			wantType:   UpdateMessageCreated,
			wantChatID: 42,
			wantUserID: 7,
		},
		{
			name: "message_removed",
			json: `{"update_type":"message_removed","timestamp":1700000000001,
				"message_id":"mid.2","chat_id":42,"user_id":7}`,
			wantType:   UpdateMessageRemoved,
			wantChatID: 42,
			wantUserID: 7,
		},
		{
			name: "message_callback without message",
			json: `{"update_type":"message_callback","timestamp":1700000000002,
				"callback":{"timestamp":1700000000002,"callback_id":"cb.1","payload":"P|17|open",
					"user":{"user_id":7,"first_name":"Sam","is_bot":false}}}`,
			wantType:   UpdateMessageCallback,
			wantChatID: 0,
			wantUserID: 7,
		},
		{
			name: "bot_started",
			json: `{"update_type":"bot_started","timestamp":1700000000003,"chat_id":42,
				"user":{"user_id":7,"first_name":"Sam","is_bot":false}}`,
			wantType:   UpdateBotStarted,
			wantChatID: 42,
			wantUserID: 7,
		},
		{
			name: "user_added without inviter",
			json: `{"update_type":"user_added","timestamp":1700000000004,"chat_id":42,
				"user":{"user_id":8,"first_name":"Kim","is_bot":false},"is_channel":false}`,
			wantType:   UpdateUserAdded,
			wantChatID: 42,
			wantUserID: 0,
		},
		{
			name: "user_removed with admin",
			json: `{"update_type":"user_removed","timestamp":1700000000005,"chat_id":42,
				"user":{"user_id":8,"first_name":"Kim","is_bot":false},"admin_id":9,"is_channel":false}`,
			wantType:   UpdateUserRemoved,
			wantChatID: 42,
			wantUserID: 9,
		},
		{
			name: "chat_title_changed",
			json: `{"update_type":"chat_title_changed","timestamp":1700000000006,"chat_id":42,
				"user":{"user_id":7,"first_name":"Sam","is_bot":false},"title":"new title"}`,
			wantType:   UpdateChatTitleChanged,
			wantChatID: 42,
			wantUserID: 7,
		},
		{
			name: "dialog_muted",
			json: `{"update_type":"dialog_muted","timestamp":1700000000007,"chat_id":42,
				"muted_until":1800000000000,
				"user":{"user_id":7,"first_name":"Sam","is_bot":false}}`,
			wantType:   UpdateDialogMuted,
			wantChatID: 42,
			wantUserID: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := DecodeUpdate([]byte(tt.json))
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, u.Type())
			assert.Greater(t, u.Time(), int64(0))

			chatID, userID := u.IDs()
			assert.Equal(t, tt.wantChatID, chatID)
			assert.Equal(t, tt.wantUserID, userID)
		})
	}
}

func TestDecodeUpdateUnknownType(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{"update_type":"meteor_strike","timestamp":1}`))

	assert.Nil(t, u)
	require.ErrorIs(t, err, ErrUnknownUpdate)
	assert.Contains(t, err.Error(), "meteor_strike")
}

func TestDecodeUpdateMalformedJSON(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{`))

	assert.Nil(t, u)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownUpdate)
}

func TestDecodeMessageCreatedBody(t *testing.T) {
	u, err := DecodeUpdate([]byte(messageCreatedJSON))
	require.NoError(t, err)

	created, ok := u.(*MessageCreated)
	require.True(t, ok)
	assert.Equal(t, "/start", created.Message.Text())
	assert.Equal(t, "mid.1", created.Message.Body.Mid)
	assert.Equal(t, ChatTypeDialog, created.Message.Recipient.ChatType)
}

func TestMessageTextNil(t *testing.T) {
	var m *Message
	assert.Equal(t, "", m.Text())
	assert.Equal(t, "", (&Message{}).Text())
}
