// Package types defines the decoded MAX update hierarchy and the value
// objects it is built from. Updates form a closed union discriminated by
// the wire field "update_type"; unknown discriminators decode to the
// ErrUnknownUpdate sentinel so new server-side events never stall ingestion.
package types

import (
	"context"
	"encoding/json"
	"time"
)

// UpdateType discriminates update variants on the wire.
type UpdateType string

const (
	UpdateMessageCreated     UpdateType = "message_created"
	UpdateMessageEdited      UpdateType = "message_edited"
	UpdateMessageRemoved     UpdateType = "message_removed"
	UpdateMessageCallback    UpdateType = "message_callback"
	// Deprecated: the platform no longer emits message_chat_created;
	// handlers can still be registered for the stragglers.
	UpdateMessageChatCreated UpdateType = "message_chat_created"
	UpdateBotAdded           UpdateType = "bot_added"
	UpdateBotRemoved         UpdateType = "bot_removed"
	UpdateBotStarted         UpdateType = "bot_started"
	UpdateBotStopped         UpdateType = "bot_stopped"
	UpdateUserAdded          UpdateType = "user_added"
	UpdateUserRemoved        UpdateType = "user_removed"
	UpdateChatTitleChanged   UpdateType = "chat_title_changed"
	UpdateDialogCleared      UpdateType = "dialog_cleared"
	UpdateDialogMuted        UpdateType = "dialog_muted"
	UpdateDialogUnmuted      UpdateType = "dialog_unmuted"
	UpdateDialogRemoved      UpdateType = "dialog_removed"
)

// Deprecated reports whether the platform has deprecated this update type.
func (t UpdateType) Deprecated() bool { return t == UpdateMessageChatCreated }

// BotAPI is the narrow client surface the update layer needs: enrichment
// lookups plus the cached bot identity. *client.Bot satisfies it.
type BotAPI interface {
	// Me returns the bot identity cached by getMe, or nil before the
	// first call.
	Me() *User

	GetChatByID(ctx context.Context, chatID int64) (*Chat, error)
	GetChatMember(ctx context.Context, chatID, userID int64) (*ChatMember, error)
}

// Update is one decoded platform event. Every variant derives a routing key
// (chat, user) pair; a zero component means the id is not derivable.
type Update interface {
	Type() UpdateType
	// Time is the event timestamp in ms since epoch.
	Time() int64
	// When is Time converted to wall-clock.
	When() time.Time
	// IDs returns the routing key (chatID, userID), zero when absent.
	IDs() (chatID, userID int64)
	// Chat is the enriched chat, nil when enrichment was off or failed.
	Chat() *Chat
	// From is the acting user resolved during enrichment, nil when unknown.
	From() *User
	// Bot is the back-reference to the client for outbound calls.
	Bot() BotAPI

	meta() *UpdateMeta
}

// UpdateMeta is the part shared by all variants. It carries the wire
// discriminator and timestamp plus fields attached after decoding.
type UpdateMeta struct {
	UpdateType UpdateType `json:"update_type"`
	Timestamp  int64      `json:"timestamp"`

	chat     *Chat
	fromUser *User
	bot      BotAPI
}

func (m *UpdateMeta) Type() UpdateType { return m.UpdateType }
func (m *UpdateMeta) Time() int64      { return m.Timestamp }
func (m *UpdateMeta) When() time.Time  { return FromMillis(m.Timestamp) }
func (m *UpdateMeta) Chat() *Chat      { return m.chat }
func (m *UpdateMeta) From() *User      { return m.fromUser }
func (m *UpdateMeta) Bot() BotAPI      { return m.bot }

func (m *UpdateMeta) meta() *UpdateMeta { return m }

// UpdateEnvelope is the getUpdates response: a batch of raw updates plus
// the marker to resume from.
type UpdateEnvelope struct {
	Updates []json.RawMessage `json:"updates"`
	Marker  *int64            `json:"marker,omitempty"`
}
