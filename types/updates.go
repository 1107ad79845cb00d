package types

import "time"

// The sixteen update variants. Field shapes and routing keys follow the
// platform wire format; IDs() documents how each variant derives its
// (chat, user) pair.

// MessageCreated signals a new message.
type MessageCreated struct {
	UpdateMeta

	Message    Message `json:"message"`
	UserLocale *string `json:"user_locale,omitempty"`
}

func (u *MessageCreated) IDs() (int64, int64) {
	return u.Message.Recipient.ChatID, u.Message.Sender.UserID
}

// MessageEdited signals an edit to an existing message.
type MessageEdited struct {
	UpdateMeta

	Message Message `json:"message"`
}

func (u *MessageEdited) IDs() (int64, int64) {
	return u.Message.Recipient.ChatID, u.Message.Recipient.UserID
}

// MessageRemoved signals a message deletion. Only bare ids survive; the
// acting user is resolved during enrichment.
type MessageRemoved struct {
	UpdateMeta

	MessageID string `json:"message_id"`
	ChatID    int64  `json:"chat_id"`
	UserID    int64  `json:"user_id"`
}

func (u *MessageRemoved) IDs() (int64, int64) { return u.ChatID, u.UserID }

// MessageCallback is an inline-button press. Message may be nil when the
// original message was deleted before the bot received the update.
type MessageCallback struct {
	UpdateMeta

	Message    *Message `json:"message,omitempty"`
	Callback   Callback `json:"callback"`
	UserLocale *string  `json:"user_locale,omitempty"`
}

func (u *MessageCallback) IDs() (int64, int64) {
	var chatID int64
	if u.Message != nil {
		chatID = u.Message.Recipient.ChatID
	}
	return chatID, u.Callback.User.UserID
}

// MessageChatCreated signals a chat created from a chat button.
//
// Deprecated: the platform has deprecated this event.
type MessageChatCreated struct {
	UpdateMeta

	ChatObj      Chat    `json:"chat"`
	Title        *string `json:"title,omitempty"`
	MessageID    *string `json:"message_id,omitempty"`
	StartPayload *string `json:"start_payload,omitempty"`
}

func (u *MessageChatCreated) IDs() (int64, int64) {
	return u.ChatObj.ChatID, u.ChatObj.OwnerID
}

// BotAdded signals the bot joining a chat.
type BotAdded struct {
	UpdateMeta

	ChatID    int64 `json:"chat_id"`
	User      User  `json:"user"`
	IsChannel bool  `json:"is_channel"`
}

func (u *BotAdded) IDs() (int64, int64) { return u.ChatID, u.User.UserID }

// BotRemoved signals the bot being removed from a chat.
type BotRemoved struct {
	UpdateMeta

	ChatID    int64 `json:"chat_id"`
	User      User  `json:"user"`
	IsChannel bool  `json:"is_channel"`
}

func (u *BotRemoved) IDs() (int64, int64) { return u.ChatID, u.User.UserID }

// BotStarted signals a user pressing "start" in a dialog with the bot.
type BotStarted struct {
	UpdateMeta

	ChatID     int64   `json:"chat_id"`
	User       User    `json:"user"`
	UserLocale *string `json:"user_locale,omitempty"`
	Payload    *string `json:"payload,omitempty"`
}

func (u *BotStarted) IDs() (int64, int64) { return u.ChatID, u.User.UserID }

// BotStopped signals a user blocking the bot.
type BotStopped struct {
	UpdateMeta

	ChatID     int64   `json:"chat_id"`
	User       User    `json:"user"`
	UserLocale *string `json:"user_locale,omitempty"`
	Payload    *string `json:"payload,omitempty"`
}

func (u *BotStopped) IDs() (int64, int64) { return u.ChatID, u.User.UserID }

// UserAdded signals a member joining a chat the bot is in. The routing user
// is the inviter, which may be absent for join-by-link.
type UserAdded struct {
	UpdateMeta

	ChatID    int64  `json:"chat_id"`
	User      User   `json:"user"`
	InviterID *int64 `json:"inviter_id,omitempty"`
	IsChannel bool   `json:"is_channel"`
}

func (u *UserAdded) IDs() (int64, int64) {
	var inviter int64
	if u.InviterID != nil {
		inviter = *u.InviterID
	}
	return u.ChatID, inviter
}

// UserRemoved signals a member leaving or being removed. The routing user
// is the acting admin, absent when the member left on their own.
type UserRemoved struct {
	UpdateMeta

	ChatID    int64  `json:"chat_id"`
	User      User   `json:"user"`
	AdminID   *int64 `json:"admin_id,omitempty"`
	IsChannel bool   `json:"is_channel"`
}

func (u *UserRemoved) IDs() (int64, int64) {
	var admin int64
	if u.AdminID != nil {
		admin = *u.AdminID
	}
	return u.ChatID, admin
}

// ChatTitleChanged signals a chat rename.
type ChatTitleChanged struct {
	UpdateMeta

	ChatID int64  `json:"chat_id"`
	User   User   `json:"user"`
	Title  string `json:"title"`
}

func (u *ChatTitleChanged) IDs() (int64, int64) { return u.ChatID, u.User.UserID }

// DialogCleared signals a user clearing their dialog with the bot.
type DialogCleared struct {
	UpdateMeta

	ChatID     int64   `json:"chat_id"`
	User       User    `json:"user"`
	UserLocale *string `json:"user_locale,omitempty"`
}

func (u *DialogCleared) IDs() (int64, int64) { return u.ChatID, u.User.UserID }

// DialogMuted signals notifications being muted for a dialog.
type DialogMuted struct {
	UpdateMeta

	ChatID     int64   `json:"chat_id"`
	User       User    `json:"user"`
	MutedUntil int64   `json:"muted_until"`
	UserLocale *string `json:"user_locale,omitempty"`
}

func (u *DialogMuted) IDs() (int64, int64) { return u.ChatID, u.User.UserID }

// MutedUntilTime converts the mute deadline to wall-clock.
func (u *DialogMuted) MutedUntilTime() time.Time { return FromMillis(u.MutedUntil) }

// DialogUnmuted signals notifications being restored for a dialog.
type DialogUnmuted struct {
	UpdateMeta

	ChatID     int64   `json:"chat_id"`
	User       User    `json:"user"`
	UserLocale *string `json:"user_locale,omitempty"`
}

func (u *DialogUnmuted) IDs() (int64, int64) { return u.ChatID, u.User.UserID }

// DialogRemoved signals a user deleting their dialog with the bot.
type DialogRemoved struct {
	UpdateMeta

	ChatID     int64   `json:"chat_id"`
	User       User    `json:"user"`
	UserLocale *string `json:"user_locale,omitempty"`
}

func (u *DialogRemoved) IDs() (int64, int64) { return u.ChatID, u.User.UserID }
