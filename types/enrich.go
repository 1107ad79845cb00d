package types

import (
	"context"
	"log/slog"
)

// Enrich attaches the full Chat and the acting user to a freshly decoded
// update via API lookups, and installs the bot back-reference. Lookup
// failures are logged and skipped: the update is still dispatched with
// whichever fields resolved.
func Enrich(ctx context.Context, bot BotAPI, u Update) {
	m := u.meta()
	m.bot = bot

	switch ev := u.(type) {
	case *MessageCreated:
		m.chat = lookupChat(ctx, bot, ev.Message.Recipient.ChatID)
		sender := ev.Message.Sender
		m.fromUser = &sender
	case *MessageEdited:
		m.chat = lookupChat(ctx, bot, ev.Message.Recipient.ChatID)
		sender := ev.Message.Sender
		m.fromUser = &sender
	case *MessageCallback:
		if ev.Message != nil {
			m.chat = lookupChat(ctx, bot, ev.Message.Recipient.ChatID)
		}
		user := ev.Callback.User
		m.fromUser = &user
	case *MessageRemoved:
		m.chat = lookupChat(ctx, bot, ev.ChatID)
		m.fromUser = lookupMember(ctx, bot, ev.ChatID, ev.UserID)
	case *UserRemoved:
		m.chat = lookupChat(ctx, bot, ev.ChatID)
		if ev.AdminID != nil {
			m.fromUser = lookupMember(ctx, bot, ev.ChatID, *ev.AdminID)
		}
	case *UserAdded:
		m.chat = lookupChat(ctx, bot, ev.ChatID)
		user := ev.User
		m.fromUser = &user
	case *BotAdded:
		m.chat = lookupChat(ctx, bot, ev.ChatID)
		user := ev.User
		m.fromUser = &user
	case *BotRemoved:
		m.chat = lookupChat(ctx, bot, ev.ChatID)
		user := ev.User
		m.fromUser = &user
	case *BotStarted:
		m.chat = lookupChat(ctx, bot, ev.ChatID)
		user := ev.User
		m.fromUser = &user
	case *BotStopped:
		m.chat = lookupChat(ctx, bot, ev.ChatID)
		user := ev.User
		m.fromUser = &user
	case *ChatTitleChanged:
		m.chat = lookupChat(ctx, bot, ev.ChatID)
		user := ev.User
		m.fromUser = &user
	case *DialogCleared:
		m.chat = lookupChat(ctx, bot, ev.ChatID)
		user := ev.User
		m.fromUser = &user
	case *DialogMuted:
		m.chat = lookupChat(ctx, bot, ev.ChatID)
		user := ev.User
		m.fromUser = &user
	case *DialogUnmuted:
		m.chat = lookupChat(ctx, bot, ev.ChatID)
		user := ev.User
		m.fromUser = &user
	case *DialogRemoved:
		m.chat = lookupChat(ctx, bot, ev.ChatID)
		user := ev.User
		m.fromUser = &user
	case *MessageChatCreated:
		chat := ev.ChatObj
		m.chat = &chat
	}
}

// AttachBot installs only the bot back-reference, for when auto requests
// are disabled.
func AttachBot(bot BotAPI, u Update) {
	u.meta().bot = bot
}

func lookupChat(ctx context.Context, bot BotAPI, chatID int64) *Chat {
	if chatID == 0 {
		return nil
	}
	chat, err := bot.GetChatByID(ctx, chatID)
	if err != nil {
		slog.Warn("types: enrichment chat lookup failed", "chat_id", chatID, "error", err)
		return nil
	}
	return chat
}

func lookupMember(ctx context.Context, bot BotAPI, chatID, userID int64) *User {
	if chatID == 0 || userID == 0 {
		return nil
	}
	member, err := bot.GetChatMember(ctx, chatID, userID)
	if err != nil {
		slog.Warn("types: enrichment member lookup failed",
			"chat_id", chatID, "user_id", userID, "error", err)
		return nil
	}
	return &member.User
}
