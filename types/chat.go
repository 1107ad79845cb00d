package types

// ChatType discriminates dialogs from multi-user chats and channels.
type ChatType string

const (
	ChatTypeDialog  ChatType = "dialog"
	ChatTypeChat    ChatType = "chat"
	ChatTypeChannel ChatType = "channel"
)

// ChatStatus is the bot's standing in a chat.
type ChatStatus string

const (
	ChatStatusActive    ChatStatus = "active"
	ChatStatusRemoved   ChatStatus = "removed"
	ChatStatusLeft      ChatStatus = "left"
	ChatStatusClosed    ChatStatus = "closed"
	ChatStatusSuspended ChatStatus = "suspended"
)

// Icon is a chat avatar reference.
type Icon struct {
	URL string `json:"url"`
}

// Chat is a conversation the bot participates in.
type Chat struct {
	ChatID            int64            `json:"chat_id"`
	Type              ChatType         `json:"type"`
	Status            ChatStatus       `json:"status"`
	Title             *string          `json:"title,omitempty"`
	Icon              *Icon            `json:"icon,omitempty"`
	LastEventTime     int64            `json:"last_event_time"`
	ParticipantsCount int64            `json:"participants_count"`
	OwnerID           int64            `json:"owner_id,omitempty"`
	Participants      map[string]int64 `json:"participants,omitempty"`
	IsPublic          bool             `json:"is_public"`
	Link              *string          `json:"link,omitempty"`
	Description       *string          `json:"description,omitempty"`
	DialogWithUser    *User            `json:"dialog_with_user,omitempty"`
	MessagesCount     *int64           `json:"messages_count,omitempty"`
	ChatMessageID     *string          `json:"chat_message_id,omitempty"`
	PinnedMessage     *Message         `json:"pinned_message,omitempty"`
}

// Subscription is one registered webhook endpoint.
type Subscription struct {
	URL         string   `json:"url"`
	Time        int64    `json:"time,omitempty"`
	UpdateTypes []string `json:"update_types,omitempty"`
	Version     string   `json:"version,omitempty"`
}
