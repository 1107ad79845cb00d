package types

// Recipient names where a message was delivered: a chat and, for dialogs,
// the counterpart user.
type Recipient struct {
	ChatID   int64    `json:"chat_id"`
	ChatType ChatType `json:"chat_type"`
	UserID   int64    `json:"user_id,omitempty"`
}

// MessageBody carries the payload of a message.
type MessageBody struct {
	Mid         string          `json:"mid"`
	Seq         int64           `json:"seq"`
	Text        *string         `json:"text,omitempty"`
	Attachments []Attachment    `json:"attachments,omitempty"`
	Markup      []MarkupElement `json:"markup,omitempty"`
}

// MarkupElement is a formatting span inside the message text.
type MarkupElement struct {
	Type   string `json:"type"`
	From   int    `json:"from"`
	Length int    `json:"length"`
}

// MessageStat holds view counters for channel posts.
type MessageStat struct {
	Views int64 `json:"views"`
}

// LinkedMessage is a forwarded or replied-to message reference.
type LinkedMessage struct {
	Type    string       `json:"type"`
	Sender  *User        `json:"sender,omitempty"`
	ChatID  int64        `json:"chat_id,omitempty"`
	Message *MessageBody `json:"message,omitempty"`
}

// Message is a delivered chat message.
type Message struct {
	Sender    User           `json:"sender"`
	Recipient Recipient      `json:"recipient"`
	Timestamp int64          `json:"timestamp"`
	Link      *LinkedMessage `json:"link,omitempty"`
	Body      MessageBody    `json:"body"`
	Stat      *MessageStat   `json:"stat,omitempty"`
	URL       *string        `json:"url,omitempty"`
}

// Text returns the body text, or "" when the message has none.
func (m *Message) Text() string {
	if m == nil || m.Body.Text == nil {
		return ""
	}
	return *m.Body.Text
}

// Callback is an inline-button press.
type Callback struct {
	Timestamp  int64  `json:"timestamp"`
	CallbackID string `json:"callback_id"`
	Payload    string `json:"payload,omitempty"`
	User       User   `json:"user"`
}
