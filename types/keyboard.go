package types

import "encoding/json"

// Inline-keyboard construction for outbound messages.

// ButtonIntent colors a callback button.
type ButtonIntent string

const (
	IntentDefault  ButtonIntent = "default"
	IntentPositive ButtonIntent = "positive"
	IntentNegative ButtonIntent = "negative"
)

// Button is one inline-keyboard button.
type Button struct {
	Type    string       `json:"type"`
	Text    string       `json:"text"`
	Payload string       `json:"payload,omitempty"`
	URL     string       `json:"url,omitempty"`
	Intent  ButtonIntent `json:"intent,omitempty"`
}

// CallbackButton sends its payload back as a message_callback update.
func CallbackButton(text, payload string) Button {
	return Button{Type: "callback", Text: text, Payload: payload, Intent: IntentDefault}
}

// LinkButton opens a URL.
func LinkButton(text, url string) Button {
	return Button{Type: "link", Text: text, URL: url}
}

// RequestContactButton asks the user to share their contact.
func RequestContactButton(text string) Button {
	return Button{Type: "request_contact", Text: text}
}

// InlineKeyboardBuilder accumulates buttons into rows and renders them as a
// keyboard attachment.
type InlineKeyboardBuilder struct {
	rows [][]Button
}

// NewInlineKeyboard starts an empty builder with one open row.
func NewInlineKeyboard() *InlineKeyboardBuilder {
	return &InlineKeyboardBuilder{rows: [][]Button{{}}}
}

// Row starts a new row and returns the builder for chaining.
func (b *InlineKeyboardBuilder) Row(buttons ...Button) *InlineKeyboardBuilder {
	if len(b.rows) == 1 && len(b.rows[0]) == 0 {
		b.rows[0] = append(b.rows[0], buttons...)
		return b
	}
	b.rows = append(b.rows, buttons)
	return b
}

// Add appends buttons to the current row.
func (b *InlineKeyboardBuilder) Add(buttons ...Button) *InlineKeyboardBuilder {
	last := len(b.rows) - 1
	b.rows[last] = append(b.rows[last], buttons...)
	return b
}

// AsAttachment renders the keyboard as a message attachment.
func (b *InlineKeyboardBuilder) AsAttachment() Attachment {
	payload, _ := json.Marshal(struct {
		Buttons [][]Button `json:"buttons"`
	}{Buttons: b.rows})
	return Attachment{Type: AttachmentInlineKeyboard, Payload: payload}
}
