package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/maxbot/types"
)

// Outbound surface beyond the dispatch core: sending, callback answers and
// webhook subscription management.

// ParseMode selects server-side text formatting.
type ParseMode string

const (
	ParseMarkdown ParseMode = "markdown"
	ParseHTML     ParseMode = "html"
)

// NewMessage is the body of a send request.
type NewMessage struct {
	Text        *string              `json:"text,omitempty"`
	Attachments []types.Attachment   `json:"attachments,omitempty"`
	Link        *types.LinkedMessage `json:"link,omitempty"`
	Notify      *bool                `json:"notify,omitempty"`
	Format      *ParseMode           `json:"format,omitempty"`
}

// SendOption adjusts an outbound message.
type SendOption func(*NewMessage)

// WithAttachments adds attachments (keyboards, media tokens).
func WithAttachments(atts ...types.Attachment) SendOption {
	return func(m *NewMessage) { m.Attachments = append(m.Attachments, atts...) }
}

// WithFormat sets the parse mode for this message.
func WithFormat(mode ParseMode) SendOption {
	return func(m *NewMessage) { m.Format = &mode }
}

// Silent suppresses the recipient's notification.
func Silent() SendOption {
	notify := false
	return func(m *NewMessage) { m.Notify = &notify }
}

// SendMessage sends text to a chat (chatID) or directly to a user (userID).
// Exactly one of the two ids must be non-zero.
func (b *Bot) SendMessage(ctx context.Context, chatID, userID int64, text string, opts ...SendOption) (*types.Message, error) {
	if (chatID == 0) == (userID == 0) {
		return nil, fmt.Errorf("%w: exactly one of chat_id/user_id required", ErrInvalidParameters)
	}

	query := url.Values{}
	if chatID != 0 {
		query.Set("chat_id", strconv.FormatInt(chatID, 10))
	}
	if userID != 0 {
		query.Set("user_id", strconv.FormatInt(userID, 10))
	}

	body := NewMessage{Text: &text}
	for _, opt := range opts {
		opt(&body)
	}

	var out struct {
		Message types.Message `json:"message"`
	}
	if err := b.request(ctx, http.MethodPost, "/messages", query, body, &out); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

// CallbackAnswer replaces the origin message and/or raises a notification
// in response to an inline-button press.
type CallbackAnswer struct {
	Message      *NewMessage `json:"message,omitempty"`
	Notification *string     `json:"notification,omitempty"`
}

// AnswerCallback responds to a message_callback update.
func (b *Bot) AnswerCallback(ctx context.Context, callbackID string, answer CallbackAnswer) error {
	query := url.Values{}
	query.Set("callback_id", callbackID)
	return b.request(ctx, http.MethodPost, "/answers", query, answer, nil)
}

// Subscribe registers a webhook endpoint with the platform.
func (b *Bot) Subscribe(ctx context.Context, webhookURL string, updateTypes ...types.UpdateType) error {
	body := struct {
		URL         string             `json:"url"`
		UpdateTypes []types.UpdateType `json:"update_types,omitempty"`
	}{URL: webhookURL, UpdateTypes: updateTypes}
	return b.request(ctx, http.MethodPost, "/subscriptions", nil, body, nil)
}

// Unsubscribe removes one webhook endpoint.
func (b *Bot) Unsubscribe(ctx context.Context, webhookURL string) error {
	query := url.Values{}
	query.Set("url", webhookURL)
	return b.request(ctx, http.MethodDelete, "/subscriptions", query, nil, nil)
}

// DeleteWebhook removes every registered webhook subscription. Individual
// failures are logged and do not stop the sweep; the first error is
// returned after all removals were attempted.
func (b *Bot) DeleteWebhook(ctx context.Context) error {
	subs, err := b.GetSubscriptions(ctx)
	if err != nil {
		return err
	}

	var g errgroup.Group
	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			if err := b.Unsubscribe(ctx, sub.URL); err != nil {
				slog.Warn("client: unsubscribe failed", "url", sub.URL, "error", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
