// Package client implements the HTTP client for the MAX bot platform API.
// Every request is JSON over HTTPS with the access token as a query
// parameter; non-2xx responses surface as typed errors so the dispatch
// layer can tell a bad token from a flaky network.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/hrygo/maxbot/types"
)

const (
	// DefaultBaseURL is the production MAX bot API endpoint.
	DefaultBaseURL = "https://botapi.max.ru"

	defaultPollLimit   = 100
	defaultPollTimeout = 30

	maxPollLimit   = 1000
	maxPollTimeout = 90
)

// Bot is the MAX platform client. It is safe for concurrent use; the
// underlying http.Client pools connections.
type Bot struct {
	token      string
	baseURL    string
	httpClient *http.Client

	pollLimit   int
	pollTimeout int

	mu sync.RWMutex
	me *types.User
}

// Option configures a Bot.
type Option func(*Bot)

// WithBaseURL points the client at a different API host (tests, staging).
func WithBaseURL(baseURL string) Option {
	return func(b *Bot) { b.baseURL = baseURL }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Bot) { b.httpClient = c }
}

// WithPollLimit sets the getUpdates batch size (1-1000, default 100).
func WithPollLimit(limit int) Option {
	return func(b *Bot) { b.pollLimit = limit }
}

// WithPollTimeout sets the long-poll timeout in seconds (0-90, default 30).
func WithPollTimeout(seconds int) Option {
	return func(b *Bot) { b.pollTimeout = seconds }
}

// New creates a Bot for the given access token.
func New(token string, opts ...Option) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidParameters)
	}
	b := &Bot{
		token:       token,
		baseURL:     DefaultBaseURL,
		pollLimit:   defaultPollLimit,
		pollTimeout: defaultPollTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.pollLimit < 1 || b.pollLimit > maxPollLimit {
		return nil, fmt.Errorf("%w: poll limit %d out of range 1..%d",
			ErrInvalidParameters, b.pollLimit, maxPollLimit)
	}
	if b.pollTimeout < 0 || b.pollTimeout > maxPollTimeout {
		return nil, fmt.Errorf("%w: poll timeout %d out of range 0..%d",
			ErrInvalidParameters, b.pollTimeout, maxPollTimeout)
	}
	if b.httpClient == nil {
		// The client must outwait the long poll; the platform holds the
		// request up to pollTimeout seconds.
		b.httpClient = &http.Client{
			Timeout: time.Duration(b.pollTimeout+10) * time.Second,
		}
	}
	return b, nil
}

// Me returns the bot identity cached by GetMe, or nil before the first call.
func (b *Bot) Me() *types.User {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.me
}

// Close releases pooled connections. The Bot is unusable afterwards.
func (b *Bot) Close() {
	b.httpClient.CloseIdleConnections()
}

func (b *Bot) request(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", b.token)

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path+"?"+query.Encode(), reqBody)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrInvalidToken, string(raw))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &APIError{Code: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode %s response: %w", path, err)
	}
	return nil
}

// GetMe fetches and caches the bot identity.
func (b *Bot) GetMe(ctx context.Context) (*types.User, error) {
	var me types.User
	if err := b.request(ctx, http.MethodGet, "/me", nil, nil, &me); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.me = &me
	b.mu.Unlock()
	return &me, nil
}

// GetUpdates long-polls for the next batch of updates. A nil marker asks
// for everything new; otherwise the batch resumes after the marker.
func (b *Bot) GetUpdates(ctx context.Context, marker *int64) (*types.UpdateEnvelope, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(b.pollLimit))
	query.Set("timeout", strconv.Itoa(b.pollTimeout))
	if marker != nil {
		query.Set("marker", strconv.FormatInt(*marker, 10))
	}

	var envelope types.UpdateEnvelope
	if err := b.request(ctx, http.MethodGet, "/updates", query, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// GetSubscriptions lists registered webhook endpoints.
func (b *Bot) GetSubscriptions(ctx context.Context) ([]types.Subscription, error) {
	var out struct {
		Subscriptions []types.Subscription `json:"subscriptions"`
	}
	if err := b.request(ctx, http.MethodGet, "/subscriptions", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Subscriptions, nil
}

// GetChatByID fetches a chat for enrichment.
func (b *Bot) GetChatByID(ctx context.Context, chatID int64) (*types.Chat, error) {
	var chat types.Chat
	path := "/chats/" + strconv.FormatInt(chatID, 10)
	if err := b.request(ctx, http.MethodGet, path, nil, nil, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetChatMember resolves one member of a chat.
func (b *Bot) GetChatMember(ctx context.Context, chatID, userID int64) (*types.ChatMember, error) {
	query := url.Values{}
	query.Set("user_ids", strconv.FormatInt(userID, 10))

	var out struct {
		Members []types.ChatMember `json:"members"`
	}
	path := "/chats/" + strconv.FormatInt(chatID, 10) + "/members"
	if err := b.request(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Members) == 0 {
		return nil, fmt.Errorf("client: user %d is not a member of chat %d", userID, chatID)
	}
	member := out.Members[0]
	return &member, nil
}

var _ types.BotAPI = (*Bot)(nil)
