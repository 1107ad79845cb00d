package fsm

import "context"

// Context is a thin facade binding a Storage to one StorageKey. The
// dispatcher hands every handler the Context for the update's routing key.
type Context struct {
	storage Storage
	key     StorageKey
}

// NewContext binds storage to a key.
func NewContext(storage Storage, key StorageKey) *Context {
	return &Context{storage: storage, key: key}
}

// Key returns the addressed (chat, user) pair.
func (c *Context) Key() StorageKey { return c.key }

// GetData returns the current data map, never nil.
func (c *Context) GetData(ctx context.Context) (map[string]any, error) {
	return c.storage.GetData(ctx, c.key)
}

// SetData replaces the data map wholesale.
func (c *Context) SetData(ctx context.Context, data map[string]any) error {
	return c.storage.SetData(ctx, c.key, data)
}

// UpdateData merges patch into the data map atomically.
func (c *Context) UpdateData(ctx context.Context, patch map[string]any) error {
	return c.storage.UpdateData(ctx, c.key, patch)
}

// SetState stores the state's canonical name. fsm.None resets it.
func (c *Context) SetState(ctx context.Context, state State) error {
	return c.storage.SetState(ctx, c.key, state)
}

// GetState returns the stored canonical name, or "" when unset.
func (c *Context) GetState(ctx context.Context) (string, error) {
	return c.storage.GetState(ctx, c.key)
}

// Clear removes data and state together.
func (c *Context) Clear(ctx context.Context) error {
	return c.storage.Clear(ctx, c.key)
}
