package fsm

import "context"

// StorageKey addresses one FSM record: the (chat, user) pair an update was
// routed by. A zero component stands for "not derivable from the update".
// Keys compare structurally, so the struct is usable as a map key.
type StorageKey struct {
	ChatID int64
	UserID int64
}

// Storage persists FSM records. Implementations must make UpdateData an
// atomic merge per key; all other mutations are last-write-wins.
type Storage interface {
	// GetData returns the stored data map, never nil.
	GetData(ctx context.Context, key StorageKey) (map[string]any, error)

	// SetData replaces the data map wholesale.
	SetData(ctx context.Context, key StorageKey, data map[string]any) error

	// UpdateData merges patch into the stored data, key by key.
	UpdateData(ctx context.Context, key StorageKey, patch map[string]any) error

	// SetState stores a state by canonical name. fsm.None resets it.
	SetState(ctx context.Context, key StorageKey, state State) error

	// GetState returns the stored canonical name, or "" when unset.
	GetState(ctx context.Context, key StorageKey) (string, error)

	// Clear removes both data and state for the key.
	Clear(ctx context.Context, key StorageKey) error

	// Close releases backend resources.
	Close() error
}
