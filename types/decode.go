package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownUpdate marks an update_type this library does not know. The
// ingestion layer warns and skips such events instead of failing; new
// server-side variants must never stall the loop.
var ErrUnknownUpdate = errors.New("unknown update type")

// decoders is the dispatch table on the update_type tag.
var decoders = map[UpdateType]func() Update{
	UpdateMessageCreated:     func() Update { return &MessageCreated{} },
	UpdateMessageEdited:      func() Update { return &MessageEdited{} },
	UpdateMessageRemoved:     func() Update { return &MessageRemoved{} },
	UpdateMessageCallback:    func() Update { return &MessageCallback{} },
	UpdateMessageChatCreated: func() Update { return &MessageChatCreated{} },
	UpdateBotAdded:           func() Update { return &BotAdded{} },
	UpdateBotRemoved:         func() Update { return &BotRemoved{} },
	UpdateBotStarted:         func() Update { return &BotStarted{} },
	UpdateBotStopped:         func() Update { return &BotStopped{} },
	UpdateUserAdded:          func() Update { return &UserAdded{} },
	UpdateUserRemoved:        func() Update { return &UserRemoved{} },
	UpdateChatTitleChanged:   func() Update { return &ChatTitleChanged{} },
	UpdateDialogCleared:      func() Update { return &DialogCleared{} },
	UpdateDialogMuted:        func() Update { return &DialogMuted{} },
	UpdateDialogUnmuted:      func() Update { return &DialogUnmuted{} },
	UpdateDialogRemoved:      func() Update { return &DialogRemoved{} },
}

// DecodeUpdate turns one raw update object into its typed variant. An
// unrecognized update_type returns ErrUnknownUpdate (wrapped with the tag),
// never a panic.
func DecodeUpdate(data []byte) (Update, error) {
	var probe struct {
		UpdateType UpdateType `json:"update_type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("types: decode update envelope: %w", err)
	}

	newUpdate, ok := decoders[probe.UpdateType]
	if !ok {
		return nil, fmt.Errorf("types: update_type %q: %w", probe.UpdateType, ErrUnknownUpdate)
	}

	u := newUpdate()
	if err := json.Unmarshal(data, u); err != nil {
		return nil, fmt.Errorf("types: decode %s: %w", probe.UpdateType, err)
	}
	return u, nil
}
