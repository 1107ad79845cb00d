package types

// User is a MAX account as seen by the bot.
type User struct {
	UserID           int64   `json:"user_id"`
	FirstName        string  `json:"first_name"`
	LastName         *string `json:"last_name,omitempty"`
	Username         *string `json:"username,omitempty"`
	IsBot            bool    `json:"is_bot"`
	LastActivityTime int64   `json:"last_activity_time,omitempty"`
	Description      *string `json:"description,omitempty"`
	AvatarURL        *string `json:"avatar_url,omitempty"`
	FullAvatarURL    *string `json:"full_avatar_url,omitempty"`
}

// ChatPermission is a member capability inside a chat.
type ChatPermission string

const (
	PermissionReadAllMessages  ChatPermission = "read_all_messages"
	PermissionAddRemoveMembers ChatPermission = "add_remove_members"
	PermissionAddAdmins        ChatPermission = "add_admins"
	PermissionChangeChatInfo   ChatPermission = "change_chat_info"
	PermissionPinMessage       ChatPermission = "pin_message"
	PermissionWrite            ChatPermission = "write"
)

// ChatMember is a User plus membership attributes for one chat.
type ChatMember struct {
	User

	LastAccessTime int64            `json:"last_access_time,omitempty"`
	IsOwner        bool             `json:"is_owner,omitempty"`
	IsAdmin        bool             `json:"is_admin,omitempty"`
	JoinTime       int64            `json:"join_time,omitempty"`
	Permissions    []ChatPermission `json:"permissions,omitempty"`
	Alias          *string          `json:"alias,omitempty"`
}
