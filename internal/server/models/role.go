package models

// Role is a user's standing in one room. It is derived from the room record
// and never stored on its own, except as a snapshot on posted messages.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Action names a moderation action taken against a target user.
type Action string

const (
	ActionNone      Action = "none"
	ActionBan       Action = "ban"
	ActionKick      Action = "kick"
	ActionModerator Action = "moderator"
	ActionClearChat Action = "clear_chat"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionNone, ActionBan, ActionKick, ActionModerator, ActionClearChat:
		return true
	}
	return false
}
