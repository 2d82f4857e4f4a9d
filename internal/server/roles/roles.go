// Package roles derives a user's role in a room and decides which
// moderation actions an actor may take. It is the single source of these
// rules for both the services and the REST layer.
package roles

import "github.com/dmitrijs2005/libertalk/internal/server/models"

// RoleOf returns the role of username in room. It looks only at the creator
// and the moderator list.
func RoleOf(room *models.Room, username string) models.Role {
	switch {
	case room.IsCreator(username):
		return models.RoleAdmin
	case room.IsModerator(username):
		return models.RoleModerator
	default:
		return models.RoleUser
	}
}

// CanModerate reports whether actor is the creator or a moderator of room.
func CanModerate(room *models.Room, actor string) bool {
	return room.IsCreator(actor) || room.IsModerator(actor)
}

// CanActOn reports whether actor may apply action to target in room.
//
// The creator is immune to everything. Moderators may only be banned or
// have their moderator status toggled by the creator. Anything else needs
// CanModerate.
func CanActOn(room *models.Room, actor, target string, action models.Action) bool {
	switch RoleOf(room, target) {
	case models.RoleAdmin:
		return false
	case models.RoleModerator:
		if action == models.ActionBan || action == models.ActionModerator {
			return room.IsCreator(actor)
		}
	}
	return CanModerate(room, actor)
}
