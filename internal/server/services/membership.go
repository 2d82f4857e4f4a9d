package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/dmitrijs2005/libertalk/internal/server/roles"
)

// Participant is one row of a room's admin view.
type Participant struct {
	Username string      `json:"username"`
	Avatar   string      `json:"avatar"`
	Role     models.Role `json:"role"`
	Banned   bool        `json:"banned"`
}

// Ban excludes target from the room and revokes any moderator status. The
// user's own ban list is updated afterwards on a best-effort basis.
func (s *RoomService) Ban(ctx context.Context, name, actor, target string) error {
	_, err := s.mutate(ctx, name, func(room *models.Room) error {
		if !roles.CanActOn(room, actor, target, models.ActionBan) {
			return common.ErrorUnauthorized
		}
		room.Ban(target)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "user banned", "room", name, "actor", actor, "target", target)
	if err := s.users.markBanned(ctx, target, name); err != nil {
		s.logger.Warn(ctx, "ban not recorded on user", "room", name, "target", target, "error", err)
	}
	return nil
}

// Kick strips target's moderator status. Sessions are left alone.
func (s *RoomService) Kick(ctx context.Context, name, actor, target string) error {
	_, err := s.mutate(ctx, name, func(room *models.Room) error {
		if !roles.CanActOn(room, actor, target, models.ActionKick) {
			return common.ErrorUnauthorized
		}
		room.RemoveModerator(target)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "user kicked", "room", name, "actor", actor, "target", target)
	return nil
}

// ToggleModerator promotes target, or demotes them if already a moderator.
// It reports whether target is a moderator afterwards.
func (s *RoomService) ToggleModerator(ctx context.Context, name, actor, target string) (bool, error) {
	var promoted bool
	_, err := s.mutate(ctx, name, func(room *models.Room) error {
		if !roles.CanActOn(room, actor, target, models.ActionModerator) {
			return common.ErrorUnauthorized
		}
		if room.RemoveModerator(target) {
			promoted = false
			return nil
		}
		if room.IsBanned(target) {
			return common.ErrorBanned
		}
		room.AddModerator(target)
		promoted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	s.logger.Info(ctx, "moderator toggled", "room", name, "actor", actor, "target", target, "moderator", promoted)
	return promoted, nil
}

// AdminAction dispatches a moderation action by name. Target is ignored
// for clear_chat.
func (s *RoomService) AdminAction(ctx context.Context, name, actor string, action models.Action, target string) error {
	switch action {
	case models.ActionBan:
		return s.Ban(ctx, name, actor, target)
	case models.ActionKick:
		return s.Kick(ctx, name, actor, target)
	case models.ActionModerator:
		_, err := s.ToggleModerator(ctx, name, actor, target)
		return err
	case models.ActionClearChat:
		return s.Clear(ctx, name, actor)
	default:
		return fmt.Errorf("%w: unknown action %q", common.ErrorInvalidPayload, action)
	}
}

// Participants lists the creator, moderators, banned users and message
// authors of the room, in that order of first appearance. Only moderators
// may see it.
func (s *RoomService) Participants(ctx context.Context, name, actor string) ([]Participant, error) {
	room, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !roles.CanModerate(room, actor) {
		return nil, common.ErrorUnauthorized
	}

	seen := make(map[string]struct{})
	var names []string
	add := func(username string) {
		if _, ok := seen[username]; ok || username == "" {
			return
		}
		seen[username] = struct{}{}
		names = append(names, username)
	}

	add(room.CreatedBy)
	for _, u := range room.Moderators {
		add(u)
	}
	for _, u := range room.BannedUsers {
		add(u)
	}
	for _, m := range room.Messages {
		add(m.Author)
	}

	out := make([]Participant, 0, len(names))
	for _, username := range names {
		avatar := common.DefaultAvatar
		user, err := s.users.Get(ctx, username)
		switch {
		case err == nil:
			avatar = user.Avatar
		case !errors.Is(err, common.ErrorNotFound):
			return nil, err
		}
		out = append(out, Participant{
			Username: username,
			Avatar:   avatar,
			Role:     roles.RoleOf(room, username),
			Banned:   room.IsBanned(username),
		})
	}
	return out, nil
}
