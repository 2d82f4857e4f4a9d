package rest

import (
	"context"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/dmitrijs2005/libertalk/internal/server/roles"
)

type userView struct {
	Username    string    `json:"username"`
	Avatar      string    `json:"avatar"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
	BannedRooms []string  `json:"banned_rooms"`
}

// roomView never carries the password hash.
type roomView struct {
	Name        string            `json:"name"`
	Type        models.Visibility `json:"type"`
	Protected   bool              `json:"protected"`
	CreatedBy   string            `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	Role        models.Role       `json:"role"`
	Moderators  []string          `json:"moderators"`
	BannedUsers []string          `json:"banned_users,omitempty"`
}

type messageView struct {
	models.Message
	FileURL  string `json:"file_url,omitempty"`
	VoiceURL string `json:"voice_url,omitempty"`
}

func (s *HTTPServer) newUserView(ctx context.Context, u *models.User) userView {
	return userView{
		Username:    u.UserName,
		Avatar:      u.Avatar,
		AvatarURL:   s.mediaURL(ctx, u.Avatar),
		CreatedAt:   u.CreatedAt,
		BannedRooms: u.BannedRooms,
	}
}

func newRoomView(room *models.Room, viewer string) roomView {
	v := roomView{
		Name:       room.Name,
		Type:       room.Visibility,
		Protected:  room.HasPassword(),
		CreatedBy:  room.CreatedBy,
		CreatedAt:  room.CreatedAt,
		Role:       roles.RoleOf(room, viewer),
		Moderators: room.Moderators,
	}
	if roles.CanModerate(room, viewer) {
		v.BannedUsers = room.BannedUsers
	}
	return v
}

func (s *HTTPServer) newMessageView(ctx context.Context, m models.Message) messageView {
	v := messageView{Message: m}
	switch m.Kind {
	case models.KindText:
		if m.Text.File != nil {
			v.FileURL = s.mediaURL(ctx, m.Text.File.Path)
		}
	case models.KindVoice:
		v.VoiceURL = s.mediaURL(ctx, m.Voice.Path)
	}
	return v
}

// mediaURL resolves a stored path; the bundled default avatar and
// unresolvable paths are returned unchanged.
func (s *HTTPServer) mediaURL(ctx context.Context, path string) string {
	if path == "" || path == common.DefaultAvatar {
		return path
	}
	url, err := s.media.URL(ctx, path)
	if err != nil {
		s.logger.Warn(ctx, "media url failed", "path", path, "error", err)
		return path
	}
	return url
}
