package models

import (
	"slices"
	"time"
)

// Visibility controls whether a room shows up in the open listing or only
// in search results.
type Visibility string

const (
	VisibilityOpen   Visibility = "open"
	VisibilityClosed Visibility = "closed"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	return v == VisibilityOpen || v == VisibilityClosed
}

// Room is a named chat channel with its moderation state and ordered log.
// Password, when set, is a bcrypt hash.
type Room struct {
	Name        string     `json:"name"`
	Visibility  Visibility `json:"type"`
	Password    string     `json:"password,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	Moderators  []string   `json:"moderators"`
	BannedUsers []string   `json:"banned_users"`
	Messages    []Message  `json:"messages"`
}

// NewRoom returns a room with empty moderator, ban and message collections.
func NewRoom(name string, visibility Visibility, passwordHash, creator string, now time.Time) *Room {
	return &Room{
		Name:        name,
		Visibility:  visibility,
		Password:    passwordHash,
		CreatedBy:   creator,
		CreatedAt:   now,
		Moderators:  []string{},
		BannedUsers: []string{},
		Messages:    []Message{},
	}
}

func (r *Room) HasPassword() bool { return r.Password != "" }

func (r *Room) IsCreator(username string) bool { return r.CreatedBy == username }

func (r *Room) IsModerator(username string) bool {
	return slices.Contains(r.Moderators, username)
}

func (r *Room) IsBanned(username string) bool {
	return slices.Contains(r.BannedUsers, username)
}

// RemoveModerator strips username from the moderators and reports whether
// anything changed.
func (r *Room) RemoveModerator(username string) bool {
	i := slices.Index(r.Moderators, username)
	if i < 0 {
		return false
	}
	r.Moderators = slices.Delete(r.Moderators, i, i+1)
	return true
}

// AddModerator adds username to the moderators unless already present.
func (r *Room) AddModerator(username string) bool {
	if r.IsModerator(username) {
		return false
	}
	r.Moderators = append(r.Moderators, username)
	return true
}

// Ban adds username to the ban list and revokes any moderator status.
func (r *Room) Ban(username string) {
	if !r.IsBanned(username) {
		r.BannedUsers = append(r.BannedUsers, username)
	}
	r.RemoveModerator(username)
}

// MessageIndex returns the position of the message with the given id, or -1.
func (r *Room) MessageIndex(id string) int {
	return slices.IndexFunc(r.Messages, func(m Message) bool { return m.ID == id })
}

// RemoveMessage deletes the message at index i keeping the order of the rest.
func (r *Room) RemoveMessage(i int) {
	r.Messages = slices.Delete(r.Messages, i, i+1)
}
