// Package models defines the server-side entities persisted by the document
// store: users, rooms and the messages in a room's log.
package models

import (
	"slices"
	"time"
)

// User is a registered account. Password holds a bcrypt hash, never the
// plain credential.
type User struct {
	UserName    string    `json:"username"`
	Password    string    `json:"password"`
	Avatar      string    `json:"avatar"`
	CreatedAt   time.Time `json:"created_at"`
	BannedRooms []string  `json:"banned_rooms"`
}

// IsBannedIn reports whether room is recorded in the user's ban list.
func (u *User) IsBannedIn(room string) bool {
	return slices.Contains(u.BannedRooms, room)
}

// AddBannedRoom records room in the ban list; it is a no-op if already there.
func (u *User) AddBannedRoom(room string) bool {
	if u.IsBannedIn(room) {
		return false
	}
	u.BannedRooms = append(u.BannedRooms, room)
	return true
}
