// Package common defines shared constants and sentinel errors used across
// the LiberTalk server layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorPersistence   = errors.New("persistence failure")

	// Service-level errors.
	ErrorInternal           = errors.New("internal error")
	ErrorUnauthorized       = errors.New("unauthorized")
	ErrorInvalidCredentials = errors.New("invalid login/password")
	ErrorDuplicateName      = errors.New("duplicate name")

	// ErrorBanned is returned when a banned user touches a room. It matches
	// ErrorUnauthorized as well.
	ErrorBanned = fmt.Errorf("%w: banned from room", ErrorUnauthorized)
	// ErrorLocked means the room password has not been entered in this session.
	ErrorLocked = fmt.Errorf("%w: room is locked", ErrorUnauthorized)

	// Message-specific errors.
	ErrorInvalidPayload = errors.New("invalid payload")
	ErrorNotEditable    = fmt.Errorf("%w: message kind is not editable", ErrorInvalidPayload)
	ErrorAlreadyVoted   = errors.New("already voted")
	ErrorInvalidOption  = errors.New("invalid option")

	// Media errors.
	ErrorUnsupportedType = errors.New("unsupported type")
	ErrorTooLarge        = errors.New("too large")

	// Auth errors (invalid or malformed token).
	ErrorInvalidToken = errors.New("invalid token")
)
