// Package services contains the server-side business logic: accounts and
// sessions (UserService) and rooms with their message logs and moderation
// (RoomService).
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/dmitrijs2005/libertalk/internal/cryptox"
	"github.com/dmitrijs2005/libertalk/internal/logging"
	"github.com/dmitrijs2005/libertalk/internal/server/auth"
	"github.com/dmitrijs2005/libertalk/internal/server/config"
	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/dmitrijs2005/libertalk/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Session is what a successful login hands back to the web layer.
type Session struct {
	Token     string
	SessionID string
	User      *models.User
}

// UserService provides registration, login and profile updates.
type UserService struct {
	repomanager             repomanager.RepositoryManager
	gate                    *AccessGate
	logger                  logging.Logger
	locks                   *keyedMutex
	jwtSecret               []byte
	sessionValidityDuration time.Duration
	now                     func() time.Time

	// hashCost is the bcrypt cost; zero selects bcrypt.DefaultCost.
	hashCost int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(m repomanager.RepositoryManager, gate *AccessGate, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		repomanager:             m,
		gate:                    gate,
		logger:                  logger.With("module", "users"),
		locks:                   newKeyedMutex(),
		jwtSecret:               []byte(cfg.SecretKey),
		sessionValidityDuration: cfg.SessionValidityDuration,
		now:                     func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a new account. An empty avatar selects the default one.
func (s *UserService) Register(ctx context.Context, username, password, avatar string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorInvalidPayload)
	}
	if avatar == "" {
		avatar = common.DefaultAvatar
	}

	hash, err := cryptox.HashPassword(password, s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		UserName:    username,
		Password:    hash,
		Avatar:      avatar,
		CreatedAt:   s.now(),
		BannedRooms: []string{},
	}
	if err := s.repomanager.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "username", username)
	return user, nil
}

// Login verifies credentials and opens a new session.
func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.repomanager.Users().Get(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, err
	}

	ok, err := cryptox.CheckPassword(user.Password, password)
	if err != nil {
		s.logger.Warn(ctx, "stored password hash unreadable", "username", user.UserName, "error", err)
	}
	if !ok {
		return nil, common.ErrorInvalidCredentials
	}

	sessionID := uuid.NewString()
	token, err := auth.GenerateToken(user.UserName, sessionID, s.jwtSecret, s.sessionValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	if err := s.gate.Open(sessionID, s.now().Add(s.sessionValidityDuration)); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user logged in", "username", user.UserName, "session", sessionID)
	return &Session{Token: token, SessionID: sessionID, User: user}, nil
}

// Authenticate validates a session token and returns its username and
// session id. Tokens of sessions ended by Logout are rejected with
// common.ErrorInvalidToken.
func (s *UserService) Authenticate(token string) (string, string, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return "", "", err
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := s.gate.Open(claims.ID, expires); err != nil {
		return "", "", err
	}
	return claims.Username, claims.ID, nil
}

// Logout ends the session: its token stops authenticating and every room
// unlocked with it is locked again.
func (s *UserService) Logout(ctx context.Context, sessionID string) {
	s.gate.End(sessionID)
	s.logger.Debug(ctx, "session ended", "session", sessionID)
}

func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	return s.repomanager.Users().Get(ctx, username)
}

// UpdateAvatar points the user at a new avatar. Messages already posted keep
// the avatar they were stamped with.
func (s *UserService) UpdateAvatar(ctx context.Context, username, avatar string) (*models.User, error) {
	if avatar == "" {
		return nil, fmt.Errorf("%w: empty avatar", common.ErrorInvalidPayload)
	}

	return s.mutate(ctx, username, func(u *models.User) (bool, error) {
		u.Avatar = avatar
		return true, nil
	})
}

// markBanned records room in the user's ban list.
func (s *UserService) markBanned(ctx context.Context, username, room string) error {
	_, err := s.mutate(ctx, username, func(u *models.User) (bool, error) {
		return u.AddBannedRoom(room), nil
	})
	return err
}

// mutate runs load, fn, save under the user's lock. fn reports whether the
// record changed.
func (s *UserService) mutate(ctx context.Context, username string, fn func(*models.User) (bool, error)) (*models.User, error) {
	unlock := s.locks.Lock(username)
	defer unlock()

	repo := s.repomanager.Users()
	user, err := repo.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	changed, err := fn(user)
	if err != nil || !changed {
		return user, err
	}

	if err := repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
