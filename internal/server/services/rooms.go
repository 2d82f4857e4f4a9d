package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/dmitrijs2005/libertalk/internal/cryptox"
	"github.com/dmitrijs2005/libertalk/internal/logging"
	"github.com/dmitrijs2005/libertalk/internal/server/config"
	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/dmitrijs2005/libertalk/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// RoomService owns the room registry, every room's message log and the
// membership rules. All writes to one room are serialized by a per-room lock
// held across load, mutate and save.
type RoomService struct {
	repomanager      repomanager.RepositoryManager
	users            *UserService
	gate             *AccessGate
	logger           logging.Logger
	locks            *keyedMutex
	maxVoiceDuration time.Duration
	now              func() time.Time
	newID            func() string

	// hashCost is the bcrypt cost of room passwords; zero selects
	// bcrypt.DefaultCost.
	hashCost int
}

func NewRoomService(m repomanager.RepositoryManager, users *UserService, gate *AccessGate, cfg *config.Config, logger logging.Logger) *RoomService {
	return &RoomService{
		repomanager:      m,
		users:            users,
		gate:             gate,
		logger:           logger.With("module", "rooms"),
		locks:            newKeyedMutex(),
		maxVoiceDuration: cfg.MaxVoiceDuration,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
	}
}

// Create registers a room owned by creator. A non-empty password is stored
// hashed and makes the room require Unlock.
func (s *RoomService) Create(ctx context.Context, name string, visibility models.Visibility, password, creator string) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: room name is required", common.ErrorInvalidPayload)
	}
	if !visibility.Valid() {
		return nil, fmt.Errorf("%w: unknown room type %q", common.ErrorInvalidPayload, visibility)
	}

	var hash string
	if password != "" {
		var err error
		if hash, err = cryptox.HashPassword(password, s.hashCost); err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
	}

	room := models.NewRoom(name, visibility, hash, creator, s.now())
	if err := s.repomanager.Rooms().Create(ctx, room); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("%w: room %q", common.ErrorDuplicateName, name)
		}
		return nil, err
	}

	s.logger.Info(ctx, "room created", "room", name, "creator", creator, "type", visibility)
	return room, nil
}

func (s *RoomService) Get(ctx context.Context, name string) (*models.Room, error) {
	return s.repomanager.Rooms().Get(ctx, name)
}

// ListOpen yields open rooms in name order, skipping those that banned
// excluding.
func (s *RoomService) ListOpen(ctx context.Context, excluding string) (iter.Seq[*models.Room], error) {
	list, err := s.repomanager.Rooms().List(ctx)
	if err != nil {
		return nil, err
	}

	return func(yield func(*models.Room) bool) {
		for _, room := range list {
			if room.Visibility != models.VisibilityOpen || room.IsBanned(excluding) {
				continue
			}
			if !yield(room) {
				return
			}
		}
	}, nil
}

// SearchClosed returns closed rooms whose name contains term, ignoring case.
// An empty term matches every closed room.
func (s *RoomService) SearchClosed(ctx context.Context, term, excluding string) ([]*models.Room, error) {
	list, err := s.repomanager.Rooms().List(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]*models.Room, 0)
	for _, room := range list {
		if room.Visibility != models.VisibilityClosed || room.IsBanned(excluding) {
			continue
		}
		if strings.Contains(strings.ToLower(room.Name), term) {
			out = append(out, room)
		}
	}
	return out, nil
}

// Unlock checks the room password and grants the session access to it.
func (s *RoomService) Unlock(ctx context.Context, session, name, actor, password string) error {
	room, err := s.Get(ctx, name)
	if err != nil {
		return err
	}
	if room.IsBanned(actor) {
		return common.ErrorBanned
	}
	if !room.HasPassword() {
		return nil
	}

	ok, err := cryptox.CheckPassword(room.Password, password)
	if err != nil {
		s.logger.Warn(ctx, "room password hash unreadable", "room", name, "error", err)
	}
	if !ok {
		return common.ErrorInvalidCredentials
	}

	s.gate.Grant(session, name)
	s.logger.Debug(ctx, "room unlocked", "room", name, "username", actor)
	return nil
}

// Enter returns the room if actor may view it in this session: not banned,
// and the password already entered when the room has one.
func (s *RoomService) Enter(ctx context.Context, session, name, actor string) (*models.Room, error) {
	room, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(session, room, actor); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *RoomService) checkAccess(session string, room *models.Room, actor string) error {
	if room.IsBanned(actor) {
		return common.ErrorBanned
	}
	if room.HasPassword() && !s.gate.HasAccess(session, room.Name) {
		return common.ErrorLocked
	}
	return nil
}

// mutate runs load, fn, save under the room's lock. Nothing is written when
// fn fails.
func (s *RoomService) mutate(ctx context.Context, name string, fn func(*models.Room) error) (*models.Room, error) {
	unlock := s.locks.Lock(name)
	defer unlock()

	repo := s.repomanager.Rooms()
	room, err := repo.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := fn(room); err != nil {
		return nil, err
	}

	if err := repo.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}
