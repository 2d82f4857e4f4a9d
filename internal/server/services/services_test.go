package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/logging"
	"github.com/dmitrijs2005/libertalk/internal/server/config"
	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/dmitrijs2005/libertalk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/libertalk/internal/server/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	users *UserService
	rooms *RoomService
	gate  *AccessGate
	repos repomanager.RepositoryManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, storage.NewMemoryStore())
}

func newTestEnvWithStore(t *testing.T, store storage.Store) *testEnv {
	t.Helper()

	cfg := &config.Config{
		SecretKey:               "k",
		SessionValidityDuration: time.Hour,
		MaxVoiceDuration:        30 * time.Second,
	}
	repos := repomanager.NewDocumentRepositoryManager(store, repomanager.RetryPolicy{Retries: 1, Base: time.Millisecond})
	gate := NewAccessGate()
	logger := logging.NewNopLogger()

	users := NewUserService(repos, gate, cfg, logger)
	users.hashCost = bcrypt.MinCost
	rooms := NewRoomService(repos, users, gate, cfg, logger)
	rooms.hashCost = bcrypt.MinCost

	return &testEnv{users: users, rooms: rooms, gate: gate, repos: repos}
}

func (e *testEnv) register(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := e.users.Register(context.Background(), name, "pw-"+name, name+".jpg")
		require.NoError(t, err)
	}
}

func (e *testEnv) room(t *testing.T, name string) *models.Room {
	t.Helper()
	room, err := e.rooms.Get(context.Background(), name)
	require.NoError(t, err)
	return room
}

func (e *testEnv) postText(t *testing.T, room, author, body string) *models.Message {
	t.Helper()
	msg, err := e.rooms.Post(context.Background(), room, author, models.TextPayload{Body: body})
	require.NoError(t, err)
	return msg
}
