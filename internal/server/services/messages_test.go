package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/dmitrijs2005/libertalk/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLounge(t *testing.T, env *testEnv) {
	t.Helper()
	env.register(t, "alice", "bob", "mod")
	_, err := env.rooms.Create(context.Background(), "lounge", models.VisibilityOpen, "", "alice")
	require.NoError(t, err)
	_, err = env.rooms.ToggleModerator(context.Background(), "lounge", "alice", "mod")
	require.NoError(t, err)
}

func TestRoomService_PostStampsAuthor(t *testing.T) {
	env := newTestEnv(t)
	setupLounge(t, env)

	msg := env.postText(t, "lounge", "mod", "  hello  ")

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, models.KindText, msg.Kind)
	assert.Equal(t, "hello", msg.Text.Body)
	assert.Equal(t, "mod", msg.Author)
	assert.Equal(t, "mod.jpg", msg.Avatar)
	assert.Equal(t, models.RoleModerator, msg.Role)
	assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Minute)
	assert.Equal(t, time.UTC, msg.Timestamp.Location())

	room := env.room(t, "lounge")
	require.Len(t, room.Messages, 1)
	assert.Equal(t, *msg, room.Messages[0])
}

func TestRoomService_PostValidation(t *testing.T) {
	env := newTestEnv(t)
	setupLounge(t, env)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload models.Payload
		check   func(t *testing.T, m *models.Message)
		wantErr error
	}{
		{name: "empty text", payload: models.TextPayload{Body: "   "}, wantErr: common.ErrorInvalidPayload},
		{name: "file only", payload: models.TextPayload{File: &models.Attachment{Name: "a.pdf", Path: "p"}},
			check: func(t *testing.T, m *models.Message) { assert.Equal(t, "a.pdf", m.Text.File.Name) }},
		{name: "voice without path", payload: models.VoicePayload{Duration: time.Second}, wantErr: common.ErrorInvalidPayload},
		{name: "voice too long", payload: models.VoicePayload{Path: "v.ogg", Duration: time.Minute}, wantErr: common.ErrorInvalidPayload},
		{name: "voice negative", payload: models.VoicePayload{Path: "v.ogg", Duration: -time.Second}, wantErr: common.ErrorInvalidPayload},
		{name: "voice unknown duration", payload: models.VoicePayload{Path: "v.ogg"},
			check: func(t *testing.T, m *models.Message) { assert.Equal(t, 30*time.Second, m.Voice.Duration.Duration) }},
		{name: "voice ok", payload: models.VoicePayload{Path: "v.ogg", Duration: 12 * time.Second},
			check: func(t *testing.T, m *models.Message) { assert.Equal(t, 12*time.Second, m.Voice.Duration.Duration) }},
		{name: "poll no question", payload: models.PollPayload{Question: " ", Options: []string{"a", "b"}}, wantErr: common.ErrorInvalidPayload},
		{name: "poll one real option", payload: models.PollPayload{Question: "q", Options: []string{"a", "  ", ""}}, wantErr: common.ErrorInvalidPayload},
		{name: "poll trims options", payload: models.PollPayload{Question: " lunch? ", Options: []string{" pizza ", "", "sushi"}},
			check: func(t *testing.T, m *models.Message) {
				assert.Equal(t, "lunch?", m.Poll.Question)
				require.Len(t, m.Poll.Options, 2)
				assert.Equal(t, "pizza", m.Poll.Options[0].Text)
				assert.Equal(t, "sushi", m.Poll.Options[1].Text)
				assert.Zero(t, m.Poll.TotalVotes)
			}},
		{name: "nil payload", payload: nil, wantErr: common.ErrorInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(env.room(t, "lounge").Messages)

			msg, err := env.rooms.Post(ctx, "lounge", "bob", tt.payload)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Len(t, env.room(t, "lounge").Messages, before, "nothing appended")
				return
			}
			require.NoError(t, err)
			require.NoError(t, msg.CheckShape())
			tt.check(t, msg)
		})
	}
}

func TestRoomService_PostErrors(t *testing.T) {
	env := newTestEnv(t)
	setupLounge(t, env)
	ctx := context.Background()

	_, err := env.rooms.Post(ctx, "nowhere", "bob", models.TextPayload{Body: "x"})
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = env.rooms.Post(ctx, "lounge", "ghost", models.TextPayload{Body: "x"})
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, env.rooms.Ban(ctx, "lounge", "alice", "bob"))
	_, err = env.rooms.Post(ctx, "lounge", "bob", models.TextPayload{Body: "x"})
	require.ErrorIs(t, err, common.ErrorBanned)

	_, err = env.rooms.Messages(ctx, "lounge", "bob")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRoomService_ConcurrentPosts(t *testing.T) {
	for _, backend := range []string{"memory", "file"} {
		t.Run(backend, func(t *testing.T) {
			var store storage.Store = storage.NewMemoryStore()
			if backend == "file" {
				fs, err := storage.NewFileStore(t.TempDir())
				require.NoError(t, err)
				store = fs
			}
			env := newTestEnvWithStore(t, store)
			ctx := context.Background()

			env.register(t, "alice")
			_, err := env.rooms.Create(ctx, "busy", models.VisibilityOpen, "", "alice")
			require.NoError(t, err)

			const n = 100
			authors := make([]string, n)
			for i := range authors {
				authors[i] = fmt.Sprintf("user%03d", i)
				require.NoError(t, env.repos.Users().Create(ctx, &models.User{UserName: authors[i], Avatar: "a.jpg"}))
			}

			var wg sync.WaitGroup
			errs := make(chan error, n)
			for _, author := range authors {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := env.rooms.Post(ctx, "busy", author, models.TextPayload{Body: "hi from " + author})
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			room := env.room(t, "busy")
			require.Len(t, room.Messages, n)
			ids := make(map[string]struct{}, n)
			for _, m := range room.Messages {
				ids[m.ID] = struct{}{}
			}
			assert.Len(t, ids, n)
		})
	}
}

func TestRoomService_Edit(t *testing.T) {
	env := newTestEnv(t)
	setupLounge(t, env)
	ctx := context.Background()

	msg := env.postText(t, "lounge", "bob", "typo")
	poll, err := env.rooms.Post(ctx, "lounge", "bob", models.PollPayload{Question: "q", Options: []string{"a", "b"}})
	require.NoError(t, err)

	_, err = env.rooms.Edit(ctx, "lounge", "bob", msg.ID, "fixed")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	edited, err := env.rooms.Edit(ctx, "lounge", "mod", msg.ID, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", edited.Text.Body)
	assert.True(t, edited.Edited)
	require.NotNil(t, edited.EditedAt)

	stored := env.room(t, "lounge").Messages[0]
	assert.Equal(t, "fixed", stored.Text.Body)
	assert.True(t, stored.Edited)

	_, err = env.rooms.Edit(ctx, "lounge", "alice", "missing", "x")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = env.rooms.Edit(ctx, "lounge", "alice", poll.ID, "x")
	require.ErrorIs(t, err, common.ErrorNotEditable)
	require.ErrorIs(t, err, common.ErrorInvalidPayload)

	_, err = env.rooms.Edit(ctx, "lounge", "alice", msg.ID, "  ")
	require.ErrorIs(t, err, common.ErrorInvalidPayload)
	assert.Equal(t, "fixed", env.room(t, "lounge").Messages[0].Text.Body)
}

func TestRoomService_DeleteKeepsOrder(t *testing.T) {
	env := newTestEnv(t)
	setupLounge(t, env)
	ctx := context.Background()

	a := env.postText(t, "lounge", "bob", "a")
	b := env.postText(t, "lounge", "bob", "b")
	c := env.postText(t, "lounge", "bob", "c")

	require.ErrorIs(t, env.rooms.Delete(ctx, "lounge", "bob", b.ID), common.ErrorUnauthorized)
	require.NoError(t, env.rooms.Delete(ctx, "lounge", "mod", b.ID))

	room := env.room(t, "lounge")
	require.Len(t, room.Messages, 2)
	assert.Equal(t, a.ID, room.Messages[0].ID)
	assert.Equal(t, c.ID, room.Messages[1].ID)

	require.ErrorIs(t, env.rooms.Delete(ctx, "lounge", "mod", b.ID), common.ErrorNotFound)
}

func TestRoomService_LoungeScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice", "bob")

	_, err := env.rooms.Create(ctx, "lounge", models.VisibilityOpen, "", "alice")
	require.NoError(t, err)

	msg := env.postText(t, "lounge", "bob", "hi")
	require.NoError(t, env.rooms.Delete(ctx, "lounge", "alice", msg.ID))

	msgs, err := env.rooms.Messages(ctx, "lounge", "alice")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.ErrorIs(t, env.rooms.Delete(ctx, "lounge", "bob", msg.ID), common.ErrorNotFound)
	require.ErrorIs(t, env.rooms.Delete(ctx, "lounge", "alice", msg.ID), common.ErrorNotFound)
}

func TestRoomService_Vote(t *testing.T) {
	env := newTestEnv(t)
	setupLounge(t, env)
	ctx := context.Background()

	poll, err := env.rooms.Post(ctx, "lounge", "alice", models.PollPayload{Question: "lunch?", Options: []string{"pizza", "sushi"}})
	require.NoError(t, err)
	text := env.postText(t, "lounge", "alice", "not a poll")

	p, err := env.rooms.Vote(ctx, "lounge", "bob", poll.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalVotes)
	assert.Equal(t, 1, p.Options[0].Votes)
	assert.Equal(t, []string{"bob"}, p.Options[0].Voters)

	_, err = env.rooms.Vote(ctx, "lounge", "bob", poll.ID, 0)
	require.ErrorIs(t, err, common.ErrorAlreadyVoted)
	_, err = env.rooms.Vote(ctx, "lounge", "bob", poll.ID, 1)
	require.ErrorIs(t, err, common.ErrorAlreadyVoted)

	_, err = env.rooms.Vote(ctx, "lounge", "mod", poll.ID, 2)
	require.ErrorIs(t, err, common.ErrorInvalidOption)
	_, err = env.rooms.Vote(ctx, "lounge", "mod", poll.ID, -1)
	require.ErrorIs(t, err, common.ErrorInvalidOption)

	_, err = env.rooms.Vote(ctx, "lounge", "mod", "missing", 0)
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = env.rooms.Vote(ctx, "lounge", "mod", text.ID, 0)
	require.ErrorIs(t, err, common.ErrorNotFound)

	stored := env.room(t, "lounge").Messages[0].Poll
	assert.Equal(t, 1, stored.TotalVotes)
	assert.Equal(t, []string{"bob"}, stored.Voters)
	assert.Empty(t, stored.Options[1].Voters)
}

func TestRoomService_ConcurrentVotes(t *testing.T) {
	env := newTestEnv(t)
	setupLounge(t, env)
	ctx := context.Background()

	poll, err := env.rooms.Post(ctx, "lounge", "alice", models.PollPayload{Question: "q", Options: []string{"a", "b"}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.rooms.Vote(ctx, "lounge", "bob", poll.ID, i%2); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	p := env.room(t, "lounge").Messages[0].Poll
	assert.Equal(t, 1, p.TotalVotes)
	assert.Equal(t, 1, p.Options[0].Votes+p.Options[1].Votes)
}

func TestRoomService_Clear(t *testing.T) {
	env := newTestEnv(t)
	setupLounge(t, env)
	ctx := context.Background()

	env.postText(t, "lounge", "bob", "a")
	env.postText(t, "lounge", "bob", "b")

	require.ErrorIs(t, env.rooms.Clear(ctx, "lounge", "bob"), common.ErrorUnauthorized)
	require.NoError(t, env.rooms.Clear(ctx, "lounge", "mod"))

	assert.Empty(t, env.room(t, "lounge").Messages)
}

type failingPutStore struct {
	storage.Store
	fail bool
}

func (s *failingPutStore) Put(ctx context.Context, kind storage.Kind, key string, doc []byte) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.Store.Put(ctx, kind, key, doc)
}

func TestRoomService_PersistenceFailureLeavesPriorState(t *testing.T) {
	store := &failingPutStore{Store: storage.NewMemoryStore()}
	env := newTestEnvWithStore(t, store)
	setupLounge(t, env)
	ctx := context.Background()

	env.postText(t, "lounge", "bob", "kept")

	store.fail = true
	_, err := env.rooms.Post(ctx, "lounge", "bob", models.TextPayload{Body: "lost"})
	require.ErrorIs(t, err, common.ErrorPersistence)

	store.fail = false
	room := env.room(t, "lounge")
	require.Len(t, room.Messages, 1)
	assert.Equal(t, "kept", room.Messages[0].Text.Body)
}
