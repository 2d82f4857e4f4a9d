package rooms

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/dmitrijs2005/libertalk/internal/server/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestDocumentRepository_CreateGetUpdate(t *testing.T) {
	repo := NewDocumentRepository(storage.NewMemoryStore())
	ctx := context.Background()

	room := models.NewRoom("lounge", models.VisibilityOpen, "", "alice", created)
	require.NoError(t, repo.Create(ctx, room))
	require.ErrorIs(t, repo.Create(ctx, room), common.ErrorAlreadyExists)

	got, err := repo.Get(ctx, "lounge")
	require.NoError(t, err)
	assert.Equal(t, room, got)

	got.Messages = append(got.Messages, models.Message{
		ID: "m1", Kind: models.KindText, Author: "alice", Timestamp: created,
		Role: models.RoleAdmin, Text: &models.TextContent{Body: "hello"},
	})
	got.AddModerator("bob")
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.Get(ctx, "lounge")
	require.NoError(t, err)
	require.Len(t, again.Messages, 1)
	assert.Equal(t, "hello", again.Messages[0].Text.Body)
	assert.Equal(t, []string{"bob"}, again.Moderators)
}

func TestDocumentRepository_UpdateRejectsMalformedMessage(t *testing.T) {
	repo := NewDocumentRepository(storage.NewMemoryStore())
	ctx := context.Background()

	room := models.NewRoom("lounge", models.VisibilityOpen, "", "alice", created)
	room.Messages = []models.Message{{ID: "bad", Kind: models.KindPoll}}

	require.Error(t, repo.Update(ctx, room))
	_, err := repo.Get(ctx, "lounge")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDocumentRepository_GetFillsMissingCollections(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), storage.KindRooms, "old", []byte(`{"created_by":"alice"}`)))

	room, err := NewDocumentRepository(store).Get(context.Background(), "old")
	require.NoError(t, err)

	assert.Equal(t, "old", room.Name)
	assert.Equal(t, models.VisibilityOpen, room.Visibility)
	assert.NotNil(t, room.Moderators)
	assert.NotNil(t, room.BannedUsers)
	assert.NotNil(t, room.Messages)
}

func TestDocumentRepository_ListSorted(t *testing.T) {
	repo := NewDocumentRepository(storage.NewMemoryStore())
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, repo.Create(ctx, models.NewRoom(name, models.VisibilityOpen, "", "alice", created)))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)

	var names []string
	for _, r := range list {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}
