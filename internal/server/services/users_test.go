package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.users.Register(ctx, "  alice ", "secret", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)
	assert.Equal(t, common.DefaultAvatar, u.Avatar)
	assert.NotEqual(t, "secret", u.Password)
	assert.Empty(t, u.BannedRooms)

	_, err = env.users.Register(ctx, "alice", "other", "")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = env.users.Register(ctx, "   ", "x", "")
	require.ErrorIs(t, err, common.ErrorInvalidPayload)

	_, err = env.users.Register(ctx, "bob", "", "")
	require.ErrorIs(t, err, common.ErrorInvalidPayload)
}

func TestUserService_LoginAuthenticateLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	sess, err := env.users.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.NotEmpty(t, sess.SessionID)
	assert.Equal(t, "alice", sess.User.UserName)

	username, sessionID, err := env.users.Authenticate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.Equal(t, sess.SessionID, sessionID)

	env.gate.Grant(sess.SessionID, "vault")
	env.users.Logout(ctx, sess.SessionID)
	assert.False(t, env.gate.HasAccess(sess.SessionID, "vault"))

	_, _, err = env.users.Authenticate(sess.Token)
	require.ErrorIs(t, err, common.ErrorInvalidToken, "token of an ended session")

	other, err := env.users.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)
	_, _, err = env.users.Authenticate(other.Token)
	require.NoError(t, err, "a new session is unaffected")

	_, _, err = env.users.Authenticate("garbage")
	require.ErrorIs(t, err, common.ErrorInvalidToken)
}

func TestUserService_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	_, err := env.users.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, common.ErrorInvalidCredentials)

	_, err = env.users.Login(context.Background(), "nobody", "x")
	require.ErrorIs(t, err, common.ErrorInvalidCredentials)
}

func TestUserService_UpdateAvatarKeepsPostedMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	_, err := env.rooms.Create(ctx, "lounge", "open", "", "alice")
	require.NoError(t, err)
	env.postText(t, "lounge", "alice", "before")

	u, err := env.users.UpdateAvatar(ctx, "alice", "new.png")
	require.NoError(t, err)
	assert.Equal(t, "new.png", u.Avatar)

	after := env.postText(t, "lounge", "alice", "after")
	assert.Equal(t, "new.png", after.Avatar)

	room := env.room(t, "lounge")
	assert.Equal(t, "alice.jpg", room.Messages[0].Avatar)
	assert.Equal(t, "new.png", room.Messages[1].Avatar)

	_, err = env.users.UpdateAvatar(ctx, "ghost", "x.png")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = env.users.UpdateAvatar(ctx, "alice", "")
	require.ErrorIs(t, err, common.ErrorInvalidPayload)
}

func TestUserService_markBanned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "bob")

	require.NoError(t, env.users.markBanned(ctx, "bob", "lounge"))
	require.NoError(t, env.users.markBanned(ctx, "bob", "lounge"))

	u, err := env.users.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"lounge"}, u.BannedRooms)
}
