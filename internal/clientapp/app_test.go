package clientapp_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/huddle/internal/authstate"
	"github.com/vedran77/huddle/internal/chat"
	"github.com/vedran77/huddle/internal/clientapp"
	"github.com/vedran77/huddle/internal/config"
	"github.com/vedran77/huddle/internal/domain"
	"github.com/vedran77/huddle/internal/platformtest"
)

func newApp(t *testing.T, serverURL, dataDir string) *clientapp.App {
	t.Helper()
	cfg := config.DefaultClientConfig()
	cfg.ServerURL = serverURL
	cfg.DataDir = dataDir

	app, err := clientapp.New(cfg)
	require.NoError(t, err)
	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(app.Close)
	return app
}

func TestSessionSurvivesRestart(t *testing.T) {
	p := platformtest.Start(t)
	ctx := context.Background()
	dir := t.TempDir()

	first := newApp(t, p.URL, dir)
	assert.False(t, first.Session.Snapshot().LoggedIn())

	user, err := first.Session.Register(ctx, "ana@example.com", "Secret123")
	require.NoError(t, err)
	name := "Ana"
	require.NoError(t, first.Session.UpdateProfile(ctx, domain.ProfilePatch{DisplayName: &name}))
	first.Close()

	second := newApp(t, p.URL, dir)
	assert.Equal(t, user.ID, second.Session.Snapshot().ID)
	assert.Eventually(t, func() bool {
		st := second.Session.Snapshot()
		return st.DisplayName != nil && *st.DisplayName == "Ana"
	}, 5*time.Second, 10*time.Millisecond)

	second.Session.Logout(ctx)
	second.Close()

	third := newApp(t, p.URL, dir)
	assert.False(t, third.Session.Snapshot().LoggedIn())
	_, err = third.Me()
	assert.ErrorIs(t, err, authstate.ErrNotAuthenticated)
}

func TestPrivateChatBetweenApps(t *testing.T) {
	p := platformtest.Start(t)
	ctx := context.Background()
	anaDir, benDir := t.TempDir(), t.TempDir()

	ana := newApp(t, p.URL, anaDir)
	anaUser, err := ana.Session.Register(ctx, "ana@example.com", "Secret123")
	require.NoError(t, err)
	ben := newApp(t, p.URL, benDir)
	benUser, err := ben.Session.Register(ctx, "ben@example.com", "Secret123")
	require.NoError(t, err)

	got := make(chan domain.PrivateMessage, 1)
	cancel, err := ben.Private.SubscribeNew(ctx, benUser.ID, anaUser.ID, func(msg domain.PrivateMessage) {
		got <- msg
	})
	require.NoError(t, err)
	defer cancel()

	_, err = ana.Private.Send(ctx, anaUser.ID, benUser.ID, "hi ben")
	require.NoError(t, err)

	select {
	case msg := <-got:
		assert.Equal(t, "hi ben", msg.Body)
		assert.Equal(t, anaUser.ID, msg.SenderID)
	case <-time.After(5 * time.Second):
		t.Fatal("message not delivered")
	}

	history, err := ana.Private.LastMessages(ctx, anaUser.ID, benUser.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)

	// Both sides resolved the same chat, and each cached it on disk.
	for _, dir := range []string{anaDir, benDir} {
		cache, err := chat.OpenFileCache(filepath.Join(dir, chat.CacheFileName))
		require.NoError(t, err)
		id, ok := cache.Get(chat.PairKey(anaUser.ID, benUser.ID))
		require.True(t, ok)
		assert.Equal(t, history[0].ChatID, id)
	}
}

func TestProfileLookup(t *testing.T) {
	p := platformtest.Start(t)
	ctx := context.Background()

	app := newApp(t, p.URL, t.TempDir())
	user, err := app.Session.Register(ctx, "ana@example.com", "Secret123")
	require.NoError(t, err)

	me, err := app.Me()
	require.NoError(t, err)
	assert.Equal(t, user.ID, me)

	profile, err := app.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", profile.Email)

	_, err = app.Profile(ctx, uuid.New())
	assert.ErrorIs(t, err, clientapp.ErrProfileNotFound)
}

func TestNewFailsOnCorruptCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, chat.CacheFileName), []byte("{bad"), 0o600))

	cfg := config.DefaultClientConfig()
	cfg.DataDir = dir
	_, err := clientapp.New(cfg)
	assert.Error(t, err)
}
