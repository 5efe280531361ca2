package restclient

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/huddle/internal/domain"
)

func TestFileSessionStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileSessionStore(path)

	s, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, s)

	want := &Session{
		AccessToken: "tok",
		ExpiresAt:   time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
		User:        &domain.User{ID: uuid.New(), Email: "ana@example.com"},
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
	assert.Equal(t, want.User.ID, got.User.ID)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	s, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestFileSessionStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	_, err := NewFileSessionStore(path).Load()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"access_token":""}`), 0o600))
	s, err := NewFileSessionStore(path).Load()
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestRealtimeURL(t *testing.T) {
	c := New("https://chat.example.com/", nil, nil)
	assert.Equal(t, "wss://chat.example.com/api/v1/realtime?token=a%2Bb", c.realtimeURL("a+b"))

	c = New("http://localhost:8080", nil, nil)
	assert.Equal(t, "ws://localhost:8080/api/v1/realtime?token=t", c.realtimeURL("t"))
}

func TestEscapeName(t *testing.T) {
	assert.Equal(t, "dir/a%20b.png", escapeName("/dir/a b.png"))
}

func TestSubscribeError(t *testing.T) {
	err := subscribeError([]byte(`{"code":"INVALID_FILTER","message":"bad operator"}`))
	assert.Equal(t, 400, err.Status)
	assert.Equal(t, "INVALID_FILTER", err.Code)
	assert.Equal(t, "bad operator", err.Message)

	err = subscribeError([]byte(`not json`))
	assert.Equal(t, "SUBSCRIBE_FAILED", err.Code)
	assert.Equal(t, "not json", err.Message)

	err = subscribeError([]byte(`{}`))
	assert.Equal(t, "SUBSCRIBE_FAILED", err.Code)
	assert.Equal(t, "{}", err.Message)
}
