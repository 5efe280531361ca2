// Package clientapp wires the client side together: the backend client, the
// session broadcaster, private chat resolution, chats and files.
package clientapp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/vedran77/huddle/internal/authstate"
	"github.com/vedran77/huddle/internal/backend"
	"github.com/vedran77/huddle/internal/backend/restclient"
	"github.com/vedran77/huddle/internal/chat"
	"github.com/vedran77/huddle/internal/config"
	"github.com/vedran77/huddle/internal/domain"
	"github.com/vedran77/huddle/internal/files"
	"github.com/vedran77/huddle/internal/logging"
)

var ErrProfileNotFound = errors.New("profile not found")

// App is one client instance. Several can live in the same process.
type App struct {
	Backend  backend.Client
	Session  *authstate.Broadcaster
	Resolver *chat.Resolver
	Global   *chat.GlobalChat
	Private  *chat.PrivateChat
	Files    *files.Service

	historyLimit int
}

// New builds an App talking to cfg.ServerURL, keeping its session and chat
// cache under cfg.DataDir.
func New(cfg config.ClientConfig) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	cache, err := chat.OpenFileCache(filepath.Join(cfg.DataDir, chat.CacheFileName))
	if err != nil {
		return nil, err
	}

	client := restclient.New(cfg.ServerURL, restclient.NewFileSessionStore(cfg.SessionPath()), logging.NewLogger("restclient"))
	app := NewWithBackend(client, cache, cfg.Bucket)
	app.historyLimit = cfg.HistoryLimit
	return app, nil
}

// NewWithBackend builds an App on top of an existing backend client.
func NewWithBackend(client backend.Client, cache chat.PairCache, bucket string) *App {
	resolver := chat.NewResolver(client, cache, logging.NewLogger("resolver"))
	return &App{
		Backend:      client,
		Session:      authstate.New(client, client, logging.NewLogger("authstate")),
		Resolver:     resolver,
		Global:       chat.NewGlobalChat(client, client, logging.NewLogger("global_chat")),
		Private:      chat.NewPrivateChat(client, client, resolver, logging.NewLogger("private_chat")),
		Files:        files.NewService(client, bucket, logging.NewLogger("files")),
		historyLimit: chat.DefaultHistoryLimit,
	}
}

// Start restores the stored session, if any.
func (a *App) Start(ctx context.Context) error {
	return a.Session.Init(ctx)
}

// Close waits for background session work, such as a pending sign out.
func (a *App) Close() {
	a.Session.Close()
}

// HistoryLimit is the configured number of messages to load.
func (a *App) HistoryLimit() int {
	return a.historyLimit
}

// Me returns the id of the logged in user.
func (a *App) Me() (uuid.UUID, error) {
	st := a.Session.Snapshot()
	if !st.LoggedIn() {
		return uuid.Nil, authstate.ErrNotAuthenticated
	}
	return st.ID, nil
}

// Profile fetches another user's public profile.
func (a *App) Profile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	profile, err := a.Backend.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}
