// Package platformtest runs the whole platform server in process, backed by
// in-memory repositories, miniredis and an in-memory object store.
package platformtest

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/vedran77/huddle/internal/logging"
	"github.com/vedran77/huddle/internal/objectstore"
	"github.com/vedran77/huddle/internal/repository/memory"
	"github.com/vedran77/huddle/internal/service"
	"github.com/vedran77/huddle/internal/tokenstore"
	"github.com/vedran77/huddle/internal/transport/http/handlers"
	"github.com/vedran77/huddle/internal/transport/ws"
)

type Platform struct {
	URL     string
	Store   *memory.Store
	Objects *objectstore.MemoryStore
	Redis   *miniredis.Miniredis
	Auth    *service.AuthService
}

// Start serves the platform until the test ends.
func Start(t *testing.T) *Platform {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	mr := miniredis.RunT(t)
	revoked, err := tokenstore.NewRedisStore(ctx, mr.Addr())
	if err != nil {
		cancel()
		t.Fatalf("platformtest: %v", err)
	}

	store := memory.NewStore()
	objects := objectstore.NewMemoryStore([]string{"avatars", "docs"})

	hub := ws.NewHub(logging.NewLogger("ws"))
	go hub.Run(ctx)
	notifier := ws.NewHubNotifier(hub)

	authService := service.NewAuthService(store.Users(), revoked, "platformtest-secret", time.Hour)
	profileService := service.NewProfileService(store.Profiles())
	profileService.SetNotifier(notifier)
	globalService := service.NewGlobalChatService(store.GlobalMessages(), store.Users())
	globalService.SetNotifier(notifier)
	privateService := service.NewPrivateChatService(store.PrivateChats(), store.Users())
	privateService.SetNotifier(notifier)

	// The public URL of stored objects must be known before the router is
	// built, so the listener address is taken before the server starts.
	srv := httptest.NewUnstartedServer(nil)
	baseURL := "http://" + srv.Listener.Addr().String()
	storageService := service.NewStorageService(objects, baseURL)

	srv.Config.Handler = handlers.NewRouter(ctx, handlers.Services{
		Auth:         authService,
		Profiles:     profileService,
		GlobalChat:   globalService,
		PrivateChats: privateService,
		Storage:      storageService,
		Hub:          hub,
	})
	srv.Start()

	t.Cleanup(func() {
		cancel()
		srv.Close()
		revoked.Close()
	})

	return &Platform{URL: srv.URL, Store: store, Objects: objects, Redis: mr, Auth: authService}
}
