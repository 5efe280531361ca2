package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/vedran77/huddle/internal/config"
	"github.com/vedran77/huddle/internal/database"
	"github.com/vedran77/huddle/internal/logging"
	"github.com/vedran77/huddle/internal/objectstore"
	"github.com/vedran77/huddle/internal/repository"
	"github.com/vedran77/huddle/internal/repository/memory"
	postgresrepo "github.com/vedran77/huddle/internal/repository/postgres"
	"github.com/vedran77/huddle/internal/service"
	"github.com/vedran77/huddle/internal/tokenstore"
	"github.com/vedran77/huddle/internal/transport/http/handlers"
	"github.com/vedran77/huddle/internal/transport/ws"
	"golang.org/x/sync/errgroup"
)

var log = logging.NewLogger("server")

func main() {
	cfg := config.Load()
	logging.Setup(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

type repositories struct {
	users        repository.UserRepository
	profiles     repository.ProfileRepository
	globalChat   repository.GlobalMessageRepository
	privateChats repository.PrivateChatRepository
	close        func()
}

func run(ctx context.Context, cfg *config.Config) error {
	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	revoked, err := openTokenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer revoked.Close()

	objects, err := openObjectStore(ctx, cfg)
	if err != nil {
		return err
	}

	hub := ws.NewHub(logging.NewLogger("ws"))
	notifier := ws.NewHubNotifier(hub)

	authService := service.NewAuthService(repos.users, revoked, cfg.JWTSecret, cfg.TokenTTL)
	profileService := service.NewProfileService(repos.profiles)
	profileService.SetNotifier(notifier)
	globalService := service.NewGlobalChatService(repos.globalChat, repos.users)
	globalService.SetNotifier(notifier)
	privateService := service.NewPrivateChatService(repos.privateChats, repos.users)
	privateService.SetNotifier(notifier)
	storageService := service.NewStorageService(objects, cfg.PublicBaseURL)

	router := handlers.NewRouter(ctx, handlers.Services{
		Auth:         authService,
		Profiles:     profileService,
		GlobalChat:   globalService,
		PrivateChats: privateService,
		Storage:      storageService,
		Hub:          hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.DBDriver {
	case "memory":
		log.Warn("using in-memory repositories, data is lost on exit")
		store := memory.NewStore()
		return &repositories{
			users:        store.Users(),
			profiles:     store.Profiles(),
			globalChat:   store.GlobalMessages(),
			privateChats: store.PrivateChats(),
			close:        func() {},
		}, nil

	case "postgres":
		pool, err := database.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("connected to database")
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &repositories{
			users:        postgresrepo.NewUserRepo(pool),
			profiles:     postgresrepo.NewProfileRepo(pool),
			globalChat:   postgresrepo.NewGlobalMessageRepo(pool),
			privateChats: postgresrepo.NewPrivateChatRepo(pool),
			close:        pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}

// openTokenStore connects to Redis. REDIS_URL=memory starts an embedded
// server that lives as long as the process.
func openTokenStore(ctx context.Context, cfg *config.Config) (*tokenstore.RedisStore, error) {
	url := cfg.RedisURL
	if url == "memory" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("starting embedded redis: %w", err)
		}
		log.WithField("addr", mr.Addr()).Warn("using embedded redis")
		url = mr.Addr()
	}
	return tokenstore.NewRedisStore(ctx, url)
}

func openObjectStore(ctx context.Context, cfg *config.Config) (service.ObjectStore, error) {
	switch cfg.StorageDriver {
	case "memory":
		log.Warn("using in-memory object storage")
		return objectstore.NewMemoryStore(cfg.StorageBuckets), nil

	case "minio":
		store, err := objectstore.NewMinioStore(objectstore.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			Buckets:   cfg.StorageBuckets,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBuckets(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
}
