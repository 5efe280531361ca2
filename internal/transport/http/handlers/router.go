package handlers

import (
	"context"
	"net/http"

	"github.com/vedran77/huddle/internal/logging"
	"github.com/vedran77/huddle/internal/service"
	"github.com/vedran77/huddle/internal/transport/http/middleware"
	"github.com/vedran77/huddle/internal/transport/ws"
)

// Services are the dependencies of the HTTP API.
type Services struct {
	Auth         *service.AuthService
	Profiles     *service.ProfileService
	GlobalChat   *service.GlobalChatService
	PrivateChats *service.PrivateChatService
	Storage      *service.StorageService
	Hub          *ws.Hub
}

// NewRouter wires every route. ctx bounds the lifetime of realtime
// connections.
func NewRouter(ctx context.Context, s Services) http.Handler {
	log := logging.NewLogger("http")

	authHandler := NewAuthHandler(s.Auth, log)
	profileHandler := NewProfileHandler(s.Profiles, log)
	globalHandler := NewGlobalChatHandler(s.GlobalChat, log)
	privateHandler := NewPrivateChatHandler(s.PrivateChats, log)
	storageHandler := NewStorageHandler(s.Storage, log)

	auth := middleware.Auth(s.Auth)

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/signup", authHandler.SignUp)
	mux.HandleFunc("POST /api/v1/auth/token", authHandler.Token)
	mux.HandleFunc("GET /storage/v1/object/public/{bucket}/{name...}", storageHandler.Public)

	// Protected - Auth
	mux.Handle("POST /api/v1/auth/logout", auth(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/v1/auth/user", auth(http.HandlerFunc(authHandler.User)))

	// Protected - Profiles
	mux.Handle("POST /api/v1/profiles", auth(http.HandlerFunc(profileHandler.Create)))
	mux.Handle("GET /api/v1/profiles/{id}", auth(http.HandlerFunc(profileHandler.Get)))
	mux.Handle("PATCH /api/v1/profiles/{id}", auth(http.HandlerFunc(profileHandler.Update)))

	// Protected - Global chat
	mux.Handle("GET /api/v1/global-messages", auth(http.HandlerFunc(globalHandler.List)))
	mux.Handle("POST /api/v1/global-messages", auth(http.HandlerFunc(globalHandler.Send)))

	// Protected - Private chats
	mux.Handle("GET /api/v1/private-chats", auth(http.HandlerFunc(privateHandler.Find)))
	mux.Handle("POST /api/v1/private-chats", auth(http.HandlerFunc(privateHandler.Create)))
	mux.Handle("GET /api/v1/private-chats/{id}/messages", auth(http.HandlerFunc(privateHandler.ListMessages)))
	mux.Handle("POST /api/v1/private-chats/{id}/messages", auth(http.HandlerFunc(privateHandler.SendMessage)))

	// Protected - Storage
	mux.Handle("PUT /api/v1/storage/{bucket}/{name...}", auth(http.HandlerFunc(storageHandler.Upload)))
	mux.Handle("DELETE /api/v1/storage/{bucket}", auth(http.HandlerFunc(storageHandler.Remove)))

	// Realtime (token in query)
	mux.HandleFunc("GET /api/v1/realtime", ws.ServeWS(ctx, s.Hub, s.Auth))

	return middleware.CORS(mux)
}
