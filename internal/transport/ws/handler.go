package ws

import (
	"context"
	"net/http"

	"github.com/vedran77/huddle/internal/service"
	"nhooyr.io/websocket"
)

// TokenVerifier validates access tokens, including revocation.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*service.TokenClaims, error)
}

// ServeWS returns an HTTP handler that upgrades to WebSocket.
// Auth is done via ?token=xxx query param (WebSocket can't send headers).
func ServeWS(ctx context.Context, hub *Hub, verifier TokenVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		claims, err := verifier.VerifyToken(r.Context(), tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // Allow any origin (dev mode)
		})
		if err != nil {
			hub.log.WithError(err).Warn("ws: accept error")
			return
		}

		client := NewClient(hub, conn, claims.UserID)
		hub.Register(client)

		// The request context ends when the handler returns, so the pumps
		// run under the server's context instead.
		go client.WritePump(ctx)
		go client.ReadPump(ctx)
	}
}
