// Package backend defines the contract of the remote platform that the client
// core depends on: authentication, the tables the app reads and writes, the
// realtime change feed and object storage.
//
// "Not found" is reported as a nil result with a nil error, never as an error.
package backend

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/vedran77/huddle/internal/domain"
)

type Auth interface {
	SignUp(ctx context.Context, email, password string) (*domain.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.User, error)
	SignOut(ctx context.Context) error
	// CurrentUser returns the user of the stored session, or nil if there is none.
	CurrentUser(ctx context.Context) (*domain.User, error)
}

type Profiles interface {
	CreateProfile(ctx context.Context, profile *domain.Profile) error
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) error
}

type GlobalChat interface {
	ListGlobalMessages(ctx context.Context, limit int) ([]domain.GlobalMessage, error)
	InsertGlobalMessage(ctx context.Context, body string) (*domain.GlobalMessage, error)
}

type PrivateChats interface {
	// FindPrivateChat looks a chat up by its canonical pair (user1 < user2).
	FindPrivateChat(ctx context.Context, user1, user2 uuid.UUID) (*domain.PrivateChat, error)
	// CreatePrivateChat fails with ErrConflict if the pair already has a chat.
	CreatePrivateChat(ctx context.Context, user1, user2 uuid.UUID) (*domain.PrivateChat, error)
	ListPrivateMessages(ctx context.Context, chatID int64, limit int) ([]domain.PrivateMessage, error)
	InsertPrivateMessage(ctx context.Context, chatID int64, body string) (*domain.PrivateMessage, error)
}

// ChangeHandler receives realtime changes. It runs on the subscription's own
// goroutine.
type ChangeHandler func(change *domain.Change)

type Realtime interface {
	// Subscribe starts delivering matching changes to fn until cancel is
	// called or ctx is done.
	Subscribe(ctx context.Context, sub domain.Subscription, fn ChangeHandler) (cancel func(), err error)
}

type Storage interface {
	Upload(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) error
	PublicURL(bucket, name string) string
	Remove(ctx context.Context, bucket string, names []string) error
}

// Client is the full platform surface.
type Client interface {
	Auth
	Profiles
	GlobalChat
	PrivateChats
	Realtime
	Storage
}
