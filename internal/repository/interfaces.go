package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vedran77/huddle/internal/domain"
)

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate row")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	// Update applies patch and returns the stored row, or nil if there is
	// no profile with that id.
	Update(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) (*domain.Profile, error)
}

type GlobalMessageRepository interface {
	Create(ctx context.Context, msg *domain.GlobalMessage) error
	// ListRecent returns up to limit messages, oldest first.
	ListRecent(ctx context.Context, limit int) ([]domain.GlobalMessage, error)
}

type PrivateChatRepository interface {
	CreateChat(ctx context.Context, chat *domain.PrivateChat) error
	GetChatByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.PrivateChat, error)
	GetChatByID(ctx context.Context, id int64) (*domain.PrivateChat, error)
	CreateMessage(ctx context.Context, msg *domain.PrivateMessage) error
	// ListMessages returns up to limit messages of the chat, oldest first.
	ListMessages(ctx context.Context, chatID int64, limit int) ([]domain.PrivateMessage, error)
}
