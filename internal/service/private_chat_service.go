package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vedran77/huddle/internal/domain"
	"github.com/vedran77/huddle/internal/repository"
)

var (
	ErrCannotChatSelf = errors.New("cannot start a private chat with yourself")
	ErrChatNotFound   = errors.New("private chat not found")
	ErrChatExists     = errors.New("private chat already exists")
	ErrNotParticipant = errors.New("you are not a participant of this chat")
)

type PrivateChatService struct {
	notifierHolder
	chatRepo repository.PrivateChatRepository
	userRepo repository.UserRepository
}

func NewPrivateChatService(chatRepo repository.PrivateChatRepository, userRepo repository.UserRepository) *PrivateChatService {
	return &PrivateChatService{chatRepo: chatRepo, userRepo: userRepo}
}

// Find returns the chat of the two users, or nil if they have none yet. The
// caller must be one of them.
func (s *PrivateChatService) Find(ctx context.Context, userID, user1ID, user2ID uuid.UUID) (*domain.PrivateChat, error) {
	if userID != user1ID && userID != user2ID {
		return nil, ErrNotParticipant
	}
	u1, u2 := domain.CanonicalPair(user1ID, user2ID)
	return s.chatRepo.GetChatByUsers(ctx, u1, u2)
}

// Create opens the chat of the two users. It fails with ErrChatExists if they
// already have one.
func (s *PrivateChatService) Create(ctx context.Context, userID, user1ID, user2ID uuid.UUID) (*domain.PrivateChat, error) {
	if user1ID == user2ID {
		return nil, ErrCannotChatSelf
	}
	if userID != user1ID && userID != user2ID {
		return nil, ErrNotParticipant
	}

	otherID := user1ID
	if otherID == userID {
		otherID = user2ID
	}
	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, ErrUserNotFound
	}

	u1, u2 := domain.CanonicalPair(user1ID, user2ID)
	chat := &domain.PrivateChat{UserID1: u1, UserID2: u2}
	if err := s.chatRepo.CreateChat(ctx, chat); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrChatExists
		}
		return nil, fmt.Errorf("creating private chat: %w", err)
	}

	s.notify(domain.TablePrivateChats, domain.ChangeInsert, chat, u1, u2)
	return chat, nil
}

func (s *PrivateChatService) SendMessage(ctx context.Context, userID uuid.UUID, chatID int64, body string) (*domain.PrivateMessage, error) {
	chat, err := s.participantChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	msg := &domain.PrivateMessage{ChatID: chatID, SenderID: userID, Body: body}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating private message: %w", err)
	}

	s.notify(domain.TablePrivateMessages, domain.ChangeInsert, msg, chat.UserID1, chat.UserID2)
	return msg, nil
}

// ListMessages returns the latest messages of the chat in chronological order.
func (s *PrivateChatService) ListMessages(ctx context.Context, userID uuid.UUID, chatID int64, limit int) ([]domain.PrivateMessage, error) {
	if _, err := s.participantChat(ctx, userID, chatID); err != nil {
		return nil, err
	}

	messages, err := s.chatRepo.ListMessages(ctx, chatID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.PrivateMessage{}
	}
	return messages, nil
}

func (s *PrivateChatService) participantChat(ctx context.Context, userID uuid.UUID, chatID int64) (*domain.PrivateChat, error) {
	chat, err := s.chatRepo.GetChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	if !chat.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return chat, nil
}
