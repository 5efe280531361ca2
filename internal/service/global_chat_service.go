package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vedran77/huddle/internal/domain"
	"github.com/vedran77/huddle/internal/repository"
)

// GlobalChatService runs the chat room every user can read and write.
type GlobalChatService struct {
	notifierHolder
	messageRepo repository.GlobalMessageRepository
	userRepo    repository.UserRepository
}

func NewGlobalChatService(messageRepo repository.GlobalMessageRepository, userRepo repository.UserRepository) *GlobalChatService {
	return &GlobalChatService{messageRepo: messageRepo, userRepo: userRepo}
}

// Send posts body under the email of the sender.
func (s *GlobalChatService) Send(ctx context.Context, userID uuid.UUID, body string) (*domain.GlobalMessage, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	msg := &domain.GlobalMessage{Email: user.Email, Body: body}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating global message: %w", err)
	}

	s.notify(domain.TableGlobalChat, domain.ChangeInsert, msg)
	return msg, nil
}

// List returns the latest messages in chronological order.
func (s *GlobalChatService) List(ctx context.Context, limit int) ([]domain.GlobalMessage, error) {
	messages, err := s.messageRepo.ListRecent(ctx, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.GlobalMessage{}
	}
	return messages, nil
}
