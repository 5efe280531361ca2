package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vedran77/huddle/internal/backend"
	"github.com/vedran77/huddle/internal/domain"
)

type PrivateChat struct {
	store    backend.PrivateChats
	realtime backend.Realtime
	resolver *Resolver
	log      *logrus.Entry
}

func NewPrivateChat(store backend.PrivateChats, realtime backend.Realtime, resolver *Resolver, log *logrus.Entry) *PrivateChat {
	return &PrivateChat{store: store, realtime: realtime, resolver: resolver, log: log}
}

// Send posts body from sender to receiver, opening their chat if needed.
func (p *PrivateChat) Send(ctx context.Context, sender, receiver uuid.UUID, body string) (*domain.PrivateMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	chatID, err := p.resolver.Resolve(ctx, sender, receiver)
	if err != nil {
		return nil, err
	}

	msg, err := p.store.InsertPrivateMessage(ctx, chatID, body)
	if err != nil {
		p.log.WithError(err).WithField("chat_id", chatID).Error("sending private message failed")
		return nil, fmt.Errorf("sending private message: %w", err)
	}
	return msg, nil
}

// LastMessages returns the most recent messages between the two users,
// oldest first.
func (p *PrivateChat) LastMessages(ctx context.Context, sender, receiver uuid.UUID, limit int) ([]domain.PrivateMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	chatID, err := p.resolver.Resolve(ctx, sender, receiver)
	if err != nil {
		return nil, err
	}

	msgs, err := p.store.ListPrivateMessages(ctx, chatID, limit)
	if err != nil {
		p.log.WithError(err).WithField("chat_id", chatID).Error("loading private messages failed")
		return nil, fmt.Errorf("loading private messages: %w", err)
	}
	return msgs, nil
}

// SubscribeNew calls fn for every message inserted into the chat of the two
// users after the subscription started.
func (p *PrivateChat) SubscribeNew(ctx context.Context, sender, receiver uuid.UUID, fn func(domain.PrivateMessage)) (func(), error) {
	chatID, err := p.resolver.Resolve(ctx, sender, receiver)
	if err != nil {
		return nil, err
	}

	sub := domain.Subscription{
		Table:  domain.TablePrivateMessages,
		Event:  domain.ChangeInsert,
		Filter: &domain.Filter{Column: "chat_id", Op: domain.FilterEq, Value: strconv.FormatInt(chatID, 10)},
	}
	cancel, err := p.realtime.Subscribe(ctx, sub, func(change *domain.Change) {
		var msg domain.PrivateMessage
		if err := change.Decode(&msg); err != nil {
			p.log.WithError(err).Warn("dropping undecodable private message change")
			return
		}
		fn(msg)
	})
	if err != nil {
		p.log.WithError(err).WithField("chat_id", chatID).Error("subscribing to private chat failed")
		return nil, fmt.Errorf("subscribing to private chat: %w", err)
	}
	return cancel, nil
}
