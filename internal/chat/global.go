// Package chat holds the client side of the global and private chats,
// including the resolution of a pair of users to their private chat.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vedran77/huddle/internal/backend"
	"github.com/vedran77/huddle/internal/domain"
)

// DefaultHistoryLimit is used when a caller asks for a non-positive number of
// messages.
const DefaultHistoryLimit = 50

var ErrEmptyMessage = errors.New("message body is empty")

type GlobalChat struct {
	store    backend.GlobalChat
	realtime backend.Realtime
	log      *logrus.Entry
}

func NewGlobalChat(store backend.GlobalChat, realtime backend.Realtime, log *logrus.Entry) *GlobalChat {
	return &GlobalChat{store: store, realtime: realtime, log: log}
}

// LastMessages returns the most recent messages, oldest first.
func (g *GlobalChat) LastMessages(ctx context.Context, limit int) ([]domain.GlobalMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	msgs, err := g.store.ListGlobalMessages(ctx, limit)
	if err != nil {
		g.log.WithError(err).Error("loading global chat messages failed")
		return nil, fmt.Errorf("loading global chat messages: %w", err)
	}
	return msgs, nil
}

// Send posts a message as the logged in user.
func (g *GlobalChat) Send(ctx context.Context, body string) (*domain.GlobalMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	msg, err := g.store.InsertGlobalMessage(ctx, body)
	if err != nil {
		g.log.WithError(err).Error("sending global chat message failed")
		return nil, fmt.Errorf("sending global chat message: %w", err)
	}
	return msg, nil
}

// SubscribeNew calls fn for every message inserted after the subscription
// started. The returned function stops the subscription.
func (g *GlobalChat) SubscribeNew(ctx context.Context, fn func(domain.GlobalMessage)) (func(), error) {
	sub := domain.Subscription{Table: domain.TableGlobalChat, Event: domain.ChangeInsert}
	cancel, err := g.realtime.Subscribe(ctx, sub, func(change *domain.Change) {
		var msg domain.GlobalMessage
		if err := change.Decode(&msg); err != nil {
			g.log.WithError(err).Warn("dropping undecodable global chat change")
			return
		}
		fn(msg)
	})
	if err != nil {
		g.log.WithError(err).Error("subscribing to global chat failed")
		return nil, fmt.Errorf("subscribing to global chat: %w", err)
	}
	return cancel, nil
}
