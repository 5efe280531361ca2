package service

import (
	"github.com/google/uuid"
	"github.com/vedran77/huddle/internal/domain"
)

// Notifier publishes row changes to the realtime feed. A nil audience means
// every connected user may receive the change.
type Notifier interface {
	NotifyChange(table string, changeType domain.ChangeType, record any, audience []uuid.UUID)
}

type notifierHolder struct {
	notifier Notifier
}

func (h *notifierHolder) SetNotifier(n Notifier) {
	h.notifier = n
}

func (h *notifierHolder) notify(table string, changeType domain.ChangeType, record any, audience ...uuid.UUID) {
	if h.notifier != nil {
		h.notifier.NotifyChange(table, changeType, record, audience)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
