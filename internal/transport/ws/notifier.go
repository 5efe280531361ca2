package ws

import (
	"github.com/google/uuid"
	"github.com/vedran77/huddle/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyChange(table string, changeType domain.ChangeType, record any, audience []uuid.UUID) {
	change, err := domain.NewChange(table, changeType, record)
	if err != nil {
		n.hub.log.WithError(err).Error("ws notifier: marshal error")
		return
	}
	n.hub.Publish(change, audience)
}
