package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vedran77/huddle/internal/domain"
)

// Hub manages all active WebSocket clients and fans row changes out to the
// subscriptions that select them.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg
	done       chan struct{}

	log *logrus.Entry
}

type broadcastMsg struct {
	change *domain.Change
	// audience limits delivery to these users; nil means everyone.
	audience map[uuid.UUID]struct{}
}

func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the Hub's main event loop and returns when ctx is done. Call
// this in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			client.close()
		}
	}()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.log.WithField("user_id", client.userID).Debugf("ws hub: client connected (%d total)", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				h.log.WithField("user_id", client.userID).Debugf("ws hub: client disconnected (%d total)", len(h.clients))
			}

		case msg := <-h.broadcast:
			h.deliver(msg)

		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) deliver(msg *broadcastMsg) {
	fields, err := msg.change.Fields()
	if err != nil {
		h.log.WithError(err).WithField("table", msg.change.Table).Error("ws hub: undecodable change record")
		return
	}

clients:
	for client := range h.clients {
		if msg.audience != nil {
			if _, ok := msg.audience[client.userID]; !ok {
				continue
			}
		}
		for _, id := range client.matching(msg.change, fields) {
			evt, err := NewEvent(EventTypeChange, id, msg.change)
			if err != nil {
				h.log.WithError(err).Error("ws hub: marshal error")
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				h.log.WithError(err).Error("ws hub: marshal error")
				return
			}
			select {
			case client.send <- data:
			default:
				// Client buffer full - disconnect
				delete(h.clients, client)
				client.close()
				h.log.WithField("user_id", client.userID).Warn("ws hub: dropping slow client")
				continue clients
			}
		}
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues change for delivery. It is dropped once the hub stopped.
func (h *Hub) Publish(change *domain.Change, audience []uuid.UUID) {
	msg := &broadcastMsg{change: change}
	if audience != nil {
		msg.audience = make(map[uuid.UUID]struct{}, len(audience))
		for _, id := range audience {
			msg.audience[id] = struct{}{}
		}
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}
