package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vedran77/huddle/internal/domain"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

// Client represents a single WebSocket connection. One user may hold several.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID
	log    *logrus.Entry

	// subscriptions maps the client-chosen id to what it selects.
	subscriptions map[string]domain.Subscription
	mu            sync.RWMutex

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	conn.SetReadLimit(maxMessageSize)
	return &Client{
		hub:           hub,
		conn:          conn,
		userID:        userID,
		log:           hub.log.WithField("user_id", userID),
		subscriptions: make(map[string]domain.Subscription),
		send:          make(chan []byte, sendBufSize),
		done:          make(chan struct{}),
	}
}

// Subscribe adds or replaces the subscription with the given id.
func (c *Client) Subscribe(id string, sub domain.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[id] = sub
}

func (c *Client) Unsubscribe(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, id)
}

// matching returns the ids of the subscriptions that select change.
func (c *Client) matching(change *domain.Change, fields map[string]any) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var ids []string
	for id, sub := range c.subscriptions {
		if sub.Matches(change, fields) {
			ids = append(ids, id)
		}
	}
	return ids
}

// ReadPump reads events from the WebSocket until it closes.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(ctx, c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				c.log.Debug("ws: client disconnected")
			} else {
				c.log.WithError(err).Warn("ws: read error")
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued events to the WebSocket and keeps it alive.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(wctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.log.WithError(err).Warn("ws: write error")
				return
			}

		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				c.log.WithError(err).Warn("ws: ping error")
				return
			}

		case <-c.done:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeSubscribe:
		if event.SubscriptionID == "" {
			c.sendError(event.SubscriptionID, "INVALID_PAYLOAD", "subscription_id is required")
			return
		}
		var p SubscribePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError(event.SubscriptionID, "INVALID_PAYLOAD", "invalid subscribe payload")
			return
		}
		filter, err := domain.ParseFilter(p.Filter)
		if err != nil {
			c.sendError(event.SubscriptionID, "INVALID_FILTER", err.Error())
			return
		}
		sub := domain.Subscription{Table: p.Table, Event: domain.ChangeType(p.Event), Filter: filter}
		if err := sub.Validate(); err != nil {
			c.sendError(event.SubscriptionID, "INVALID_SUBSCRIPTION", err.Error())
			return
		}
		c.Subscribe(event.SubscriptionID, sub)
		c.reply(EventTypeSubscribed, event.SubscriptionID)
		c.log.WithFields(logrus.Fields{"subscription": event.SubscriptionID, "table": sub.Table}).Debug("ws: subscribed")

	case EventTypeUnsubscribe:
		c.Unsubscribe(event.SubscriptionID)
		c.reply(EventTypeUnsubscribed, event.SubscriptionID)

	case EventTypePing:
		c.reply(EventTypePong, "")

	default:
		c.sendError(event.SubscriptionID, "UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) reply(eventType, subscriptionID string) {
	data, _ := json.Marshal(Event{Type: eventType, SubscriptionID: subscriptionID, Timestamp: time.Now().Unix()})
	c.queue(data)
}

func (c *Client) sendError(subscriptionID, code, message string) {
	evt, err := NewEvent(EventTypeError, subscriptionID, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	c.queue(data)
}

// close stops the write pump. The send channel is never closed, so late
// replies from the read pump are simply dropped.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) queue(data []byte) {
	select {
	case c.send <- data:
	case <-c.done:
	default:
	}
}
