package restclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vedran77/huddle/internal/backend"
	"github.com/vedran77/huddle/internal/domain"
	"github.com/vedran77/huddle/internal/transport/ws"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// subscribeTimeout bounds the wait for the server to confirm a subscription.
const subscribeTimeout = 10 * time.Second

var ErrNotSignedIn = errors.New("not signed in")

var subscriptionSeq atomic.Uint64

// Subscribe opens one websocket per subscription. It returns once the server
// confirmed the subscription; changes then arrive on a goroutine of their own.
//
// The returned cancel closes the connection and waits for the reader to exit.
// While fn is running it does not wait, so fn may cancel its own subscription.
func (c *Client) Subscribe(ctx context.Context, sub domain.Subscription, fn backend.ChangeHandler) (func(), error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	token := c.token()
	if token == "" {
		return nil, ErrNotSignedIn
	}

	ctx, cancel := context.WithCancel(ctx)
	conn, _, err := websocket.Dial(ctx, c.realtimeURL(token), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("connecting to realtime: %w", err)
	}

	id := fmt.Sprintf("sub-%d", subscriptionSeq.Add(1))
	if err := confirmSubscription(ctx, conn, id, sub); err != nil {
		conn.Close(websocket.StatusNormalClosure, "")
		cancel()
		return nil, err
	}

	log := c.log.WithField("subscription", id).WithField("table", sub.Table)
	var (
		wg         sync.WaitGroup
		delivering atomic.Bool
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer conn.Close(websocket.StatusNormalClosure, "")
		for {
			var evt ws.Event
			if err := wsjson.Read(ctx, conn, &evt); err != nil {
				if ctx.Err() == nil {
					log.WithError(err).Warn("realtime connection lost")
				}
				return
			}
			switch evt.Type {
			case ws.EventTypeChange:
				var change domain.Change
				if err := json.Unmarshal(evt.Payload, &change); err != nil {
					log.WithError(err).Warn("dropping undecodable change")
					continue
				}
				delivering.Store(true)
				fn(&change)
				delivering.Store(false)
			case ws.EventTypeError:
				log.WithField("payload", string(evt.Payload)).Warn("realtime error")
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			if !delivering.Load() {
				wg.Wait()
			}
		})
	}, nil
}

func confirmSubscription(ctx context.Context, conn *websocket.Conn, id string, sub domain.Subscription) error {
	payload := ws.SubscribePayload{Table: sub.Table, Event: string(sub.Event)}
	if sub.Filter != nil {
		payload.Filter = sub.Filter.String()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, subscribeTimeout)
	defer cancel()

	if err := wsjson.Write(ctx, conn, ws.Event{Type: ws.EventTypeSubscribe, SubscriptionID: id, Payload: data}); err != nil {
		return fmt.Errorf("sending subscribe: %w", err)
	}
	for {
		var evt ws.Event
		if err := wsjson.Read(ctx, conn, &evt); err != nil {
			return fmt.Errorf("waiting for subscription: %w", err)
		}
		if evt.SubscriptionID != id {
			continue
		}
		switch evt.Type {
		case ws.EventTypeSubscribed:
			return nil
		case ws.EventTypeError:
			return subscribeError(evt.Payload)
		}
	}
}

func subscribeError(payload json.RawMessage) *backend.Error {
	var p ws.ErrorPayload
	if err := json.Unmarshal(payload, &p); err != nil || (p.Code == "" && p.Message == "") {
		return &backend.Error{Status: 400, Code: "SUBSCRIBE_FAILED", Message: string(payload)}
	}
	return &backend.Error{Status: 400, Code: p.Code, Message: p.Message}
}

func (c *Client) realtimeURL(token string) string {
	base := c.baseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + apiPrefix + "/realtime?token=" + url.QueryEscape(token)
}
