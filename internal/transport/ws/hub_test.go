package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/huddle/internal/domain"
	"github.com/vedran77/huddle/internal/logging"
	"github.com/vedran77/huddle/internal/service"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// tokenUsers treats the token as the user id.
type tokenUsers struct{}

func (tokenUsers) VerifyToken(ctx context.Context, token string) (*service.TokenClaims, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, errors.New("bad token")
	}
	return &service.TokenClaims{UserID: id}, nil
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(logging.Discard())
	go hub.Run(ctx)

	srv := httptest.NewServer(ServeWS(ctx, hub, tokenUsers{}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string, user uuid.UUID) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url+"?token="+user.String(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var evt Event
	require.NoError(t, wsjson.Read(ctx, conn, &evt))
	return evt
}

func subscribe(t *testing.T, conn *websocket.Conn, id string, p SubscribePayload) Event {
	t.Helper()
	evt, err := NewEvent(EventTypeSubscribe, id, p)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(context.Background(), conn, evt))
	return readEvent(t, conn)
}

func TestServeWS_RejectsMissingToken(t *testing.T) {
	_, url := startHub(t)

	_, resp, err := websocket.Dial(context.Background(), url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHub_DeliversMatchingChanges(t *testing.T) {
	hub, url := startHub(t)
	user := uuid.New()
	conn := dial(t, url, user)

	ack := subscribe(t, conn, "sub-1", SubscribePayload{Table: domain.TablePrivateMessages, Event: "INSERT", Filter: "chat_id=eq.7"})
	require.Equal(t, EventTypeSubscribed, ack.Type)
	assert.Equal(t, "sub-1", ack.SubscriptionID)

	other, err := domain.NewChange(domain.TablePrivateMessages, domain.ChangeInsert, domain.PrivateMessage{ID: 1, ChatID: 8, Body: "not yours"})
	require.NoError(t, err)
	hub.Publish(other, nil)

	mine, err := domain.NewChange(domain.TablePrivateMessages, domain.ChangeInsert, domain.PrivateMessage{ID: 2, ChatID: 7, Body: "yours"})
	require.NoError(t, err)
	hub.Publish(mine, []uuid.UUID{user})

	evt := readEvent(t, conn)
	require.Equal(t, EventTypeChange, evt.Type)
	assert.Equal(t, "sub-1", evt.SubscriptionID)

	var change domain.Change
	require.NoError(t, json.Unmarshal(evt.Payload, &change))
	var msg domain.PrivateMessage
	require.NoError(t, change.Decode(&msg))
	assert.Equal(t, "yours", msg.Body)
}

func TestHub_RespectsAudience(t *testing.T) {
	hub, url := startHub(t)
	outsider := uuid.New()
	conn := dial(t, url, outsider)

	subscribe(t, conn, "all", SubscribePayload{Table: domain.TablePrivateMessages, Event: "*"})
	subscribe(t, conn, "global", SubscribePayload{Table: domain.TableGlobalChat, Event: "INSERT"})

	private, err := domain.NewChange(domain.TablePrivateMessages, domain.ChangeInsert, domain.PrivateMessage{ID: 1, ChatID: 1})
	require.NoError(t, err)
	hub.Publish(private, []uuid.UUID{uuid.New(), uuid.New()})

	global, err := domain.NewChange(domain.TableGlobalChat, domain.ChangeInsert, domain.GlobalMessage{ID: 1, Body: "hi"})
	require.NoError(t, err)
	hub.Publish(global, nil)

	evt := readEvent(t, conn)
	assert.Equal(t, EventTypeChange, evt.Type)
	assert.Equal(t, "global", evt.SubscriptionID)
}

func TestClient_InvalidSubscription(t *testing.T) {
	_, url := startHub(t)
	conn := dial(t, url, uuid.New())

	evt := subscribe(t, conn, "bad", SubscribePayload{Table: domain.TableGlobalChat, Event: "UPSERT"})
	assert.Equal(t, EventTypeError, evt.Type)
	assert.Equal(t, "bad", evt.SubscriptionID)

	evt = subscribe(t, conn, "bad-filter", SubscribePayload{Table: domain.TableGlobalChat, Event: "INSERT", Filter: "id=gt.3"})
	assert.Equal(t, EventTypeError, evt.Type)

	evt = subscribe(t, conn, "", SubscribePayload{Table: domain.TableGlobalChat, Event: "INSERT"})
	assert.Equal(t, EventTypeError, evt.Type)
}

func TestClient_PingAndUnsubscribe(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url, uuid.New())

	subscribe(t, conn, "g", SubscribePayload{Table: domain.TableGlobalChat, Event: "INSERT"})

	require.NoError(t, wsjson.Write(context.Background(), conn, Event{Type: EventTypeUnsubscribe, SubscriptionID: "g"}))
	assert.Equal(t, EventTypeUnsubscribed, readEvent(t, conn).Type)

	change, err := domain.NewChange(domain.TableGlobalChat, domain.ChangeInsert, domain.GlobalMessage{ID: 1})
	require.NoError(t, err)
	hub.Publish(change, nil)

	require.NoError(t, wsjson.Write(context.Background(), conn, Event{Type: EventTypePing}))
	assert.Equal(t, EventTypePong, readEvent(t, conn).Type)
}
