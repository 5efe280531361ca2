package chat

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/huddle/internal/domain"
	"github.com/vedran77/huddle/internal/logging"
)

func TestGlobalChat_Send(t *testing.T) {
	store := &fakeGlobalStore{}
	g := NewGlobalChat(store, &fakeRealtime{}, logging.Discard())

	msg, err := g.Send(context.Background(), "  hola  ")
	require.NoError(t, err)
	assert.Equal(t, "hola", msg.Body)
	assert.Equal(t, []string{"hola"}, store.inserted)

	_, err = g.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, store.inserted, 1)
}

func TestGlobalChat_LastMessagesPropagatesErrors(t *testing.T) {
	g := NewGlobalChat(&fakeGlobalStore{err: errRemote}, &fakeRealtime{}, logging.Discard())
	_, err := g.LastMessages(context.Background(), 0)
	assert.ErrorIs(t, err, errRemote)
}

func TestGlobalChat_SubscribeNew(t *testing.T) {
	rt := &fakeRealtime{}
	g := NewGlobalChat(&fakeGlobalStore{}, rt, logging.Discard())

	var got []domain.GlobalMessage
	cancel, err := g.SubscribeNew(context.Background(), func(m domain.GlobalMessage) {
		got = append(got, m)
	})
	require.NoError(t, err)

	require.Len(t, rt.subs, 1)
	assert.Equal(t, domain.Subscription{Table: domain.TableGlobalChat, Event: domain.ChangeInsert}, rt.subs[0])

	change, err := domain.NewChange(domain.TableGlobalChat, domain.ChangeInsert, domain.GlobalMessage{ID: 3, Email: "a@x.com", Body: "hi"})
	require.NoError(t, err)
	rt.push(change)
	rt.push(&domain.Change{Table: domain.TableGlobalChat, Type: domain.ChangeInsert, Record: []byte(`"garbage"`)})

	require.Len(t, got, 1)
	assert.Equal(t, "hi", got[0].Body)

	cancel()
	assert.Equal(t, 1, rt.canceled)
}

func TestPrivateChat_SendResolvesChat(t *testing.T) {
	store := newFakeStore()
	p := NewPrivateChat(store, &fakeRealtime{}, newTestResolver(store, newMemCache()), logging.Discard())

	msg, err := p.Send(context.Background(), userA, userB, "hey")
	require.NoError(t, err)
	again, err := p.Send(context.Background(), userB, userA, "hey back")
	require.NoError(t, err)

	assert.Equal(t, msg.ChatID, again.ChatID)
	_, create := store.counts()
	assert.Equal(t, 1, create)

	history, err := p.LastMessages(context.Background(), userA, userB, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hey", history[0].Body)
}

func TestPrivateChat_SelfChatRejected(t *testing.T) {
	store := newFakeStore()
	p := NewPrivateChat(store, &fakeRealtime{}, newTestResolver(store, newMemCache()), logging.Discard())

	_, err := p.Send(context.Background(), userA, userA, "me")
	assert.ErrorIs(t, err, ErrSelfChat)
}

func TestPrivateChat_SubscribeNewFiltersByChat(t *testing.T) {
	store := newFakeStore()
	rt := &fakeRealtime{}
	p := NewPrivateChat(store, rt, newTestResolver(store, newMemCache()), logging.Discard())

	var got []domain.PrivateMessage
	_, err := p.SubscribeNew(context.Background(), userA, userB, func(m domain.PrivateMessage) {
		got = append(got, m)
	})
	require.NoError(t, err)

	chatID, err := p.resolver.Resolve(context.Background(), userB, userA)
	require.NoError(t, err)

	require.Len(t, rt.subs, 1)
	sub := rt.subs[0]
	assert.Equal(t, domain.TablePrivateMessages, sub.Table)
	assert.Equal(t, domain.ChangeInsert, sub.Event)
	require.NotNil(t, sub.Filter)
	assert.Equal(t, "chat_id=eq."+itoa(chatID), sub.Filter.String())

	change, err := domain.NewChange(domain.TablePrivateMessages, domain.ChangeInsert, domain.PrivateMessage{ID: 1, ChatID: chatID, SenderID: userB, Body: "yo"})
	require.NoError(t, err)
	rt.push(change)

	require.Len(t, got, 1)
	assert.Equal(t, userB, got[0].SenderID)
}

func TestPrivateChat_SubscribeError(t *testing.T) {
	store := newFakeStore()
	p := NewPrivateChat(store, &fakeRealtime{err: errRemote}, newTestResolver(store, newMemCache()), logging.Discard())

	_, err := p.SubscribeNew(context.Background(), userA, userB, func(domain.PrivateMessage) {})
	assert.ErrorIs(t, err, errRemote)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
