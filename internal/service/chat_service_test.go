package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/huddle/internal/domain"
	"github.com/vedran77/huddle/internal/repository/memory"
)

func seedUser(t *testing.T, store *memory.Store, email string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, store.Users().Create(context.Background(), &domain.User{ID: id, Email: email, CreatedAt: time.Now()}))
	return id
}

func TestGlobalChatService_Send(t *testing.T) {
	store := memory.NewStore()
	svc := NewGlobalChatService(store.GlobalMessages(), store.Users())
	n := &recordingNotifier{}
	svc.SetNotifier(n)
	ctx := context.Background()

	ana := seedUser(t, store, "ana@example.com")

	msg, err := svc.Send(ctx, ana, "hola")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", msg.Email)
	assert.NotZero(t, msg.ID)

	require.Len(t, n.got, 1)
	assert.Equal(t, domain.TableGlobalChat, n.got[0].table)
	assert.Equal(t, domain.ChangeInsert, n.got[0].changeType)
	assert.Nil(t, n.got[0].audience)

	_, err = svc.Send(ctx, uuid.New(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGlobalChatService_ListNeverNil(t *testing.T) {
	store := memory.NewStore()
	svc := NewGlobalChatService(store.GlobalMessages(), store.Users())

	msgs, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestPrivateChatService_Create(t *testing.T) {
	store := memory.NewStore()
	svc := NewPrivateChatService(store.PrivateChats(), store.Users())
	n := &recordingNotifier{}
	svc.SetNotifier(n)
	ctx := context.Background()

	ana := seedUser(t, store, "ana@example.com")
	ben := seedUser(t, store, "ben@example.com")
	u1, u2 := domain.CanonicalPair(ana, ben)

	_, err := svc.Create(ctx, ana, ana, ana)
	assert.ErrorIs(t, err, ErrCannotChatSelf)

	_, err = svc.Create(ctx, uuid.New(), ana, ben)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.Create(ctx, ana, ana, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)

	chat, err := svc.Create(ctx, ana, ben, ana)
	require.NoError(t, err)
	assert.Equal(t, u1, chat.UserID1)
	assert.Equal(t, u2, chat.UserID2)

	_, err = svc.Create(ctx, ben, ana, ben)
	assert.ErrorIs(t, err, ErrChatExists)

	require.Len(t, n.got, 1)
	assert.Equal(t, domain.TablePrivateChats, n.got[0].table)
	assert.ElementsMatch(t, []uuid.UUID{ana, ben}, n.got[0].audience)

	found, err := svc.Find(ctx, ana, ana, ben)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, found.ID)

	_, err = svc.Find(ctx, uuid.New(), ana, ben)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestPrivateChatService_FindMissingIsNil(t *testing.T) {
	store := memory.NewStore()
	svc := NewPrivateChatService(store.PrivateChats(), store.Users())
	ana, ben := uuid.New(), uuid.New()

	chat, err := svc.Find(context.Background(), ana, ana, ben)
	require.NoError(t, err)
	assert.Nil(t, chat)
}

func TestPrivateChatService_Messages(t *testing.T) {
	store := memory.NewStore()
	svc := NewPrivateChatService(store.PrivateChats(), store.Users())
	n := &recordingNotifier{}
	svc.SetNotifier(n)
	ctx := context.Background()

	ana := seedUser(t, store, "ana@example.com")
	ben := seedUser(t, store, "ben@example.com")
	eve := seedUser(t, store, "eve@example.com")

	chat, err := svc.Create(ctx, ana, ana, ben)
	require.NoError(t, err)

	msg, err := svc.SendMessage(ctx, ben, chat.ID, "hi ana")
	require.NoError(t, err)
	assert.Equal(t, ben, msg.SenderID)

	last := n.got[len(n.got)-1]
	assert.Equal(t, domain.TablePrivateMessages, last.table)
	assert.ElementsMatch(t, []uuid.UUID{ana, ben}, last.audience)

	_, err = svc.SendMessage(ctx, eve, chat.ID, "let me in")
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.SendMessage(ctx, ana, chat.ID+100, "void")
	assert.ErrorIs(t, err, ErrChatNotFound)

	msgs, err := svc.ListMessages(ctx, ana, chat.ID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi ana", msgs[0].Body)

	_, err = svc.ListMessages(ctx, eve, chat.ID, 10)
	assert.ErrorIs(t, err, ErrNotParticipant)
}
