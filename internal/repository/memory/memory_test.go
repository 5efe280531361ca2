package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/huddle/internal/domain"
	"github.com/vedran77/huddle/internal/repository"
)

func TestPrivateChatRepo_UniquePair(t *testing.T) {
	repo := NewStore().PrivateChats()
	ctx := context.Background()
	u1, u2 := domain.CanonicalPair(uuid.New(), uuid.New())

	chat := &domain.PrivateChat{UserID1: u1, UserID2: u2}
	require.NoError(t, repo.CreateChat(ctx, chat))
	assert.NotZero(t, chat.ID)

	err := repo.CreateChat(ctx, &domain.PrivateChat{UserID1: u1, UserID2: u2})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	found, err := repo.GetChatByUsers(ctx, u1, u2)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, found.ID)

	missing, err := repo.GetChatByUsers(ctx, u2, u1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPrivateChatRepo_ListMessagesKeepsLatest(t *testing.T) {
	repo := NewStore().PrivateChats()
	ctx := context.Background()

	for _, body := range []string{"one", "two", "three"} {
		require.NoError(t, repo.CreateMessage(ctx, &domain.PrivateMessage{ChatID: 1, Body: body}))
	}
	require.NoError(t, repo.CreateMessage(ctx, &domain.PrivateMessage{ChatID: 2, Body: "other"}))

	msgs, err := repo.ListMessages(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "two", msgs[0].Body)
	assert.Equal(t, "three", msgs[1].Body)
}

func TestProfileRepo_Update(t *testing.T) {
	repo := NewStore().Profiles()
	ctx := context.Background()
	id := uuid.New()

	missing, err := repo.Update(ctx, id, domain.ProfilePatch{})
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Create(ctx, &domain.Profile{ID: id, Email: "a@x.com"}))
	bio := "hello"
	updated, err := repo.Update(ctx, id, domain.ProfilePatch{Bio: &bio})
	require.NoError(t, err)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "hello", *updated.Bio)
	assert.Nil(t, updated.DisplayName)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	repo := NewStore().Users()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: uuid.New(), Email: "a@x.com"}))
	err := repo.Create(ctx, &domain.User{ID: uuid.New(), Email: "a@x.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}
