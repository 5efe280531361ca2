package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/huddle/internal/backend"
	"github.com/vedran77/huddle/internal/domain"
)

// fakeStore is an in-memory private_chats/private_messages table pair with a
// unique constraint on the canonical pair.
type fakeStore struct {
	mu sync.Mutex

	chats    map[string]*domain.PrivateChat
	messages []domain.PrivateMessage
	nextID   int64

	findErr   error
	createErr error
	// raceOnCreate simulates another client winning the insert: the row is
	// stored, but the caller gets a conflict.
	raceOnCreate bool

	// findRelease, when set, holds FindPrivateChat until it is closed or
	// the call's context ends. findEntered is signaled on entry.
	findRelease chan struct{}
	findEntered chan struct{}

	findCalls   int
	createCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{chats: make(map[string]*domain.PrivateChat), nextID: 100}
}

func (f *fakeStore) FindPrivateChat(ctx context.Context, user1, user2 uuid.UUID) (*domain.PrivateChat, error) {
	if f.findRelease != nil {
		select {
		case f.findEntered <- struct{}{}:
		default:
		}
		select {
		case <-f.findRelease:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.chats[user1.String()+"_"+user2.String()], nil
}

func (f *fakeStore) CreatePrivateChat(ctx context.Context, user1, user2 uuid.UUID) (*domain.PrivateChat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	key := user1.String() + "_" + user2.String()
	if _, ok := f.chats[key]; ok {
		return nil, backend.ErrConflict
	}
	f.nextID++
	chat := &domain.PrivateChat{ID: f.nextID, UserID1: user1, UserID2: user2, CreatedAt: time.Now()}
	f.chats[key] = chat
	if f.raceOnCreate {
		return nil, backend.ErrConflict
	}
	return chat, nil
}

func (f *fakeStore) ListPrivateMessages(ctx context.Context, chatID int64, limit int) ([]domain.PrivateMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.PrivateMessage
	for _, m := range f.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertPrivateMessage(ctx context.Context, chatID int64, body string) (*domain.PrivateMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	msg := domain.PrivateMessage{ID: f.nextID, ChatID: chatID, Body: body, CreatedAt: time.Now()}
	f.messages = append(f.messages, msg)
	return &msg, nil
}

func (f *fakeStore) counts() (find, create int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findCalls, f.createCalls
}

type memCache struct {
	mu     sync.Mutex
	ids    map[string]int64
	putErr error
}

func newMemCache() *memCache {
	return &memCache{ids: make(map[string]int64)}
}

func (c *memCache) Get(key string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.ids[key]
	return id, ok
}

func (c *memCache) Put(key string, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	c.ids[key] = id
	return nil
}

// fakeRealtime records subscriptions and lets tests push changes.
type fakeRealtime struct {
	mu       sync.Mutex
	subs     []domain.Subscription
	handlers []backend.ChangeHandler
	err      error
	canceled int
}

func (f *fakeRealtime) Subscribe(ctx context.Context, sub domain.Subscription, fn backend.ChangeHandler) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.subs = append(f.subs, sub)
	f.handlers = append(f.handlers, fn)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.canceled++
	}, nil
}

func (f *fakeRealtime) push(change *domain.Change) {
	f.mu.Lock()
	handlers := append([]backend.ChangeHandler(nil), f.handlers...)
	f.mu.Unlock()
	for _, h := range handlers {
		h(change)
	}
}

type fakeGlobalStore struct {
	messages []domain.GlobalMessage
	err      error
	inserted []string
}

func (f *fakeGlobalStore) ListGlobalMessages(ctx context.Context, limit int) ([]domain.GlobalMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.messages, nil
}

func (f *fakeGlobalStore) InsertGlobalMessage(ctx context.Context, body string) (*domain.GlobalMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inserted = append(f.inserted, body)
	return &domain.GlobalMessage{ID: int64(len(f.inserted)), Email: "a@x.com", Body: body}, nil
}

var errRemote = errors.New("remote failure")
