// Package memory implements the repositories in process memory. It backs the
// server when DB_DRIVER=memory and the transport tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/huddle/internal/domain"
	"github.com/vedran77/huddle/internal/repository"
)

// Store holds every table. The repositories it returns share one lock.
type Store struct {
	mu sync.Mutex

	users           map[uuid.UUID]domain.User
	profiles        map[uuid.UUID]domain.Profile
	globalMessages  []domain.GlobalMessage
	chats           map[int64]domain.PrivateChat
	privateMessages []domain.PrivateMessage
	nextID          int64
}

func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]domain.User),
		profiles: make(map[uuid.UUID]domain.Profile),
		chats:    make(map[int64]domain.PrivateChat),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Users() *UserRepo                   { return &UserRepo{s} }
func (s *Store) Profiles() *ProfileRepo             { return &ProfileRepo{s} }
func (s *Store) GlobalMessages() *GlobalMessageRepo { return &GlobalMessageRepo{s} }
func (s *Store) PrivateChats() *PrivateChatRepo     { return &PrivateChatRepo{s} }

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if _, ok := r.s.users[user.ID]; ok {
		return repository.ErrDuplicate
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

type ProfileRepo struct{ s *Store }

func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.ID]; ok {
		return repository.ErrDuplicate
	}
	r.s.profiles[p.ID] = *p
	return nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProfileRepo) Update(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, nil
	}
	patch.ApplyTo(&p)
	p.UpdatedAt = time.Now()
	r.s.profiles[id] = p
	return &p, nil
}

type GlobalMessageRepo struct{ s *Store }

func (r *GlobalMessageRepo) Create(ctx context.Context, msg *domain.GlobalMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg.ID = r.s.id()
	msg.CreatedAt = time.Now()
	r.s.globalMessages = append(r.s.globalMessages, *msg)
	return nil
}

func (r *GlobalMessageRepo) ListRecent(ctx context.Context, limit int) ([]domain.GlobalMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return tail(r.s.globalMessages, limit), nil
}

type PrivateChatRepo struct{ s *Store }

func (r *PrivateChatRepo) CreateChat(ctx context.Context, chat *domain.PrivateChat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.chats {
		if c.UserID1 == chat.UserID1 && c.UserID2 == chat.UserID2 {
			return repository.ErrDuplicate
		}
	}
	chat.ID = r.s.id()
	chat.CreatedAt = time.Now()
	r.s.chats[chat.ID] = *chat
	return nil
}

func (r *PrivateChatRepo) GetChatByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.PrivateChat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.chats {
		if c.UserID1 == user1ID && c.UserID2 == user2ID {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *PrivateChatRepo) GetChatByID(ctx context.Context, id int64) (*domain.PrivateChat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chats[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *PrivateChatRepo) CreateMessage(ctx context.Context, msg *domain.PrivateMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg.ID = r.s.id()
	msg.CreatedAt = time.Now()
	r.s.privateMessages = append(r.s.privateMessages, *msg)
	return nil
}

func (r *PrivateChatRepo) ListMessages(ctx context.Context, chatID int64, limit int) ([]domain.PrivateMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var msgs []domain.PrivateMessage
	for _, m := range r.s.privateMessages {
		if m.ChatID == chatID {
			msgs = append(msgs, m)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })
	return tail(msgs, limit), nil
}

// tail copies the last limit elements of s.
func tail[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		s = s[len(s)-limit:]
	}
	return append([]T(nil), s...)
}

var (
	_ repository.UserRepository          = (*UserRepo)(nil)
	_ repository.ProfileRepository       = (*ProfileRepo)(nil)
	_ repository.GlobalMessageRepository = (*GlobalMessageRepo)(nil)
	_ repository.PrivateChatRepository   = (*PrivateChatRepo)(nil)
)
