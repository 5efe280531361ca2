package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vedran77/huddle/internal/backend"
	"github.com/vedran77/huddle/internal/domain"
	"golang.org/x/sync/singleflight"
)

var (
	ErrSelfChat     = errors.New("cannot open a private chat with yourself")
	errChatVanished = errors.New("private chat missing after create conflict")
)

// PairCache remembers which private chat belongs to a canonical pair key.
type PairCache interface {
	Get(key string) (int64, bool)
	Put(key string, chatID int64) error
}

// Resolver maps an unordered pair of users to their private chat id, creating
// the chat on first use.
//
// Resolutions of the same pair are collapsed into one in-flight lookup, and a
// create that loses a race against another client (unique pair constraint)
// falls back to reading the row the other client inserted.
type Resolver struct {
	store backend.PrivateChats
	cache PairCache
	log   *logrus.Entry
	group singleflight.Group
}

func NewResolver(store backend.PrivateChats, cache PairCache, log *logrus.Entry) *Resolver {
	return &Resolver{store: store, cache: cache, log: log}
}

// PairKey is the order-independent cache key of two users.
func PairKey(a, b uuid.UUID) string {
	u1, u2 := domain.CanonicalPair(a, b)
	return u1.String() + "_" + u2.String()
}

// Resolve returns the chat id shared by a and b. Errors are never cached.
// Canceling ctx abandons the wait but not a lookup other callers share.
func (r *Resolver) Resolve(ctx context.Context, a, b uuid.UUID) (int64, error) {
	if a == b {
		return 0, ErrSelfChat
	}

	key := PairKey(a, b)
	if id, ok := r.cache.Get(key); ok {
		return id, nil
	}

	// The shared lookup outlives any single caller; each caller only stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		if id, ok := r.cache.Get(key); ok {
			return id, nil
		}
		return r.lookupOrCreate(shared, key, a, b)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int64), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (r *Resolver) lookupOrCreate(ctx context.Context, key string, a, b uuid.UUID) (int64, error) {
	u1, u2 := domain.CanonicalPair(a, b)
	log := r.log.WithField("pair", key)

	chat, err := r.store.FindPrivateChat(ctx, u1, u2)
	if err != nil {
		log.WithError(err).Error("looking up private chat failed")
		return 0, fmt.Errorf("looking up private chat: %w", err)
	}

	if chat == nil {
		chat, err = r.store.CreatePrivateChat(ctx, u1, u2)
		if errors.Is(err, backend.ErrConflict) {
			log.Debug("private chat created concurrently, re-reading it")
			chat, err = r.store.FindPrivateChat(ctx, u1, u2)
			if err == nil && chat == nil {
				err = errChatVanished
			}
		}
		if err != nil {
			log.WithError(err).Error("creating private chat failed")
			return 0, fmt.Errorf("creating private chat: %w", err)
		}
	}

	if err := r.cache.Put(key, chat.ID); err != nil {
		log.WithError(err).Warn("persisting private chat cache failed")
	}
	return chat.ID, nil
}
